package overlay

import (
	"time"

	"github.com/jameslkingsley/overlaymap/pkg/audit"
)

// Option configures a Map at construction time.
type Option func(*mapConfig)

type mapConfig struct {
	capacity     int
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       Logger
	auditHooks   audit.Hooks
	auditChannel string
	now          func() time.Time
}

func applyOptions(opts []Option) mapConfig {
	cfg := mapConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithCapacity sizes the backend to hold n keys before the first rehash.
func WithCapacity(n int) Option {
	return func(cfg *mapConfig) {
		if n > 0 {
			cfg.capacity = n
		}
	}
}

// WithEvaluator configures the rule evaluator used by EvaluateRule, SetWhen,
// and PullWhen.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *mapConfig) {
		cfg.evaluator = e
	}
}

// WithClock overrides the time source used for rule contexts and audit
// events. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *mapConfig) {
		cfg.now = now
	}
}

func (cfg *mapConfig) clock() time.Time {
	if cfg.now != nil {
		return cfg.now()
	}
	return time.Now()
}
