package overlay

import "time"

// LogEvent describes a map operation or rule evaluation for logging.
type LogEvent struct {
	Op       string
	Key      string
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records map and evaluator events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// WithLogger attaches a logger to the map.
func WithLogger(logger Logger) Option {
	return func(cfg *mapConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
