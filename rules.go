package overlay

import (
	"fmt"
	"time"
)

// RuleContext carries inputs needed when evaluating an expression against a
// key's layers. Current and Previous hold normalized (JSON-shaped) values so
// expressions behave identically across engines.
type RuleContext struct {
	Key         any
	Current     any
	Previous    any
	HasCurrent  bool
	HasPrevious bool
	Now         *time.Time
	Args        map[string]any
	Metadata    map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) keyLabel() string {
	if ctx.Key == nil {
		return ""
	}
	return fmt.Sprintf("%v", ctx.Key)
}

// bindings returns the layer variables shared by every engine.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"key":          ctx.Key,
		"current":      ctx.Current,
		"previous":     ctx.Previous,
		"has_current":  ctx.HasCurrent,
		"has_previous": ctx.HasPrevious,
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Decision wraps the raw result of a rule evaluation.
type Decision struct {
	Value any
}

// Bool coerces the decision into a boolean outcome.
func (d Decision) Bool() (bool, error) {
	b, ok := d.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrRuleNotBool, d.Value)
	}
	return b, nil
}
