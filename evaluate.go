package overlay

import (
	"errors"
	"fmt"
	"time"

	"github.com/jameslkingsley/overlaymap/internal/envmap"
)

var ErrNoEvaluator = errors.New("overlay: evaluator not configured")

// ErrRuleNotBool reports a rule whose result was not a boolean where one was
// required to gate a transition.
var ErrRuleNotBool = errors.New("overlay: rule result is not a boolean")

// EvaluateRule executes expr against the layers stored under key. The
// expression sees key, current, previous, has_current, has_previous, now,
// args, and metadata plus any registered functions.
func (m *Map[K, V]) EvaluateRule(key K, expr string) (Decision, error) {
	return m.evaluateRule(m.ruleContext(key), expr)
}

// EvaluateRuleWith merges caller-supplied Args, Metadata, and Now into the
// key's rule context before evaluating. Layer fields always come from the
// map.
func (m *Map[K, V]) EvaluateRuleWith(key K, ctx RuleContext, expr string) (Decision, error) {
	base := m.ruleContext(key)
	base.Args = ctx.Args
	base.Metadata = ctx.Metadata
	if ctx.Now != nil {
		base.Now = ctx.Now
	}
	return m.evaluateRule(base, expr)
}

func (m *Map[K, V]) evaluateRule(ctx RuleContext, expr string) (Decision, error) {
	if expr == "" {
		return Decision{}, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := m.resolveEvaluator()
	if err != nil {
		return Decision{}, err
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.keyLabel(), evalErr)
	m.logger().Log(LogEvent{
		Op:       "rule.evaluate",
		Key:      ctx.keyLabel(),
		Engine:   engine,
		Expr:     expr,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Decision{}, evalErr
	}
	return Decision{Value: value}, nil
}

// SetWhen pushes value when expr evaluates to true for key. It reports
// whether the set ran; a non-boolean rule result is an error.
func (m *Map[K, V]) SetWhen(key K, value V, expr string) (bool, error) {
	decision, err := m.EvaluateRule(key, expr)
	if err != nil {
		return false, err
	}
	ok, err := decision.Bool()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	m.Set(key, value)
	return true, nil
}

// PullWhen pulls the current value when expr evaluates to true for key.
func (m *Map[K, V]) PullWhen(key K, expr string) (V, bool, error) {
	var zero V
	decision, err := m.EvaluateRule(key, expr)
	if err != nil {
		return zero, false, err
	}
	ok, err := decision.Bool()
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	out, pulled := m.Pull(key)
	return out, pulled, nil
}

func (m *Map[K, V]) ruleContext(key K) RuleContext {
	ctx := RuleContext{Key: envmap.Normalize(key)}
	if e := m.tbl.find(key); e != nil {
		if v, ok := e.Current(); ok {
			ctx.Current = envmap.Normalize(v)
			ctx.HasCurrent = true
		}
		if v, ok := e.Previous(); ok {
			ctx.Previous = envmap.Normalize(v)
			ctx.HasPrevious = true
		}
	}
	now := m.cfg.clock()
	ctx.Now = &now
	return ctx
}

func (m *Map[K, V]) resolveEvaluator() (Evaluator, error) {
	if m.cfg.evaluator != nil {
		return m.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := m.cfg.programCache; cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := m.cfg.functions; registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	m.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*overlay.exprEvaluator":
		return "expr"
	case "*overlay.celEvaluator":
		return "cel"
	case "*overlay.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
