package overlay

import (
	"errors"
	"fmt"
	"strings"
)

// RuleError captures evaluator metadata alongside the originating error.
type RuleError struct {
	Engine string
	Expr   string
	Key    string
	Err    error
}

func (e *RuleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("overlay: %s evaluator %s key=%s: %v", e.Engine, describeExpression(e.Expr), e.Key, e.Err)
}

func (e *RuleError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "overlay:") {
		return err
	}
	return fmt.Errorf("overlay: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, key string, err error) error {
	if err == nil {
		return nil
	}

	var ruleErr *RuleError
	if errors.As(err, &ruleErr) {
		if ruleErr.Engine == "" {
			ruleErr.Engine = engine
		}
		if ruleErr.Expr == "" {
			ruleErr.Expr = expr
		}
		if ruleErr.Key == "" {
			ruleErr.Key = key
		}
		return ruleErr
	}

	return &RuleError{
		Engine: engine,
		Expr:   expr,
		Key:    key,
		Err:    err,
	}
}
