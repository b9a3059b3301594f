// Package predicate implements the leaf tests used by tq satisfies.
package predicate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
)

var (
	ErrInvalidInput = errors.New("invalid predicate input")
	ErrUnsupported  = errors.New("unsupported predicate operation")
)

type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "not_contains"
	OpRegex              Operator = "regex"
	OpExists             Operator = "exists"
	OpLength             Operator = "length"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpStartsWith         Operator = "starts_with"
	OpEndsWith           Operator = "ends_with"
	OpIn                 Operator = "in"
	OpTypeIs             Operator = "type_is"
)

// Operators lists every supported operator, for help output.
var Operators = []Operator{
	OpEquals, OpNotEquals, OpContains, OpNotContains, OpRegex, OpExists,
	OpLength, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual,
	OpLessThanOrEqual, OpStartsWith, OpEndsWith, OpIn, OpTypeIs,
}

// Expr is one operator applied to a leaf, with its expected value.
type Expr struct {
	Op       Operator
	Value    any
	HasValue bool
}

// Validate reports whether the operator exists and the expected value fits
// it. Expressions that pass never fail on their expected value at
// evaluation time.
func (x Expr) Validate() error {
	op, ok := operations[x.Op]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, x.Op)
	}
	switch {
	case op.unary && x.HasValue:
		return fmt.Errorf("%w: operation %q does not accept a value", ErrInvalidInput, x.Op)
	case !op.unary && !x.HasValue:
		return fmt.Errorf("%w: operation %q requires a value", ErrInvalidInput, x.Op)
	}
	if op.check != nil {
		return op.check(x.Value)
	}
	return nil
}

func ParseOperator(input string) (Operator, error) {
	op := Operator(strings.TrimSpace(input))
	if _, ok := operations[op]; ok {
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, input)
}

// ParseValue decodes a command line value as a YAML scalar or flow
// collection, so "5" is a number, "[a, b]" a sequence and "true" a boolean.
// Anything that does not decode is kept as the raw string.
func ParseValue(raw string) any {
	var out any
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return raw
	}
	return out
}

type regexCompiler interface {
	Compile(pattern string) (*regexp.Regexp, error)
}

type cachedRegexCompiler struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func newCachedRegexCompiler() *cachedRegexCompiler {
	return &cachedRegexCompiler{patterns: make(map[string]*regexp.Regexp)}
}

func (c *cachedRegexCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	compiled, ok := c.patterns[pattern]
	c.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid regex %q: %v", ErrInvalidInput, pattern, err)
	}

	c.mu.Lock()
	c.patterns[pattern] = compiled
	c.mu.Unlock()
	return compiled, nil
}

// Evaluator applies expressions to tree values. Compiled regular expressions
// are cached per Evaluator; it is safe for concurrent use.
type Evaluator struct {
	regex regexCompiler
}

func NewEvaluator() *Evaluator {
	return &Evaluator{regex: newCachedRegexCompiler()}
}

func (e *Evaluator) Evaluate(x Expr, actual any) (bool, error) {
	test, err := e.Func(x)
	if err != nil {
		return false, err
	}
	return test(actual)
}

// Func validates x once and returns it as a leaf test, suitable for
// prune.Satisfies.
func (e *Evaluator) Func(x Expr) (func(any) (bool, error), error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	eval := operations[x.Op].eval
	return func(actual any) (bool, error) {
		return eval(e, actual, x.Value)
	}, nil
}

func EvaluateExpr(x Expr, actual any) (bool, error) {
	return NewEvaluator().Evaluate(x, actual)
}
