package predicate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/tq/internal/number"
	"github.com/jacoelho/tq/internal/tree"
)

type operation struct {
	unary bool                     // takes no expected value
	check func(expected any) error // validates the expected value up front
	eval  func(e *Evaluator, actual, expected any) (bool, error)
}

var operations = map[Operator]operation{
	OpEquals: {eval: func(_ *Evaluator, actual, expected any) (bool, error) {
		return tree.Equal(actual, expected), nil
	}},
	OpNotEquals: {eval: func(_ *Evaluator, actual, expected any) (bool, error) {
		return !tree.Equal(actual, expected), nil
	}},
	OpContains:    {eval: contains(OpContains, false)},
	OpNotContains: {eval: contains(OpNotContains, true)},
	OpRegex:       {check: needString(OpRegex), eval: (*Evaluator).regexMatch},
	OpExists: {unary: true, eval: func(_ *Evaluator, actual, _ any) (bool, error) {
		return present(actual), nil
	}},
	OpLength:             {check: needLength, eval: length},
	OpGreaterThan:        {check: needOrdered(OpGreaterThan), eval: ordered(OpGreaterThan, func(c int) bool { return c > 0 })},
	OpLessThan:           {check: needOrdered(OpLessThan), eval: ordered(OpLessThan, func(c int) bool { return c < 0 })},
	OpGreaterThanOrEqual: {check: needOrdered(OpGreaterThanOrEqual), eval: ordered(OpGreaterThanOrEqual, func(c int) bool { return c >= 0 })},
	OpLessThanOrEqual:    {check: needOrdered(OpLessThanOrEqual), eval: ordered(OpLessThanOrEqual, func(c int) bool { return c <= 0 })},
	OpStartsWith:         {check: needString(OpStartsWith), eval: affix(OpStartsWith, strings.HasPrefix)},
	OpEndsWith:           {check: needString(OpEndsWith), eval: affix(OpEndsWith, strings.HasSuffix)},
	OpIn:                 {check: needSequence, eval: in},
	OpTypeIs:             {check: needTypeName, eval: typeIs},
}

func invalid(op Operator, format string, a ...any) error {
	return fmt.Errorf("%w: %q %s", ErrInvalidInput, op, fmt.Sprintf(format, a...))
}

func needString(op Operator) func(any) error {
	return func(expected any) error {
		if tree.KindOf(expected) != tree.KindString {
			return invalid(op, "requires a string expected value, got %s", tree.KindOf(expected))
		}
		return nil
	}
}

func needOrdered(op Operator) func(any) error {
	return func(expected any) error {
		switch tree.KindOf(expected) {
		case tree.KindNumber, tree.KindString:
			return nil
		default:
			return invalid(op, "requires a number or string expected value, got %s", tree.KindOf(expected))
		}
	}
}

func needLength(expected any) error {
	n, err := number.ToStrictInt(expected)
	if err != nil {
		return invalid(OpLength, "requires an integer expected value: %v", err)
	}
	if n < 0 {
		return invalid(OpLength, "requires a non-negative expected value, got %d", n)
	}
	return nil
}

func needSequence(expected any) error {
	if tree.KindOf(expected) != tree.KindSequence {
		return invalid(OpIn, "requires a sequence expected value, got %s", tree.Describe(expected))
	}
	return nil
}

var typeNames = []string{"array", "object", "string", "number", "boolean", "null"}

func needTypeName(expected any) error {
	_, err := typeName(expected)
	return err
}

func typeName(expected any) (string, error) {
	s, ok := expected.(string)
	if !ok {
		return "", invalid(OpTypeIs, "requires a string expected value, got %s", tree.KindOf(expected))
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for _, candidate := range typeNames {
		if name == candidate {
			return name, nil
		}
	}
	return "", invalid(OpTypeIs, "requires one of %v, got %q", typeNames, s)
}

// contains tests substrings of strings and members of sequences.
func contains(op Operator, negate bool) func(*Evaluator, any, any) (bool, error) {
	return func(_ *Evaluator, actual, expected any) (bool, error) {
		var found bool
		switch tree.KindOf(actual) {
		case tree.KindSequence:
			found = member(actual.([]any), expected)
		case tree.KindString:
			sub, ok := expected.(string)
			if !ok {
				return false, invalid(op, "on a string requires a string expected value, got %s", tree.KindOf(expected))
			}
			found = strings.Contains(actual.(string), sub)
		case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindMap, tree.KindOpaque:
			return false, invalid(op, "requires a string or sequence, got %s", tree.KindOf(actual))
		}
		return found != negate, nil
	}
}

func (e *Evaluator) regexMatch(actual, expected any) (bool, error) {
	s, ok := actual.(string)
	if !ok {
		return false, invalid(OpRegex, "requires a string, got %s", tree.KindOf(actual))
	}
	re, err := e.regex.Compile(expected.(string))
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// present is false for null and for empty strings or containers.
func present(actual any) bool {
	switch tree.KindOf(actual) {
	case tree.KindNull:
		return false
	case tree.KindString:
		return actual.(string) != ""
	case tree.KindSequence:
		return len(actual.([]any)) > 0
	case tree.KindMap:
		return len(actual.(map[string]any)) > 0
	case tree.KindBool, tree.KindNumber, tree.KindOpaque:
	}
	return true
}

// length counts runes of strings and entries of containers.
func length(_ *Evaluator, actual, expected any) (bool, error) {
	want, _ := number.ToStrictInt(expected)

	var got int
	switch tree.KindOf(actual) {
	case tree.KindString:
		got = utf8.RuneCountInString(actual.(string))
	case tree.KindSequence:
		got = len(actual.([]any))
	case tree.KindMap:
		got = len(actual.(map[string]any))
	case tree.KindNull, tree.KindBool, tree.KindNumber, tree.KindOpaque:
		return false, invalid(OpLength, "requires a string, sequence or map, got %s", tree.KindOf(actual))
	}
	return got == want, nil
}

// ordered compares numbers numerically and strings lexically; anything else,
// mixed kinds included, is an error.
func ordered(op Operator, accept func(cmp int) bool) func(*Evaluator, any, any) (bool, error) {
	return func(_ *Evaluator, actual, expected any) (bool, error) {
		ak, ek := tree.KindOf(actual), tree.KindOf(expected)
		if ak != ek {
			return false, invalid(op, "cannot compare %s with %s", ak, ek)
		}
		switch ak {
		case tree.KindNumber:
			a, _ := number.ToFloat64(actual)
			b, _ := number.ToFloat64(expected)
			return accept(compareFloat(a, b)), nil
		case tree.KindString:
			return accept(strings.Compare(actual.(string), expected.(string))), nil
		case tree.KindNull, tree.KindBool, tree.KindSequence, tree.KindMap, tree.KindOpaque:
		}
		return false, invalid(op, "requires a number or string, got %s", ak)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func affix(op Operator, test func(s, affix string) bool) func(*Evaluator, any, any) (bool, error) {
	return func(_ *Evaluator, actual, expected any) (bool, error) {
		s, ok := actual.(string)
		if !ok {
			return false, invalid(op, "requires a string, got %s", tree.KindOf(actual))
		}
		return test(s, expected.(string)), nil
	}
}

func in(_ *Evaluator, actual, expected any) (bool, error) {
	return member(expected.([]any), actual), nil
}

func member(values []any, v any) bool {
	for _, candidate := range values {
		if tree.Equal(candidate, v) {
			return true
		}
	}
	return false
}

func typeIs(_ *Evaluator, actual, expected any) (bool, error) {
	want, _ := typeName(expected)
	return typeOf(actual) == want, nil
}

// typeOf names the JSON type of v; opaque values report as objects.
func typeOf(v any) string {
	switch tree.KindOf(v) {
	case tree.KindNull:
		return "null"
	case tree.KindBool:
		return "boolean"
	case tree.KindNumber:
		return "number"
	case tree.KindString:
		return "string"
	case tree.KindSequence:
		return "array"
	case tree.KindMap, tree.KindOpaque:
	}
	return "object"
}
