// Package refine compiles CEL expressions into value refiners. The matched
// value is bound to the variable "value".
package refine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/ext"

	"github.com/jacoelho/tq/internal/prune"
	"github.com/jacoelho/tq/internal/tree"
)

// Variable is the name the matched value is bound to.
const Variable = "value"

var (
	// ErrCompile indicates an expression that does not parse or type check.
	ErrCompile = errors.New("refine: invalid expression")

	// ErrUnsupportedType indicates a result with no tree representation.
	ErrUnsupportedType = errors.New("refine: unsupported result type")
)

var (
	envOnce sync.Once
	env     *cel.Env
	envErr  error
)

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		env, envErr = cel.NewEnv(
			cel.OptionalTypes(),
			ext.Strings(),
			ext.Lists(),
			cel.Variable(Variable, cel.DynType),
		)
	})
	return env, envErr
}

// Compile parses and checks expr and returns a refiner evaluating it against
// every matched value. The program is compiled once and is safe for
// concurrent use.
func Compile(expr string) (prune.Refiner, error) {
	e, err := environment()
	if err != nil {
		return nil, err
	}

	ast, issues := e.Compile(expr)
	if issues.Err() != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrCompile, expr, issues.Err())
	}
	program, err := e.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrCompile, expr, err)
	}

	return func(v any) (any, error) {
		result, _, err := program.Eval(map[string]any{Variable: toCEL(v)})
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", expr, err)
		}
		out, err := Native(result)
		if err != nil {
			return nil, fmt.Errorf("evaluate %q: %w", expr, err)
		}
		return out, nil
	}, nil
}

// MustCompile is like Compile but panics on error. Intended for literals.
func MustCompile(expr string) prune.Refiner {
	r, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// toCEL copies the containers of v, replacing json.Number leaves with int64
// or float64 values the default type adapter understands.
func toCEL(v any) any {
	switch tree.KindOf(v) {
	case tree.KindNumber:
		n, ok := v.(json.Number)
		if !ok {
			return v
		}
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case tree.KindSequence:
		seq := v.([]any)
		out := make([]any, len(seq))
		for i, item := range seq {
			out[i] = toCEL(item)
		}
		return out
	case tree.KindMap:
		m := v.(map[string]any)
		out := make(map[string]any, len(m))
		for k, item := range m {
			out[k] = toCEL(item)
		}
		return out
	case tree.KindNull, tree.KindBool, tree.KindString, tree.KindOpaque:
	}
	return v
}

// Native converts a CEL result back into a tree value.
func Native(v ref.Val) (any, error) {
	switch v.Type() {
	case types.BoolType:
		return v.Value().(bool), nil
	case types.IntType:
		return v.Value().(int64), nil
	case types.UintType:
		return v.Value().(uint64), nil
	case types.DoubleType:
		return v.Value().(float64), nil
	case types.StringType:
		return v.Value().(string), nil
	case types.NullType:
		return nil, nil
	case types.TimestampType, types.DurationType:
		return v.ConvertToType(types.StringType).Value().(string), nil
	case types.ListType:
		lister, ok := v.(traits.Lister)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, v.Type())
		}
		size := int(lister.Size().(types.Int))
		out := make([]any, 0, size)
		for i := range size {
			item, err := Native(lister.Get(types.Int(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case types.MapType:
		mapper, ok := v.(traits.Mapper)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, v.Type())
		}
		out := make(map[string]any, int(mapper.Size().(types.Int)))
		for it := mapper.Iterator(); it.HasNext() == types.True; {
			key := it.Next()
			name, ok := key.(types.String)
			if !ok {
				return nil, fmt.Errorf("%w: map key %v", ErrUnsupportedType, key.Type())
			}
			item, err := Native(mapper.Get(key))
			if err != nil {
				return nil, err
			}
			out[string(name)] = item
		}
		return out, nil
	case types.OptionalType:
		opt := v.(*types.Optional)
		if !opt.HasValue() {
			return nil, nil
		}
		return Native(opt.GetValue())
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, v.Type())
	}
}
