package tree

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/jacoelho/tq/internal/number"
)

// maxExactInteger bounds the integers that survive canonical JSON, whose
// numbers are IEEE-754 doubles.
const maxExactInteger = 1 << 53

// Equal reports structural equality. Numbers compare by value regardless of
// their Go type, opaque leaves with reflect.DeepEqual.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindNumber:
		return number.Equal(a, b)
	case KindString:
		return a.(string) == b.(string)
	case KindSequence:
		as, bs := a.([]any), b.([]any)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	case KindMap:
		am, bm := a.(map[string]any), b.(map[string]any)
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

type fingerprint struct {
	kind Kind
	key  any
}

// Fingerprint returns a comparable value that is identical for Equal trees.
// Scalars map to their normalized value, containers to RFC 8785 canonical
// JSON. ok is false for values that cannot be fingerprinted exactly (opaque
// leaves, non-finite floats, integers beyond 2^53 inside containers); callers
// must then fall back to Equal.
func Fingerprint(v any) (any, bool) {
	switch kind := KindOf(v); kind {
	case KindNull:
		return fingerprint{kind: kind}, true
	case KindBool, KindString:
		return fingerprint{kind: kind, key: v}, true
	case KindNumber:
		key, ok := number.Key(v)
		if !ok {
			return nil, false
		}
		if f, isFloat := key.(float64); isFloat && f != f {
			return nil, false
		}
		return fingerprint{kind: kind, key: key}, true
	case KindSequence, KindMap:
		if !canonicalizable(v) {
			return nil, false
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		canonical, err := jsoncanonicalizer.Transform(raw)
		if err != nil {
			return nil, false
		}
		return fingerprint{kind: kind, key: string(canonical)}, true
	default:
		return nil, false
	}
}

func canonicalizable(v any) bool {
	switch KindOf(v) {
	case KindNull, KindBool, KindString:
		return true
	case KindNumber:
		f, ok := number.ToFloat64(v)
		return ok && !math.IsNaN(f) && !math.IsInf(f, 0) &&
			(f != math.Trunc(f) || math.Abs(f) <= maxExactInteger)
	case KindSequence:
		for _, item := range v.([]any) {
			if !canonicalizable(item) {
				return false
			}
		}
		return true
	case KindMap:
		for _, item := range v.(map[string]any) {
			if !canonicalizable(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
