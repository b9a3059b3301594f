// Package tree classifies the dynamic values produced by JSON and YAML
// decoders into the closed set of shapes the pruning and flattening engines
// understand.
//
// A tree is a plain Go value: nil, bool, numbers (including json.Number),
// string, []any, map[string]any, or any other value, which is treated as an
// opaque leaf and never traversed.
package tree

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/jacoelho/tq/internal/number"
)

// Kind tags the shape of a tree value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMap
	KindOpaque
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindSequence: "sequence",
	KindMap:      "map",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// KindOf reports the shape of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case []any:
		return KindSequence
	case map[string]any:
		return KindMap
	case json.Number:
		return KindNumber
	}
	if number.IsNumber(v) {
		return KindNumber
	}
	return KindOpaque
}

// IsScalar reports whether v is a leaf, that is neither a sequence nor a map.
func IsScalar(v any) bool {
	switch KindOf(v) {
	case KindSequence, KindMap:
		return false
	default:
		return true
	}
}

// IsContainer reports whether v is a sequence or a map.
func IsContainer(v any) bool {
	return !IsScalar(v)
}

// SortedKeys returns the keys of m in the order every traversal processes them.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Serializable reports whether v survives generic (JSON) serialization.
func Serializable(v any) error {
	_, err := json.Marshal(v)
	return err
}
