// Package flatten transforms a parsed document (scalars, sequences of
// scalars, string-keyed mappings) into the flat key/value projection the
// registry writes to the store.
package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	// ErrNestedList is returned for a sequence inside a sequence; the store
	// cannot represent list-of-list shapes.
	ErrNestedList = errors.New("nested lists are not supported")

	// ErrUnsupportedType is returned for document values that are neither
	// scalars, sequences nor string-keyed mappings.
	ErrUnsupportedType = errors.New("unsupported value type")
)

// Flatten projects doc onto a mapping from absolute key to scalar value,
// rooted at prefix. Scalar leaves become prefix-relative keys, sequence
// elements become empty-valued membership leaves named after the element,
// and mappings recurse. Flatten performs no I/O.
func Flatten(doc any, prefix string) (map[string]string, error) {
	flat := make(map[string]string)
	if err := walk(doc, prefix, flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func walk(node any, prefix string, flat map[string]string) error {
	if s, ok := stringify(node); ok {
		flat[prefix] = s
		return nil
	}

	switch v := node.(type) {
	case []any:
		for _, elem := range v {
			s, ok := stringify(elem)
			if !ok {
				if _, nested := elem.([]any); nested {
					return fmt.Errorf("%s: %w", prefix, ErrNestedList)
				}
				return fmt.Errorf("%s: %w (%T inside list)", prefix, ErrUnsupportedType, elem)
			}
			flat[prefix+"/"+s] = ""
		}
		return nil

	case map[string]any:
		// Deterministic order keeps failures stable.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := walk(v[k], prefix+"/"+k, flat); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("%s: %w (%T)", prefix, ErrUnsupportedType, node)
	}
}

// stringify renders a scalar document value as stored text. Whole floats
// lose the trailing ".0" so that JSON and YAML parses agree.
func stringify(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case json.Number:
		return s.String(), true
	default:
		return "", false
	}
}
