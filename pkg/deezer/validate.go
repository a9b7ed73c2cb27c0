package deezer

import (
	"encoding/json"
	"math"
)

// Kind is a runtime shape an argument may take.
type Kind int

const (
	KindString Kind = iota + 1
	KindInteger
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// ValidateArgument returns an *InvalidArgumentError naming the argument when
// value matches none of the accepted kinds. A nil value never matches.
func ValidateArgument(name string, value any, accepted ...Kind) error {
	for _, k := range accepted {
		if kindOf(value, k) {
			return nil
		}
	}
	return &InvalidArgumentError{Name: name, Value: value, Accepted: accepted}
}

func kindOf(value any, k Kind) bool {
	switch k {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInteger:
		_, ok := asInt64(value)
		return ok
	case KindSequence:
		switch value.(type) {
		case []string, []any, []Permission:
			return true
		}
	}
	return false
}

// asInt64 accepts Go integer types and integral floats, which is how JSON
// decoders hand numbers over.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

// StringSequence converts a validated sequence into strings.
// Elements that are not strings produce an *InvalidArgumentError for name.
func StringSequence(name string, value any) ([]string, error) {
	if err := ValidateArgument(name, value, KindSequence); err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case []string:
		return v, nil
	case []Permission:
		out := make([]string, 0, len(v))
		for _, p := range v {
			out = append(out, p.String())
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &InvalidArgumentError{Name: name, Value: value, Accepted: []Kind{KindSequence}}
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, &InvalidArgumentError{Name: name, Value: value, Accepted: []Kind{KindSequence}}
}
