package deezer

import (
	"encoding/json"
	"strconv"
)

// AppID identifies a Deezer application. Deezer hands out numeric ids but
// accepts them as strings too, so the value is either one or the other.
// The zero value is invalid.
type AppID struct {
	kind Kind
	str  string
	num  int64
}

// StringAppID returns an AppID holding a string.
func StringAppID(id string) AppID {
	return AppID{kind: KindString, str: id}
}

// IntAppID returns an AppID holding an integer.
func IntAppID(id int64) AppID {
	return AppID{kind: KindInteger, num: id}
}

// ParseAppID converts a dynamically typed value, such as a decoded JSON
// argument, into an AppID.
func ParseAppID(value any) (AppID, error) {
	if err := ValidateArgument("appId", value, KindString, KindInteger); err != nil {
		return AppID{}, err
	}
	if s, ok := value.(string); ok {
		return StringAppID(s), nil
	}
	n, _ := asInt64(value)
	return IntAppID(n), nil
}

// IsZero reports whether the AppID was never set.
func (a AppID) IsZero() bool {
	return a.kind == 0
}

// IsInteger reports whether the id holds an integer.
func (a AppID) IsInteger() bool {
	return a.kind == KindInteger
}

// String returns the form sent on the wire.
func (a AppID) String() string {
	if a.kind == KindInteger {
		return strconv.FormatInt(a.num, 10)
	}
	return a.str
}

// MarshalJSON keeps the original variant.
func (a AppID) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindInteger:
		return json.Marshal(a.num)
	case KindString:
		return json.Marshal(a.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON string or number.
func (a *AppID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := ParseAppID(raw)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

func (a AppID) validate() error {
	if a.IsZero() {
		return &InvalidArgumentError{Name: "appId", Value: nil, Accepted: []Kind{KindString, KindInteger}}
	}
	return nil
}
