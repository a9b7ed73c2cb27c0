package deezer

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateArgument(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		accepted []Kind
		wantErr  bool
	}{
		{name: "string accepted", value: "123", accepted: []Kind{KindString, KindInteger}},
		{name: "int accepted", value: 123, accepted: []Kind{KindString, KindInteger}},
		{name: "int64 accepted", value: int64(123), accepted: []Kind{KindInteger}},
		{name: "int8 accepted", value: int8(12), accepted: []Kind{KindInteger}},
		{name: "int16 accepted", value: int16(123), accepted: []Kind{KindInteger}},
		{name: "uint accepted", value: uint(123), accepted: []Kind{KindInteger}},
		{name: "uint64 accepted", value: uint64(123), accepted: []Kind{KindInteger}},
		{name: "uint64 overflow rejected", value: uint64(math.MaxUint64), accepted: []Kind{KindInteger}, wantErr: true},
		{name: "json number accepted", value: json.Number("123"), accepted: []Kind{KindInteger}},
		{name: "fractional json number rejected", value: json.Number("1.5"), accepted: []Kind{KindInteger}, wantErr: true},
		{name: "integral float accepted", value: float64(123), accepted: []Kind{KindInteger}},
		{name: "fractional float rejected", value: 12.5, accepted: []Kind{KindInteger}, wantErr: true},
		{name: "nil rejected", value: nil, accepted: []Kind{KindString, KindInteger}, wantErr: true},
		{name: "map rejected", value: map[string]any{"id": 1}, accepted: []Kind{KindString, KindInteger}, wantErr: true},
		{name: "slice rejected as id", value: []any{1}, accepted: []Kind{KindString, KindInteger}, wantErr: true},
		{name: "string slice is a sequence", value: []string{"email"}, accepted: []Kind{KindSequence}},
		{name: "any slice is a sequence", value: []any{"email"}, accepted: []Kind{KindSequence}},
		{name: "permission slice is a sequence", value: []Permission{PermissionEmail}, accepted: []Kind{KindSequence}},
		{name: "string is not a sequence", value: "email", accepted: []Kind{KindSequence}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArgument("appId", tt.value, tt.accepted...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateArgument() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invalid *InvalidArgumentError
			if !errors.As(err, &invalid) {
				t.Fatalf("ValidateArgument() error = %T, want *InvalidArgumentError", err)
			}
			if invalid.Name != "appId" {
				t.Errorf("Name = %q, want appId", invalid.Name)
			}
			if len(invalid.Accepted) != len(tt.accepted) {
				t.Errorf("Accepted = %v, want %v", invalid.Accepted, tt.accepted)
			}
		})
	}
}

func TestInvalidArgumentError_Message(t *testing.T) {
	err := ValidateArgument("redirectUrl", 42, KindString)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, part := range []string{`"redirectUrl"`, "42", "int", "string"} {
		if !strings.Contains(msg, part) {
			t.Errorf("message %q missing %q", msg, part)
		}
	}
}

func TestStringSequence(t *testing.T) {
	values, err := StringSequence("perms", []any{"email", "basic_access"})
	if err != nil {
		t.Fatalf("StringSequence() error = %v", err)
	}
	if len(values) != 2 || values[0] != "email" || values[1] != "basic_access" {
		t.Errorf("StringSequence() = %v", values)
	}

	if _, err := StringSequence("perms", []any{"email", 3}); err == nil {
		t.Error("StringSequence() with a non-string element should fail")
	}
	if _, err := StringSequence("perms", "email"); err == nil {
		t.Error("StringSequence() with a string should fail")
	}
}

func TestParseAppID(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		isInt   bool
		wantErr bool
	}{
		{name: "string", value: "abc", want: "abc"},
		{name: "int", value: 12345, want: "12345", isInt: true},
		{name: "json number", value: float64(12345), want: "12345", isInt: true},
		{name: "object", value: struct{}{}, wantErr: true},
		{name: "nil", value: nil, wantErr: true},
		{name: "array", value: []string{"1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseAppID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAppID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var invalid *InvalidArgumentError
				if !errors.As(err, &invalid) || invalid.Name != "appId" {
					t.Errorf("ParseAppID() error = %v, want InvalidArgument naming appId", err)
				}
				return
			}
			if id.String() != tt.want {
				t.Errorf("String() = %q, want %q", id.String(), tt.want)
			}
			if id.IsInteger() != tt.isInt {
				t.Errorf("IsInteger() = %v, want %v", id.IsInteger(), tt.isInt)
			}
		})
	}
}

func TestAppID_JSON(t *testing.T) {
	var id AppID
	if err := id.UnmarshalJSON([]byte(`123`)); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if !id.IsInteger() || id.String() != "123" {
		t.Errorf("got %v", id)
	}
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(data) != "123" {
		t.Errorf("MarshalJSON() = %s, want 123", data)
	}

	if err := id.UnmarshalJSON([]byte(`{"id":1}`)); err == nil {
		t.Error("UnmarshalJSON() of an object should fail")
	}
}
