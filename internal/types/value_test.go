package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValueConstructors_EmptyIsNull(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"empty text", Text("")},
		{"nil array", Array(nil)},
		{"empty array", Array([]string{})},
		{"zero value", Value{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.v.IsNull() {
				t.Errorf("IsNull() = false, want true (kind %v)", tt.v.Kind())
			}
			if !tt.v.IsEmpty() {
				t.Errorf("IsEmpty() = false, want true")
			}
		})
	}
}

func TestValue_IsEmpty(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"text", Text("x"), false},
		{"whitespace text", Text(" "), false},
		{"zero number", Number(0), false},
		{"false bool", Bool(false), false},
		{"array", Array([]string{"a"}), false},
		{"null", Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_AsNumber(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		want   float64
		wantOK bool
	}{
		{"number", Number(2.5), 2.5, true},
		{"integer text", Text("42"), 42, true},
		{"decimal text", Text("-3.25"), -3.25, true},
		{"exponent text", Text("1e3"), 1000, true},
		{"non-numeric text", Text("abc"), 0, false},
		{"padded text", Text(" 42"), 0, false},
		{"bool", Bool(true), 0, false},
		{"array", Array([]string{"1"}), 0, false},
		{"null", Null(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.AsNumber()
			if ok != tt.wantOK {
				t.Fatalf("AsNumber() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("AsNumber() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_AsBool(t *testing.T) {
	tests := []struct {
		name   string
		v      Value
		want   bool
		wantOK bool
	}{
		{"bool true", Bool(true), true, true},
		{"bool false", Bool(false), false, true},
		{"text true", Text("TRUE"), true, true},
		{"text yes", Text("yes"), true, true},
		{"text on", Text("On"), true, true},
		{"text 1", Text("1"), true, true},
		{"text false", Text("False"), false, true},
		{"text no", Text("NO"), false, true},
		{"text off", Text("off"), false, true},
		{"text 0", Text("0"), false, true},
		{"text other", Text("maybe"), false, false},
		{"number nonzero", Number(-1), true, true},
		{"number zero", Number(0), false, true},
		{"array", Array([]string{"true"}), false, false},
		{"null", Null(), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.AsBool()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("AsBool() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestArray_CopiesInput(t *testing.T) {
	items := []string{"a", "b"}
	v := Array(items)
	items[0] = "z"

	got, _ := v.AsArray()
	if got[0] != "a" {
		t.Errorf("AsArray()[0] = %q, want %q", got[0], "a")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Text("hi"), "hi"},
		{Number(18), "18"},
		{Number(2.5), "2.5"},
		{Bool(true), "true"},
		{Array([]string{"a", "b"}), "a, b"},
		{Null(), ""},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want Value
	}{
		{"nil", nil, Null()},
		{"string", "x", Text("x")},
		{"empty string", "", Null()},
		{"float", 18.0, Number(18)},
		{"int", 7, Number(7)},
		{"json number", json.Number("3.5"), Number(3.5)},
		{"bool", true, Bool(true)},
		{"strings", []any{"a", "b"}, Array([]string{"a", "b"})},
		{"mixed scalars", []any{"a", 2.0, true}, Array([]string{"a", "2", "true"})},
		{"empty list", []any{}, Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.raw)
			if err != nil {
				t.Fatalf("FromAny() error = %v, want nil", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FromAny() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFromAny_RejectsObjects(t *testing.T) {
	_, err := FromAny(map[string]any{"a": 1.0})
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("FromAny(object) error = %v, want ErrInvalidData", err)
	}

	_, err = FromAny([]any{[]any{"nested"}})
	if !errors.Is(err, ErrInvalidData) {
		t.Errorf("FromAny(nested array) error = %v, want ErrInvalidData", err)
	}
}

func TestValue_JSON(t *testing.T) {
	in := `{"name":"Ada","age":36,"agree":true,"tags":["a","b"],"note":null,"blank":""}`

	var vs Values
	if err := json.Unmarshal([]byte(in), &vs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if s, _ := vs["name"].AsString(); s != "Ada" {
		t.Errorf("name = %q, want Ada", s)
	}
	if n, _ := vs["age"].AsNumber(); n != 36 {
		t.Errorf("age = %v, want 36", n)
	}
	if !vs["note"].IsNull() || !vs["blank"].IsNull() {
		t.Errorf("note/blank should decode to Null")
	}

	out, err := json.Marshal(vs["tags"])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `["a","b"]` {
		t.Errorf("Marshal(tags) = %s, want [\"a\",\"b\"]", out)
	}
}

func TestValues_GenericAndLookup(t *testing.T) {
	vs := Values{
		"field-id": Text("by id"),
		"email":    Text("by name"),
		"empty":    Null(),
	}

	generic := vs.Generic()
	if _, ok := generic["empty"]; !ok {
		t.Errorf("Generic() dropped null entry")
	}
	if generic["empty"] != nil {
		t.Errorf("Generic()[empty] = %v, want nil", generic["empty"])
	}

	v, ok := vs.Lookup("field-id", "email")
	if !ok || v.String() != "by id" {
		t.Errorf("Lookup(id) = %v, %v, want by id", v, ok)
	}
	v, ok = vs.Lookup("other-id", "email")
	if !ok || v.String() != "by name" {
		t.Errorf("Lookup(name fallback) = %v, %v, want by name", v, ok)
	}
	if _, ok := vs.Lookup("", "missing"); ok {
		t.Errorf("Lookup(missing) ok = true, want false")
	}
}
