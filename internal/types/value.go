package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
	KindArray
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "null"
	}
}

// Value is one submitted field value: text, number, bool, list of strings,
// or null. The zero Value is Null. Values are immutable; constructors copy
// their inputs.
//
// Empty and null are the same state: Text("") and Array(nil) both yield Null.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
	arr  []string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Text returns a text Value, or Null for the empty string.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Number returns a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array returns a multi-value Value, or Null for an empty list.
func Array(items []string) Value {
	if len(items) == 0 {
		return Value{}
	}
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindArray, arr: cp}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether v carries no usable data. Numbers and booleans
// are never empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == ""
	case KindArray:
		return len(v.arr) == 0
	default:
		return false
	}
}

// AsString returns the text of a Text value.
func (v Value) AsString() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsNumber returns the numeric reading of v. Text is parsed with
// strconv.ParseFloat; booleans, arrays and null do not coerce.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(v.text, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsBool returns the boolean reading of v. Recognised text forms are
// true/1/yes/on and false/0/no/off, case-insensitive. Numbers map to n != 0.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindNumber:
		return v.num != 0, true
	case KindText:
		switch strings.ToLower(v.text) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return false, false
}

// AsArray returns the elements of an Array value. The slice is shared;
// callers must not modify it.
func (v Value) AsArray() ([]string, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// String renders v for display: arrays are comma-joined, null is "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return FormatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		return strings.Join(v.arr, ", ")
	default:
		return ""
	}
}

// Any returns the generic representation used by condition evaluation:
// string, float64, bool, []any of strings, or nil.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, s := range v.arr {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same variant and data.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == other.text
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if v.arr[i] != other.arr[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// FromAny converts a decoded JSON value into a Value. Array elements that
// are not strings are rendered with their scalar text form. Objects and
// nested arrays are rejected with ErrInvalidData.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Null(), fmt.Errorf("%w: %q is not a number", ErrInvalidData, x)
		}
		return Number(f), nil
	case []string:
		return Array(x), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, elem := range x {
			s, err := scalarText(elem)
			if err != nil {
				return Null(), err
			}
			items = append(items, s)
		}
		return Array(items), nil
	case Value:
		return x, nil
	default:
		return Null(), fmt.Errorf("%w: unsupported value of type %T", ErrInvalidData, raw)
	}
}

func scalarText(elem any) (string, error) {
	switch e := elem.(type) {
	case string:
		return e, nil
	case bool:
		return strconv.FormatBool(e), nil
	case float64:
		return FormatNumber(e), nil
	case json.Number:
		return e.String(), nil
	case int:
		return strconv.Itoa(e), nil
	default:
		return "", fmt.Errorf("%w: unsupported array element of type %T", ErrInvalidData, elem)
	}
}

// FormatNumber renders a float without trailing zeros ("18", "2.5").
func FormatNumber(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler using the untagged wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsInf(v.num, 0) || math.IsNaN(v.num)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Values maps field name (or field id) to submitted value.
type Values map[string]Value

// ValuesFromMap converts a decoded JSON object into Values.
func ValuesFromMap(m map[string]any) (Values, error) {
	if len(m) > MaxSubmissionFields {
		return nil, ErrSubmissionTooLarge
	}
	out := make(Values, len(m))
	for k, raw := range m {
		v, err := FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Generic converts the values to the representation consumed by condition
// evaluation. Null values are kept as nil entries so that presence is
// preserved.
func (vs Values) Generic() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Any()
	}
	return out
}

// Lookup returns the value stored under id, falling back to name.
func (vs Values) Lookup(id, name string) (Value, bool) {
	if id != "" {
		if v, ok := vs[id]; ok {
			return v, true
		}
	}
	v, ok := vs[name]
	return v, ok
}
