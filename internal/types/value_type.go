package types

import (
	"fmt"
	"strings"
)

// ValueType is the input type of a field definition.
type ValueType int

const (
	ValueTypeText ValueType = iota
	ValueTypeEmail
	ValueTypeURL
	ValueTypeTel
	ValueTypeNumber
	ValueTypeTextarea
	ValueTypeSelect
	ValueTypeMultiSelect
	ValueTypeRadio
	ValueTypeCheckbox
	ValueTypeDate
	ValueTypeDateTime
	ValueTypeTime
	ValueTypeFile
	ValueTypeImage
	ValueTypeHidden
	ValueTypeHeading
	ValueTypeParagraph
	ValueTypeRating
	ValueTypeScale
	ValueTypeNps
	ValueTypeMatrix
)

var valueTypeNames = [...]string{
	ValueTypeText:        "text",
	ValueTypeEmail:       "email",
	ValueTypeURL:         "url",
	ValueTypeTel:         "tel",
	ValueTypeNumber:      "number",
	ValueTypeTextarea:    "textarea",
	ValueTypeSelect:      "select",
	ValueTypeMultiSelect: "multi_select",
	ValueTypeRadio:       "radio",
	ValueTypeCheckbox:    "checkbox",
	ValueTypeDate:        "date",
	ValueTypeDateTime:    "datetime",
	ValueTypeTime:        "time",
	ValueTypeFile:        "file",
	ValueTypeImage:       "image",
	ValueTypeHidden:      "hidden",
	ValueTypeHeading:     "heading",
	ValueTypeParagraph:   "paragraph",
	ValueTypeRating:      "rating",
	ValueTypeScale:       "scale",
	ValueTypeNps:         "nps",
	ValueTypeMatrix:      "matrix",
}

// valueTypeAliases maps every accepted spelling to its type.
var valueTypeAliases = map[string]ValueType{
	"text":         ValueTypeText,
	"email":        ValueTypeEmail,
	"url":          ValueTypeURL,
	"tel":          ValueTypeTel,
	"telephone":    ValueTypeTel,
	"phone":        ValueTypeTel,
	"number":       ValueTypeNumber,
	"numeric":      ValueTypeNumber,
	"integer":      ValueTypeNumber,
	"decimal":      ValueTypeNumber,
	"textarea":     ValueTypeTextarea,
	"longtext":     ValueTypeTextarea,
	"long_text":    ValueTypeTextarea,
	"select":       ValueTypeSelect,
	"dropdown":     ValueTypeSelect,
	"multi_select": ValueTypeMultiSelect,
	"multiselect":  ValueTypeMultiSelect,
	"radio":        ValueTypeRadio,
	"checkbox":     ValueTypeCheckbox,
	"date":         ValueTypeDate,
	"datetime":     ValueTypeDateTime,
	"date_time":    ValueTypeDateTime,
	"time":         ValueTypeTime,
	"file":         ValueTypeFile,
	"image":        ValueTypeImage,
	"hidden":       ValueTypeHidden,
	"heading":      ValueTypeHeading,
	"header":       ValueTypeHeading,
	"h1":           ValueTypeHeading,
	"h2":           ValueTypeHeading,
	"h3":           ValueTypeHeading,
	"paragraph":    ValueTypeParagraph,
	"text_block":   ValueTypeParagraph,
	"description":  ValueTypeParagraph,
	"rating":       ValueTypeRating,
	"stars":        ValueTypeRating,
	"scale":        ValueTypeScale,
	"slider":       ValueTypeScale,
	"nps":          ValueTypeNps,
	"matrix":       ValueTypeMatrix,
	"grid":         ValueTypeMatrix,
}

// ParseValueType parses a field type name, case-insensitively, accepting
// the common aliases (phone, dropdown, stars, ...).
func ParseValueType(s string) (ValueType, error) {
	if vt, ok := valueTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return vt, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownValueType, s)
}

// String returns the canonical type name.
func (vt ValueType) String() string {
	if vt < 0 || int(vt) >= len(valueTypeNames) {
		return fmt.Sprintf("ValueType(%d)", int(vt))
	}
	return valueTypeNames[vt]
}

// HTMLInputType returns the type attribute of the rendered <input>, or ""
// for types rendered with a different element.
func (vt ValueType) HTMLInputType() string {
	switch vt {
	case ValueTypeText, ValueTypeHidden:
		return "text"
	case ValueTypeEmail:
		return "email"
	case ValueTypeURL:
		return "url"
	case ValueTypeTel:
		return "tel"
	case ValueTypeNumber, ValueTypeRating, ValueTypeScale, ValueTypeNps:
		return "number"
	case ValueTypeDate:
		return "date"
	case ValueTypeDateTime:
		return "datetime-local"
	case ValueTypeTime:
		return "time"
	case ValueTypeFile, ValueTypeImage:
		return "file"
	case ValueTypeCheckbox:
		return "checkbox"
	case ValueTypeRadio:
		return "radio"
	default:
		return ""
	}
}

// RequiresOptions reports whether the type needs a list of choices.
func (vt ValueType) RequiresOptions() bool {
	switch vt {
	case ValueTypeSelect, ValueTypeMultiSelect, ValueTypeRadio, ValueTypeMatrix:
		return true
	}
	return false
}

// IsDisplayOnly reports whether the type carries no input (headings and
// paragraphs). Display-only fields are never validated.
func (vt ValueType) IsDisplayOnly() bool {
	return vt == ValueTypeHeading || vt == ValueTypeParagraph
}

// IsFileType reports whether the type is an upload.
func (vt ValueType) IsFileType() bool {
	return vt == ValueTypeFile || vt == ValueTypeImage
}

// IsMultiValue reports whether the type submits a list of values.
func (vt ValueType) IsMultiValue() bool {
	switch vt {
	case ValueTypeMultiSelect, ValueTypeCheckbox, ValueTypeMatrix:
		return true
	}
	return false
}

// IsNumeric reports whether submitted values must coerce to a number.
func (vt ValueType) IsNumeric() bool {
	switch vt {
	case ValueTypeNumber, ValueTypeRating, ValueTypeScale, ValueTypeNps:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler; JSON and YAML both use it.
func (vt ValueType) MarshalText() ([]byte, error) {
	if vt < 0 || int(vt) >= len(valueTypeNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownValueType, int(vt))
	}
	return []byte(valueTypeNames[vt]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (vt *ValueType) UnmarshalText(text []byte) error {
	parsed, err := ParseValueType(string(text))
	if err != nil {
		return err
	}
	*vt = parsed
	return nil
}
