package types

// ValidationRules holds the optional constraints attached to a field.
// A nil pointer means the constraint is not set. The zero value is the
// empty rule set, which is omitted from storage and JSON output.
type ValidationRules struct {
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step      *float64 `json:"step,omitempty" yaml:"step,omitempty"`

	Pattern        string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage string `json:"pattern_message,omitempty" yaml:"pattern_message,omitempty"`

	MinSelections *int `json:"min_selections,omitempty" yaml:"min_selections,omitempty"`
	MaxSelections *int `json:"max_selections,omitempty" yaml:"max_selections,omitempty"`

	// Upload and date bounds are carried to renderers; the field validator
	// does not enforce them.
	AllowedExtensions []string `json:"allowed_extensions,omitempty" yaml:"allowed_extensions,omitempty"`
	MaxFileSize       *int64   `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty"`
	AllowedMimeTypes  []string `json:"allowed_mime_types,omitempty" yaml:"allowed_mime_types,omitempty"`
	MinDate           string   `json:"min_date,omitempty" yaml:"min_date,omitempty"`
	MaxDate           string   `json:"max_date,omitempty" yaml:"max_date,omitempty"`

	Custom map[string]any `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (r ValidationRules) IsEmpty() bool {
	return r.MinLength == nil && r.MaxLength == nil &&
		r.Min == nil && r.Max == nil && r.Step == nil &&
		r.Pattern == "" && r.PatternMessage == "" &&
		r.MinSelections == nil && r.MaxSelections == nil &&
		len(r.AllowedExtensions) == 0 && r.MaxFileSize == nil &&
		len(r.AllowedMimeTypes) == 0 &&
		r.MinDate == "" && r.MaxDate == "" &&
		len(r.Custom) == 0
}

// IntPtr returns a pointer to n, for building rule sets in code.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f, for building rule sets in code.
func FloatPtr(f float64) *float64 { return &f }

// IsZero reports IsEmpty; encoding/json uses it for omitzero.
func (r ValidationRules) IsZero() bool { return r.IsEmpty() }
