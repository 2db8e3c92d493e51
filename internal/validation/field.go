// internal/validation/field.go
package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

/*
 * Field validation.
 *
 * Flow for one field:
 *   1. required and empty: exactly one "is required" message, nothing else
 *   2. optional and empty: valid
 *   3. type check (email, url, tel, numeric, date, datetime, time)
 *   4. rule checks (length, pattern, range, selections), all independent
 *
 * Messages interpolate the field label. String-format checks only apply to
 * text values; a number submitted to an email field is not format-checked.
 * An absent value is passed as types.Null().
 */

const defaultPatternMessage = "Invalid format"

// ValidateField returns the ordered error messages for value, or nil.
func ValidateField(field *schema.Field, value types.Value) []string {
	if value.IsEmpty() {
		if field.Required {
			return []string{fmt.Sprintf("%s is required", field.Label)}
		}
		return nil
	}

	var errs []string
	errs = appendTypeErrors(errs, field.ValueType, value, field.Label)
	errs = appendRuleErrors(errs, &field.Validation, value, field.Label)
	return errs
}

func appendTypeErrors(errs []string, vt types.ValueType, value types.Value, label string) []string {
	if vt.IsNumeric() {
		if _, ok := value.AsNumber(); !ok {
			errs = append(errs, fmt.Sprintf("%s must be a number", label))
		}
		return errs
	}

	s, ok := value.AsString()
	if !ok {
		return errs
	}

	switch vt {
	case types.ValueTypeEmail:
		if !IsValidEmail(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid email address", label))
		}
	case types.ValueTypeURL:
		if !IsValidURL(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid URL", label))
		}
	case types.ValueTypeTel:
		if !IsValidPhone(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid phone number", label))
		}
	case types.ValueTypeDate:
		if !IsValidDate(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", label))
		}
	case types.ValueTypeDateTime:
		if !IsValidDateTime(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid date and time", label))
		}
	case types.ValueTypeTime:
		if !IsValidTime(s) {
			errs = append(errs, fmt.Sprintf("%s must be a valid time (HH:MM)", label))
		}
	}
	return errs
}

func appendRuleErrors(errs []string, rules *types.ValidationRules, value types.Value, label string) []string {
	if s, ok := value.AsString(); ok {
		n := utf8.RuneCountInString(s)
		if rules.MinLength != nil && n < *rules.MinLength {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters", label, *rules.MinLength))
		}
		if rules.MaxLength != nil && n > *rules.MaxLength {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters", label, *rules.MaxLength))
		}
		if rules.Pattern != "" {
			if re := patterns.lookup(rules.Pattern); re != nil && !re.MatchString(s) {
				msg := rules.PatternMessage
				if msg == "" {
					msg = defaultPatternMessage
				}
				errs = append(errs, fmt.Sprintf("%s: %s", label, msg))
			}
		}
	}

	if n, ok := value.AsNumber(); ok {
		if rules.Min != nil && n < *rules.Min {
			errs = append(errs, fmt.Sprintf("%s must be at least %s", label, types.FormatNumber(*rules.Min)))
		}
		if rules.Max != nil && n > *rules.Max {
			errs = append(errs, fmt.Sprintf("%s must be at most %s", label, types.FormatNumber(*rules.Max)))
		}
	}

	if arr, ok := value.AsArray(); ok {
		if rules.MinSelections != nil && len(arr) < *rules.MinSelections {
			errs = append(errs, fmt.Sprintf("%s requires at least %d selections", label, *rules.MinSelections))
		}
		if rules.MaxSelections != nil && len(arr) > *rules.MaxSelections {
			errs = append(errs, fmt.Sprintf("%s allows at most %d selections", label, *rules.MaxSelections))
		}
	}
	return errs
}
