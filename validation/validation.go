package validation

import (
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"
)

// Violations maps a field name to a violation code; codes are translated by i18n.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, "out_of_range")
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, "out_of_range")
	}
}

// Email accepts a bare address only ("a@b.com"), not "Name <a@b.com>".
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		v.Add(field, "required")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value[strings.LastIndex(value, "@"):], ".") {
		v.Add(field, "invalid_email")
	}
}

func MinLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(value) < n {
		v.Add(field, "too_short")
	}
}

func MaxLen(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, "too_long")
	}
}

// MaxBytes bounds the encoded size of value, for inputs such as bcrypt
// passwords whose limit is in bytes rather than characters.
func MaxBytes(field, value string, n int, v Violations) {
	if len(value) > n {
		v.Add(field, "too_long")
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	if !slices.Contains(allowed, value) {
		v.Add(field, "invalid_choice")
	}
}
