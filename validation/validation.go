package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func MinInt(field string, val, minVal int64, v Violations) {
	if val < minVal {
		v[field] = "too_small"
	}
}

func NotEmptySlice[T any](field string, s []T, v Violations) {
	if len(s) == 0 {
		v[field] = "required"
	}
}
