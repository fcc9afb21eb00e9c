// Package filter composes per-page search and filter criteria.
//
// Every builder returns nil when its input is unset (empty or "all").
// Apply treats a nil criterion as the identity, so a page can pass
// every control it owns without checking which ones the user touched.
package filter

import (
	"strings"
)

// All is the sentinel select value meaning "no constraint".
const All = "all"

// Criterion reports whether a record passes one filter control.
type Criterion[T any] func(T) bool

// Apply returns the records that satisfy every non-nil criterion, in
// their original order. The result is never nil.
func Apply[T any](records []T, criteria ...Criterion[T]) []T {
	active := make([]Criterion[T], 0, len(criteria))
	for _, c := range criteria {
		if c != nil {
			active = append(active, c)
		}
	}

	out := make([]T, 0, len(records))
next:
	for _, r := range records {
		for _, c := range active {
			if !c(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Unset reports whether a control value imposes no constraint.
func Unset(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, All)
}

// Search matches records where any field contains term,
// case-insensitively.
func Search[T any](term string, fields ...func(T) string) Criterion[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || len(fields) == 0 {
		return nil
	}
	return func(r T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(r)), term) {
				return true
			}
		}
		return false
	}
}

// Equals matches records whose field equals value, case-insensitively.
func Equals[T any](value string, field func(T) string) Criterion[T] {
	if Unset(value) {
		return nil
	}
	value = strings.TrimSpace(value)
	return func(r T) bool {
		return strings.EqualFold(field(r), value)
	}
}

// Contains matches records whose field contains value,
// case-insensitively. Used for coarse selects such as an OS family
// matched against a full OS string.
func Contains[T any](value string, field func(T) string) Criterion[T] {
	if Unset(value) {
		return nil
	}
	value = strings.ToLower(strings.TrimSpace(value))
	return func(r T) bool {
		return strings.Contains(strings.ToLower(field(r)), value)
	}
}

// Flag matches a boolean field against "true"/"yes" or "false"/"no".
// Any other value imposes no constraint.
func Flag[T any](value string, field func(T) bool) Criterion[T] {
	var want bool
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes":
		want = true
	case "false", "no":
		want = false
	default:
		return nil
	}
	return func(r T) bool {
		return field(r) == want
	}
}

// AnyOf matches records where one of the field's values equals value,
// case-insensitively. Used for tag lists.
func AnyOf[T any](value string, field func(T) []string) Criterion[T] {
	if Unset(value) {
		return nil
	}
	value = strings.TrimSpace(value)
	return func(r T) bool {
		for _, v := range field(r) {
			if strings.EqualFold(v, value) {
				return true
			}
		}
		return false
	}
}
