// Package ptr has helpers for optional fields.
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// String creates a pointer to the given string value.
func String(s string) *string {
	return &s
}

// Int creates a pointer to the given int value.
func Int(i int) *int {
	return &i
}

// Value dereferences p, returning the zero value for nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Clone returns a pointer to a copy of *p, or nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
