package querybuilder

// Unwrap returns the value behind v, or the zero value for nil.
func Unwrap[T any](v *T) T {
	var t T
	if v == nil {
		return t
	}
	return *v
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// first returns the first optional argument or fallback.
func first[T comparable](opt []T, fallback T) T {
	var zero T
	if len(opt) == 0 || opt[0] == zero {
		return fallback
	}
	return opt[0]
}
