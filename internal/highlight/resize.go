package highlight

// resize returns values truncated or grown to n zero entries, reusing the
// backing array when it is large enough.
func resize[T any](values []T, n int) []T {
	n = max(n, 0)
	var zero T
	values = values[:0]
	if cap(values) < n {
		values = make([]T, 0, n)
	}
	values = values[:n]
	for i := range values {
		values[i] = zero
	}
	return values
}
