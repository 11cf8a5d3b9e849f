// Package mapper provides generic slice conversion helpers for DTOs and models.
package mapper

// MapSlice applies mapFunc to each item. A nil input yields an empty slice so
// JSON encodes [] instead of null.
func MapSlice[T any, R any](items []T, mapFunc func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, mapFunc(item))
	}
	return out
}

// MapSliceWithError stops at the first conversion error.
func MapSliceWithError[T any, R any](items []T, mapFunc func(T) (R, error)) ([]R, error) {
	out := make([]R, 0, len(items))
	for _, item := range items {
		r, err := mapFunc(item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
