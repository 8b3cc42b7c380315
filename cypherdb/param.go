package cypherdb

import (
	"iter"
	"slices"
)

// FromNullable writes a nullable value of a type natively encoded by the
// driver
func FromNullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// FromNullableInteger writes a nullable integer as a wire integer
func FromNullableInteger[T Integer](p *T) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

// FromNullableFloat writes a nullable float as a wire float
func FromNullableFloat[T Float](p *T) any {
	if p == nil {
		return nil
	}
	return float64(*p)
}

// FromNullableChar writes a nullable rune as a one character string
func FromNullableChar(p *rune) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

// CopySlice copies a slice of natively encoded values
func CopySlice[T any](s []T) []T {
	return slices.Clone(s)
}

// FromSlice writes a slice mapping each element with f
func FromSlice[T any](s []T, f func(e T) any) []any {
	if s == nil {
		return nil
	}
	res := make([]any, 0, len(s))
	for _, i := range s {
		res = append(res, f(i))
	}
	return res
}

// CollectSeq collects a sequence of natively encoded values
func CollectSeq[T any](s iter.Seq[T]) []T {
	if s == nil {
		return nil
	}
	return slices.Collect(s)
}

// FromSeq writes a sequence mapping each element with f
func FromSeq[T any](s iter.Seq[T], f func(e T) any) []any {
	if s == nil {
		return nil
	}
	var res []any
	for i := range s {
		res = append(res, f(i))
	}
	return res
}

// FromMap writes a map mapping each value with f
func FromMap[V any](m map[string]V, f func(e V) any) map[string]any {
	if m == nil {
		return nil
	}
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = f(v)
	}
	return res
}
