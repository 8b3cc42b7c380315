package cypherdb

import (
	"fmt"
	"iter"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"xorkevin.dev/kerrors"
)

type (
	// Integer is the set of integer types read from and written as wire
	// integers
	Integer interface {
		~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32
	}

	// Float is the set of float types read from and written as wire floats
	Float interface {
		~float32 | ~float64
	}
)

func errNull() error {
	return kerrors.WithKind(nil, ErrNullValue, "value is null")
}

func errType[T any](v any) error {
	var zero T
	return kerrors.WithKind(nil, ErrValueType, fmt.Sprintf("Expected value of type %T, received %T", zero, v))
}

// As reads a value of a type natively decoded by the driver
func As[T any](v any) (T, error) {
	var zero T
	if v == nil {
		if _, ok := any(&zero).(*any); ok {
			return zero, nil
		}
		return zero, errNull()
	}
	t, ok := v.(T)
	if !ok {
		return zero, errType[T](v)
	}
	return t, nil
}

func toNullable[T any](v any, f func(v any) (T, error)) (*T, error) {
	if v == nil {
		return nil, nil
	}
	t, err := f(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ToPrimitiveBoolean reads a non-null boolean
func ToPrimitiveBoolean(v any) (bool, error) {
	return As[bool](v)
}

// ToNullableBoolean reads a nullable boolean
func ToNullableBoolean(v any) (*bool, error) {
	return toNullable(v, ToPrimitiveBoolean)
}

// ToPrimitiveChar reads a non-null string of exactly one character
func ToPrimitiveChar(v any) (rune, error) {
	s, err := As[string](v)
	if err != nil {
		return 0, err
	}
	switch utf8.RuneCountInString(s) {
	case 0:
		return 0, kerrors.WithKind(nil, ErrValueRange, "received string is empty")
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	default:
		return 0, kerrors.WithKind(nil, ErrValueRange, "received string has more than 1 char")
	}
}

// ToNullableChar reads a nullable string of exactly one character
func ToNullableChar(v any) (*rune, error) {
	return toNullable(v, ToPrimitiveChar)
}

// ToPrimitiveInteger reads a non-null integer that fits in T
func ToPrimitiveInteger[T Integer](v any) (T, error) {
	i, err := As[int64](v)
	if err != nil {
		return 0, err
	}
	t := T(i)
	if int64(t) != i {
		return 0, kerrors.WithKind(nil, ErrValueRange, fmt.Sprintf("Integer %d overflows %T", i, t))
	}
	return t, nil
}

// ToNullableInteger reads a nullable integer that fits in T
func ToNullableInteger[T Integer](v any) (*T, error) {
	return toNullable(v, ToPrimitiveInteger[T])
}

// ToPrimitiveFloat reads a non-null float
func ToPrimitiveFloat[T Float](v any) (T, error) {
	switch f := v.(type) {
	case nil:
		return 0, errNull()
	case float64:
		return T(f), nil
	case int64:
		return T(f), nil
	default:
		return 0, errType[T](v)
	}
}

// ToNullableFloat reads a nullable float
func ToNullableFloat[T Float](v any) (*T, error) {
	return toNullable(v, ToPrimitiveFloat[T])
}

// AsString reads a non-null string
func AsString(v any) (string, error) {
	return As[string](v)
}

// ToNullableString reads a nullable string
func ToNullableString(v any) (*string, error) {
	return toNullable(v, AsString)
}

// AsAny reads any value as is
func AsAny(v any) (any, error) {
	return v, nil
}

// AsByteArray reads a byte array
func AsByteArray(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, errType[[]byte](v)
	}
	return b, nil
}

// AsDateTime reads a zoned or offset date time
func AsDateTime(v any) (time.Time, error) {
	return As[time.Time](v)
}

// AsNode reads a node
func AsNode(v any) (dbtype.Node, error) {
	return As[dbtype.Node](v)
}

// AsRelationship reads a relationship
func AsRelationship(v any) (dbtype.Relationship, error) {
	return As[dbtype.Relationship](v)
}

// AsPath reads a path
func AsPath(v any) (dbtype.Path, error) {
	return As[dbtype.Path](v)
}

// AsEntity reads a node or relationship
func AsEntity(v any) (dbtype.Entity, error) {
	return As[dbtype.Entity](v)
}

// AsPoint2D reads a two dimensional point
func AsPoint2D(v any) (dbtype.Point2D, error) {
	return As[dbtype.Point2D](v)
}

// AsPoint3D reads a three dimensional point
func AsPoint3D(v any) (dbtype.Point3D, error) {
	return As[dbtype.Point3D](v)
}

// AsDate reads a date
func AsDate(v any) (dbtype.Date, error) {
	return As[dbtype.Date](v)
}

// AsLocalTime reads a local time
func AsLocalTime(v any) (dbtype.LocalTime, error) {
	return As[dbtype.LocalTime](v)
}

// AsLocalDateTime reads a local date time
func AsLocalDateTime(v any) (dbtype.LocalDateTime, error) {
	return As[dbtype.LocalDateTime](v)
}

// AsTime reads an offset time
func AsTime(v any) (dbtype.Time, error) {
	return As[dbtype.Time](v)
}

// AsDuration reads a duration
func AsDuration(v any) (dbtype.Duration, error) {
	return As[dbtype.Duration](v)
}

// AsList reads a list mapping each element with f
func AsList[T any](v any, f func(v any) (T, error)) ([]T, error) {
	l, err := AsAnyList(v)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, nil
	}
	res := make([]T, 0, len(l))
	for n, i := range l {
		t, err := f(i)
		if err != nil {
			return nil, kerrors.WithMsg(err, fmt.Sprintf("Invalid list element %d", n))
		}
		res = append(res, t)
	}
	return res, nil
}

// AsAnyList reads a list
func AsAnyList(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, errType[[]any](v)
	}
	return l, nil
}

// AsSeq reads a list as a sequence mapping each element with f
func AsSeq[T any](v any, f func(v any) (T, error)) (iter.Seq[T], error) {
	l, err := AsList(v, f)
	if err != nil {
		return nil, err
	}
	return slices.Values(l), nil
}

// AsMap reads a map mapping each value with f
func AsMap[T any](v any, f func(v any) (T, error)) (map[string]T, error) {
	m, err := AsAnyMap(v)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	res := make(map[string]T, len(m))
	for k, i := range m {
		t, err := f(i)
		if err != nil {
			return nil, kerrors.WithMsg(err, fmt.Sprintf("Invalid map value %s", k))
		}
		res[k] = t
	}
	return res, nil
}

// AsAnyMap reads a map
func AsAnyMap(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errType[map[string]any](v)
	}
	return m, nil
}
