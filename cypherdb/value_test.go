package cypherdb

import (
	"slices"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/require"
)

func TestAs(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	s, err := As[string]("a")
	assert.NoError(err)
	assert.Equal("a", s)

	_, err = As[string](nil)
	assert.ErrorIs(err, ErrNullValue)

	_, err = As[string](int64(1))
	assert.ErrorIs(err, ErrValueType)
	assert.ErrorContains(err, "Expected value of type string, received int64")

	v, err := As[any](nil)
	assert.NoError(err)
	assert.Nil(v)

	now := time.Now()
	dt, err := AsDateTime(now)
	assert.NoError(err)
	assert.Equal(now, dt)

	n, err := AsNode(dbtype.Node{ElementId: "4:abc:1", Labels: []string{"Player"}})
	assert.NoError(err)
	assert.Equal([]string{"Player"}, n.Labels)

	_, err = AsRelationship(dbtype.Node{})
	assert.ErrorIs(err, ErrValueType)

	d, err := AsDate(dbtype.Date(now))
	assert.NoError(err)
	assert.Equal(dbtype.Date(now), d)
}

func TestIntegers(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	i, err := ToPrimitiveInteger[int32](int64(int32(-5)))
	assert.NoError(err)
	assert.Equal(int32(-5), i)

	_, err = ToPrimitiveInteger[int8](int64(128))
	assert.ErrorIs(err, ErrValueRange)

	_, err = ToPrimitiveInteger[uint32](int64(-1))
	assert.ErrorIs(err, ErrValueRange)

	_, err = ToPrimitiveInteger[int64](nil)
	assert.ErrorIs(err, ErrNullValue)

	_, err = ToPrimitiveInteger[int64](1.5)
	assert.ErrorIs(err, ErrValueType)

	p, err := ToNullableInteger[int16](nil)
	assert.NoError(err)
	assert.Nil(p)

	p, err = ToNullableInteger[int16](int64(300))
	assert.NoError(err)
	assert.Equal(int16(300), *p)

	_, err = ToNullableInteger[uint8](int64(300))
	assert.ErrorIs(err, ErrValueRange)
}

func TestFloats(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	f, err := ToPrimitiveFloat[float32](1.5)
	assert.NoError(err)
	assert.Equal(float32(1.5), f)

	g, err := ToPrimitiveFloat[float64](int64(2))
	assert.NoError(err)
	assert.Equal(2.0, g)

	_, err = ToPrimitiveFloat[float64](nil)
	assert.ErrorIs(err, ErrNullValue)

	_, err = ToPrimitiveFloat[float64]("2")
	assert.ErrorIs(err, ErrValueType)

	p, err := ToNullableFloat[float64](nil)
	assert.NoError(err)
	assert.Nil(p)
}

func TestBooleansAndStrings(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	b, err := ToPrimitiveBoolean(true)
	assert.NoError(err)
	assert.True(b)

	_, err = ToPrimitiveBoolean(nil)
	assert.ErrorIs(err, ErrNullValue)

	pb, err := ToNullableBoolean(false)
	assert.NoError(err)
	assert.False(*pb)

	ps, err := ToNullableString(nil)
	assert.NoError(err)
	assert.Nil(ps)

	ps, err = ToNullableString("a")
	assert.NoError(err)
	assert.Equal("a", *ps)

	bs, err := AsByteArray(nil)
	assert.NoError(err)
	assert.Nil(bs)

	bs, err = AsByteArray([]byte("ab"))
	assert.NoError(err)
	assert.Equal([]byte("ab"), bs)

	_, err = AsByteArray("ab")
	assert.ErrorIs(err, ErrValueType)
}

func TestChars(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		Name  string
		Value any
		Char  rune
		Err   error
		Msg   string
	}{
		{
			Name:  "reads one char",
			Value: "a",
			Char:  'a',
		},
		{
			Name:  "reads multibyte chars",
			Value: "é",
			Char:  'é',
		},
		{
			Name:  "errors on empty strings",
			Value: "",
			Err:   ErrValueRange,
			Msg:   "received string is empty",
		},
		{
			Name:  "errors on long strings",
			Value: "ab",
			Err:   ErrValueRange,
			Msg:   "received string has more than 1 char",
		},
		{
			Name:  "errors on null",
			Value: nil,
			Err:   ErrNullValue,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert := require.New(t)

			c, err := ToPrimitiveChar(tc.Value)
			if tc.Err != nil {
				assert.ErrorIs(err, tc.Err)
				assert.ErrorContains(err, tc.Msg)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.Char, c)
		})
	}

	p, err := ToNullableChar(nil)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestContainers(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	l, err := AsList([]any{int64(1), int64(2)}, ToPrimitiveInteger[int32])
	assert.NoError(err)
	assert.Equal([]int32{1, 2}, l)

	l, err = AsList(nil, ToPrimitiveInteger[int32])
	assert.NoError(err)
	assert.Nil(l)

	_, err = AsList([]any{int64(1), "2"}, ToPrimitiveInteger[int32])
	assert.ErrorIs(err, ErrValueType)
	assert.ErrorContains(err, "Invalid list element 1")

	_, err = AsList("1", ToPrimitiveInteger[int32])
	assert.ErrorIs(err, ErrValueType)

	nested, err := AsList([]any{[]any{true}, []any{}}, func(v1 any) ([]bool, error) { return AsList(v1, ToPrimitiveBoolean) })
	assert.NoError(err)
	assert.Equal([][]bool{{true}, {}}, nested)

	s, err := AsSeq([]any{"a", "b"}, AsString)
	assert.NoError(err)
	assert.Equal([]string{"a", "b"}, slices.Collect(s))

	m, err := AsMap(map[string]any{"a": int64(1)}, ToPrimitiveInteger[int])
	assert.NoError(err)
	assert.Equal(map[string]int{"a": 1}, m)

	_, err = AsMap(map[string]any{"a": nil}, ToPrimitiveInteger[int])
	assert.ErrorIs(err, ErrNullValue)
	assert.ErrorContains(err, "Invalid map value a")

	am, err := AsAnyMap(map[string]any{"a": nil})
	assert.NoError(err)
	assert.Equal(map[string]any{"a": nil}, am)

	al, err := AsAnyList([]any{nil, "a"})
	assert.NoError(err)
	assert.Equal([]any{nil, "a"}, al)

	_, err = AsAnyMap([]any{})
	assert.ErrorIs(err, ErrValueType)
}

func TestParams(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	var nilBool *bool
	assert.Nil(FromNullable(nilBool))
	b := true
	assert.Equal(true, FromNullable(&b))

	var nilShort *int16
	assert.Nil(FromNullableInteger(nilShort))
	short := int16(7)
	assert.Equal(int64(7), FromNullableInteger(&short))

	f := float32(1.5)
	assert.Equal(float64(1.5), FromNullableFloat(&f))
	assert.Nil(FromNullableFloat[float32](nil))

	r := 'x'
	assert.Equal("x", FromNullableChar(&r))
	assert.Nil(FromNullableChar(nil))

	src := []int64{1, 2}
	cp := CopySlice(src)
	cp[0] = 3
	assert.Equal([]int64{1, 2}, src)

	assert.Equal([]any{int64(1), int64(2)}, FromSlice([]int32{1, 2}, func(e int32) any { return int64(e) }))
	assert.Nil(FromSlice[int32](nil, func(e int32) any { return int64(e) }))

	assert.Equal([]string{"a", "b"}, CollectSeq(slices.Values([]string{"a", "b"})))
	assert.Nil(CollectSeq[string](nil))
	assert.Equal([]any{"a"}, FromSeq(slices.Values([]rune{'a'}), func(e rune) any { return string(e) }))

	assert.Equal(map[string]any{"a": int64(1)}, FromMap(map[string]int{"a": 1}, func(e int) any { return int64(e) }))
	assert.Nil(FromMap[int](nil, func(e int) any { return int64(e) }))
}
