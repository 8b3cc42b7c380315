package resolve

import (
	"go/parser"
	"testing"

	"github.com/stretchr/testify/require"
	"xorkevin.dev/cypherforge/typedesc"
)

func testScope() typedesc.Scope {
	return typedesc.Scope{
		Package: "somepackage",
		Imports: map[string]string{
			"atomic": typedesc.PathAtomic,
			"dbtype": typedesc.PathDBType,
			"iter":   typedesc.PathIter,
			"neo4j":  typedesc.PathNeo4j,
			"time":   "time",
			"uuid":   "github.com/google/uuid",
		},
	}
}

func describe(t *testing.T, c *typedesc.Catalog, nestingCap int, root typedesc.Anchor, src string) typedesc.Descriptor {
	t.Helper()

	assert := require.New(t)

	expr, err := parser.ParseExpr(src)
	assert.NoError(err)
	b := typedesc.NewBuilder(c)
	if nestingCap != 0 {
		b.NestingCap = nestingCap
	}
	d, err := b.Describe(root, expr, testScope())
	assert.NoError(err)
	return d
}

func TestReturnType(t *testing.T) {
	t.Parallel()

	root := typedesc.Anchor{Element: "Players.Find"}

	for _, tc := range []struct {
		Name     string
		Expr     string
		Cap      int
		Template Template
		Mapper   string
		Elem     string
		Row      bool
		Err      error
	}{
		{
			Name:     "unboxes primitive booleans",
			Expr:     "bool",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToPrimitiveBoolean(v)",
		},
		{
			Name:     "reads chars",
			Expr:     "rune",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToPrimitiveChar(v)",
		},
		{
			Name:     "narrows integers",
			Expr:     "int32",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToPrimitiveInteger[int32](v)",
		},
		{
			Name:     "narrows floats",
			Expr:     "float32",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToPrimitiveFloat[float32](v)",
		},
		{
			Name:     "reads nullable integers",
			Expr:     "*int64",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToNullableInteger[int64](v)",
		},
		{
			Name:     "reads nullable booleans",
			Expr:     "*bool",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToNullableBoolean(v)",
		},
		{
			Name:     "ends in void",
			Expr:     "struct{}",
			Template: TemplateVoid,
		},
		{
			Name:     "reads strings",
			Expr:     "string",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsString(v)",
		},
		{
			Name:     "reads nullable strings",
			Expr:     "*string",
			Template: TemplateSingle,
			Mapper:   "cypherdb.ToNullableString(v)",
		},
		{
			Name:     "reads objects",
			Expr:     "any",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsAny(v)",
		},
		{
			Name:     "reads date times",
			Expr:     "time.Time",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsDateTime(v)",
		},
		{
			Name:     "reads nodes through driver aliases",
			Expr:     "neo4j.Node",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsNode(v)",
		},
		{
			Name:     "reads durations",
			Expr:     "dbtype.Duration",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsDuration(v)",
		},
		{
			Name:     "reads whole records",
			Expr:     "*neo4j.Record",
			Template: TemplateSingle,
			Mapper:   "cypherdb.WholeRecord(v)",
			Row:      true,
		},
		{
			Name:     "reads byte arrays",
			Expr:     "[]byte",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsByteArray(v)",
		},
		{
			Name:     "decodes lists of native values natively",
			Expr:     "[]string",
			Template: TemplateList,
			Elem:     "string",
		},
		{
			Name:     "decodes lists of objects natively",
			Expr:     "[]any",
			Template: TemplateList,
			Elem:     "any",
		},
		{
			Name:     "maps list rows",
			Expr:     "[]int32",
			Template: TemplateList,
			Mapper:   "cypherdb.ToPrimitiveInteger[int32](v)",
			Elem:     "int32",
		},
		{
			Name:     "maps sequence rows",
			Expr:     "iter.Seq[*float64]",
			Template: TemplateList,
			Mapper:   "cypherdb.ToNullableFloat[float64](v)",
			Elem:     "*float64",
		},
		{
			Name:     "lists whole records",
			Expr:     "[]*neo4j.Record",
			Template: TemplateList,
			Mapper:   "cypherdb.WholeRecord(v)",
			Elem:     "*neo4j.Record",
			Row:      true,
		},
		{
			Name:     "reads maps",
			Expr:     "map[string]int64",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsMap(v, cypherdb.ToPrimitiveInteger[int64])",
		},
		{
			Name:     "reads maps of objects",
			Expr:     "map[string]any",
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsAnyMap(v)",
		},
		{
			Name:     "streams rows",
			Expr:     "iter.Seq2[neo4j.Node, error]",
			Template: TemplateStream,
			Mapper:   "cypherdb.AsNode(v)",
			Elem:     "neo4j.Node",
		},
		{
			Name:     "streams lists",
			Expr:     "iter.Seq2[[]bool, error]",
			Template: TemplateStream,
			Mapper:   "cypherdb.AsList(v, cypherdb.ToPrimitiveBoolean)",
			Elem:     "[]bool",
		},
		{
			Name:     "streams untyped lists",
			Expr:     "iter.Seq2[[]any, error]",
			Template: TemplateStream,
			Mapper:   "cypherdb.AsAnyList(v)",
			Elem:     "[]any",
		},
		{
			Name:     "streams sequences",
			Expr:     "iter.Seq2[iter.Seq[string], error]",
			Template: TemplateStream,
			Mapper:   "cypherdb.AsSeq(v, cypherdb.AsString)",
			Elem:     "iter.Seq[string]",
		},
		{
			Name:     "streams maps",
			Expr:     "iter.Seq2[map[string]*string, error]",
			Template: TemplateStream,
			Mapper:   "cypherdb.AsMap(v, cypherdb.ToNullableString)",
			Elem:     "map[string]*string",
		},
		{
			Name:     "composes nested containers past the default cap",
			Expr:     "map[string][]int32",
			Cap:      2,
			Template: TemplateSingle,
			Mapper:   "cypherdb.AsMap(v, func(v1 any) ([]int32, error) { return cypherdb.AsList(v1, cypherdb.ToPrimitiveInteger[int32]) })",
		},
		{
			Name:     "maps nested list rows",
			Expr:     "[][]bool",
			Cap:      2,
			Template: TemplateList,
			Mapper:   "cypherdb.AsList(v, cypherdb.ToPrimitiveBoolean)",
			Elem:     "[]bool",
		},
		{
			Name: "rejects local types",
			Expr: "Player",
			Err:  typedesc.ErrUnsupportedType,
		},
		{
			Name: "rejects errors",
			Expr: "error",
			Err:  typedesc.ErrUnsupportedType,
		},
		{
			Name: "rejects records as values",
			Expr: "map[string]*neo4j.Record",
			Err:  typedesc.ErrUnsupportedType,
		},
		{
			Name: "rejects atomics",
			Expr: "iter.Seq2[*atomic.Bool, error]",
			Err:  typedesc.ErrUnsupportedType,
		},
		{
			Name: "rejects nested void",
			Expr: "[]struct{}",
			Err:  typedesc.ErrUnsupportedNesting,
		},
		{
			Name: "rejects unconfigured references",
			Expr: "uuid.UUID",
			Err:  typedesc.ErrUnsupportedType,
		},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			assert := require.New(t)

			d := describe(t, typedesc.DefaultCatalog(), tc.Cap, root, tc.Expr)
			spec, err := New(typedesc.DefaultCatalog()).ReturnType(root, d)
			if tc.Err != nil {
				assert.ErrorIs(err, tc.Err)
				anchor, ok := typedesc.AnchorOf(err)
				assert.True(ok)
				assert.Equal(root, anchor)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.Template, spec.Template)
			assert.Equal(tc.Expr, spec.TypeRendering)
			assert.Equal(tc.Elem, spec.ElemRendering)
			assert.Equal(tc.Row, spec.Row)
			assert.Equal(d, spec.Descriptor)
			if tc.Mapper == "" {
				assert.Nil(spec.Mapper)
			} else {
				assert.Equal(tc.Mapper, typedesc.Render(spec.Mapper, "v"))
			}
		})
	}
}

func TestReturnTypeIdempotent(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	root := typedesc.Anchor{Element: "Players.All"}
	r := New(typedesc.DefaultCatalog())
	first, err := r.ReturnType(root, describe(t, typedesc.DefaultCatalog(), 0, root, "[]any"))
	assert.NoError(err)
	second, err := r.ReturnType(root, describe(t, typedesc.DefaultCatalog(), 0, root, "[]any"))
	assert.NoError(err)
	assert.Equal(first, second)
	assert.Equal(TemplateList, first.Template)
	assert.Nil(first.Mapper)
}

func TestNativeTypes(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	root := typedesc.Anchor{Element: "Players.Ids"}
	c := typedesc.NewCatalog([]string{"github.com/google/uuid.UUID"})
	r := New(c)

	spec, err := r.ReturnType(root, describe(t, c, 0, root, "uuid.UUID"))
	assert.NoError(err)
	assert.Equal(TemplateSingle, spec.Template)
	assert.Equal("cypherdb.As[uuid.UUID](v)", typedesc.Render(spec.Mapper, "v"))
	assert.True(IsNativeDecoder(spec.Mapper))

	spec, err = r.ReturnType(root, describe(t, c, 0, root, "[]uuid.UUID"))
	assert.NoError(err)
	assert.Equal(TemplateList, spec.Template)
	assert.Nil(spec.Mapper)

	s, err := r.Parameter(root, describe(t, c, 0, root, "[]uuid.UUID"))
	assert.NoError(err)
	assert.Equal("cypherdb.CopySlice(ids)", typedesc.Render(s.Mapper, "ids"))

	_, err = New(typedesc.DefaultCatalog()).Parameter(root, describe(t, c, 0, root, "uuid.UUID"))
	assert.ErrorIs(err, typedesc.ErrUnsupportedType)
}

func TestIsNativeDecoder(t *testing.T) {
	t.Parallel()

	assert := require.New(t)

	assert.True(IsNativeDecoder(decoder("AsString")))
	assert.True(IsNativeDecoder(decoder("AsAny")))
	assert.True(IsNativeDecoder(decoder("As[time.Duration]")))
	assert.False(IsNativeDecoder(decoder("ToPrimitiveBoolean")))
	assert.False(IsNativeDecoder(decoder("AsList").WithArgument("cypherdb.AsString")))
	assert.False(IsNativeDecoder(nil))
}
