// Package resolve plans the conversions between the declared types of query
// methods and the values exchanged with the driver
package resolve

import (
	"fmt"
	"strings"

	"xorkevin.dev/cypherforge/typedesc"
)

// Template is the execution shape of a query method
type Template string

const (
	TemplateSingle Template = "single"
	TemplateList   Template = "list"
	TemplateStream Template = "stream"
	TemplateVoid   Template = "void"
)

const (
	pkgRuntime = "cypherdb."
)

var referenceDecoders = map[string]string{
	typedesc.NameString:         "AsString",
	typedesc.NameNullableString: "ToNullableString",
	typedesc.NameAny:            "AsAny",
	typedesc.NameTime:           "AsDateTime",
	typedesc.NameNode:           "AsNode",
	typedesc.NameRelationship:   "AsRelationship",
	typedesc.NamePath:           "AsPath",
	typedesc.NameEntity:         "AsEntity",
	typedesc.NamePoint2D:        "AsPoint2D",
	typedesc.NamePoint3D:        "AsPoint3D",
	typedesc.NameDate:           "AsDate",
	typedesc.NameLocalTime:      "AsLocalTime",
	typedesc.NameLocalDateTime:  "AsLocalDateTime",
	typedesc.NameOffsetTime:     "AsTime",
	typedesc.NameDuration:       "AsDuration",
}

// nativeDecoders are plain type assertions the driver already satisfies
var nativeDecoders = map[string]struct{}{
	pkgRuntime + "AsAny":           {},
	pkgRuntime + "AsString":        {},
	pkgRuntime + "AsDateTime":      {},
	pkgRuntime + "AsNode":          {},
	pkgRuntime + "AsRelationship":  {},
	pkgRuntime + "AsPath":          {},
	pkgRuntime + "AsEntity":        {},
	pkgRuntime + "AsPoint2D":       {},
	pkgRuntime + "AsPoint3D":       {},
	pkgRuntime + "AsDate":          {},
	pkgRuntime + "AsLocalTime":     {},
	pkgRuntime + "AsLocalDateTime": {},
	pkgRuntime + "AsTime":          {},
	pkgRuntime + "AsDuration":      {},
}

type (
	// Resolver resolves descriptors against a catalog
	Resolver struct {
		Catalog *typedesc.Catalog
	}

	// ReturnSpec is the plan for reading the result of a query method
	//
	// For the single template Mapper decodes the first value of the only row
	// into TypeRendering. For the list and stream templates Mapper decodes the
	// first value of each row into ElemRendering. A nil Mapper in a list or
	// stream is a native decoding of the driver value. Row marks Mapper as
	// mapping the whole row.
	ReturnSpec struct {
		TypeRendering string
		ElemRendering string
		Template      Template
		Mapper        typedesc.Mapper
		Row           bool
		Descriptor    typedesc.Descriptor
	}
)

// New returns a resolver over the catalog
func New(c *typedesc.Catalog) Resolver {
	return Resolver{
		Catalog: c,
	}
}

func decoder(name string) typedesc.StaticCall {
	return typedesc.StaticCall{
		Target: "value",
		Func:   pkgRuntime + name,
		Value:  true,
	}
}

// IsNativeDecoder reports whether m is a plain type assertion of a value
// decoded by the driver
func IsNativeDecoder(m typedesc.Mapper) bool {
	s, ok := m.(typedesc.StaticCall)
	if !ok || len(s.Args) != 0 || s.Inner != nil {
		return false
	}
	if _, ok := nativeDecoders[s.Func]; ok {
		return true
	}
	return strings.HasPrefix(s.Func, pkgRuntime+"As[")
}

// ReturnType plans the result of a query method returning d
func (r Resolver) ReturnType(root typedesc.Anchor, d typedesc.Descriptor) (ReturnSpec, error) {
	spec := ReturnSpec{
		TypeRendering: d.Rendering(),
		Descriptor:    d,
	}
	if typedesc.IsVoid(d) {
		spec.Template = TemplateVoid
		return spec, nil
	}
	if typedesc.IsReference(d, typedesc.NameRecord) {
		spec.Template = TemplateSingle
		spec.Mapper = decoder("WholeRecord")
		spec.Row = true
		return spec, nil
	}
	c, ok := d.(typedesc.Container)
	if !ok || c.Shape == typedesc.ShapeMap {
		m, err := r.decoder(root, d)
		if err != nil {
			return ReturnSpec{}, err
		}
		spec.Template = TemplateSingle
		spec.Mapper = m
		return spec, nil
	}

	elem := c.Elem()
	spec.ElemRendering = elem.Rendering()
	switch c.Shape {
	case typedesc.ShapeStream:
		spec.Template = TemplateStream
	default:
		spec.Template = TemplateList
	}
	if typedesc.IsReference(elem, typedesc.NameRecord) {
		spec.Mapper = decoder("WholeRecord")
		spec.Row = true
		return spec, nil
	}
	m, err := r.decoder(root, elem)
	if err != nil {
		return ReturnSpec{}, err
	}
	if spec.Template == TemplateList && IsNativeDecoder(m) {
		m = nil
	}
	spec.Mapper = m
	return spec, nil
}

func (r Resolver) decoder(root typedesc.Anchor, d typedesc.Descriptor) (typedesc.Mapper, error) {
	switch d := d.(type) {
	case typedesc.Primitive:
		return primitiveDecoder(root, d.Kind, d.Name, "ToPrimitive")
	case typedesc.Boxed:
		if d.Kind == typedesc.KindVoid {
			return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedNesting, fmt.Sprintf("void as subcomponent is not supported: %s", d.Source))
		}
		return primitiveDecoder(root, d.Kind, d.Name, "ToNullable")
	case typedesc.ArrayOf:
		return decoder("AsByteArray"), nil
	case typedesc.Reference:
		return r.referenceDecoder(root, d)
	case typedesc.Container:
		return r.containerDecoder(root, d)
	default:
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", d.Rendering()))
	}
}

func primitiveDecoder(root typedesc.Anchor, kind typedesc.Kind, name, prefix string) (typedesc.Mapper, error) {
	switch kind {
	case typedesc.KindBool:
		return decoder(prefix + "Boolean"), nil
	case typedesc.KindChar:
		return decoder(prefix + "Char"), nil
	case typedesc.KindByte, typedesc.KindShort, typedesc.KindInt, typedesc.KindLong:
		return decoder(prefix + "Integer[" + name + "]"), nil
	case typedesc.KindFloat, typedesc.KindDouble:
		return decoder(prefix + "Float[" + name + "]"), nil
	default:
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Scalar %s is not supported", name))
	}
}

func (r Resolver) referenceDecoder(root typedesc.Anchor, d typedesc.Reference) (typedesc.Mapper, error) {
	if d.Local || len(d.Args) != 0 {
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", d.Source))
	}
	if d.Name == typedesc.NameRecord {
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("%s is only supported as a row: %s", d.Name, d.Source))
	}
	if name, ok := referenceDecoders[d.Name]; ok {
		return decoder(name), nil
	}
	if r.Catalog.IsNative(d.Name) {
		return decoder("As[" + d.Source + "]"), nil
	}
	return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", d.Source))
}

func (r Resolver) containerDecoder(root typedesc.Anchor, d typedesc.Container) (typedesc.Mapper, error) {
	if d.Shape == typedesc.ShapeStream {
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedNesting, fmt.Sprintf("%s as subcomponent is not supported: %s", d.Shape, d.Source))
	}
	elem := d.Elem()
	comp, err := r.decoder(root, elem)
	if err != nil {
		return nil, err
	}
	identity := typedesc.Equal(comp, decoder("AsAny"))
	var m typedesc.StaticCall
	switch d.Shape {
	case typedesc.ShapeList:
		if identity {
			return decoder("AsAnyList"), nil
		}
		m = typedesc.StaticCall{Target: "value", Func: pkgRuntime + "AsList"}
	case typedesc.ShapeCollection:
		m = typedesc.StaticCall{Target: "value", Func: pkgRuntime + "AsSeq"}
	case typedesc.ShapeMap:
		if identity {
			return decoder("AsAnyMap"), nil
		}
		m = typedesc.StaticCall{Target: "value", Func: pkgRuntime + "AsMap"}
	default:
		return nil, typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", d.Source))
	}
	return m.WithArgument(typedesc.DecoderFunc(comp, fmt.Sprintf("v%d", d.NestingLevel+1), elem.Rendering())), nil
}
