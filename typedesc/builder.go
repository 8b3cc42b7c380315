package typedesc

import (
	"fmt"
	"go/ast"
	"go/types"
	"path"
	"strconv"
	"strings"
)

// DefaultNestingCap is the default number of slices, sequences, and maps that
// may enclose each other
const DefaultNestingCap = 1

var primitiveKinds = map[string]Kind{
	"bool":    KindBool,
	"rune":    KindChar,
	"byte":    KindByte,
	"int8":    KindByte,
	"uint8":   KindByte,
	"int16":   KindShort,
	"uint16":  KindShort,
	"int32":   KindInt,
	"uint32":  KindInt,
	"int":     KindInt,
	"int64":   KindLong,
	"float32": KindFloat,
	"float64": KindDouble,
}

var predeclaredReferences = map[string]string{
	"string": NameString,
	"any":    NameAny,
	"error":  NameError,
}

type (
	// Scope resolves the identifiers of a file
	Scope struct {
		Package string
		Imports map[string]string
	}

	// Builder builds descriptors from go type expressions
	Builder struct {
		Catalog    *Catalog
		NestingCap int
	}
)

// FileScope returns the scope of a file of a package
func FileScope(pkgName string, file *ast.File) Scope {
	s := Scope{
		Package: pkgName,
		Imports: map[string]string{},
	}
	for _, i := range file.Imports {
		p, err := strconv.Unquote(i.Path.Value)
		if err != nil {
			continue
		}
		name := ImportName(p)
		if i.Name != nil {
			name = i.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		s.Imports[name] = p
	}
	return s
}

// ImportName returns the conventional package name of an import path
func ImportName(p string) string {
	base := path.Base(p)
	if isMajorVersion(base) {
		if dir := path.Dir(p); dir != "." && dir != "/" {
			base = path.Base(dir)
		}
	}
	if k := strings.IndexByte(base, '.'); k > 0 {
		base = base[:k]
	}
	return strings.ReplaceAll(base, "-", "_")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// NewBuilder returns a builder over the catalog with the default nesting cap
func NewBuilder(c *Catalog) Builder {
	return Builder{
		Catalog:    c,
		NestingCap: DefaultNestingCap,
	}
}

// Describe classifies a type expression, reporting errors against root
func (b Builder) Describe(root Anchor, expr ast.Expr, scope Scope) (Descriptor, error) {
	return b.describe(root, expr, scope, 0, 0)
}

func (b Builder) describe(root Anchor, expr ast.Expr, scope Scope, level, depth int) (Descriptor, error) {
	src := types.ExprString(expr)
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return b.describe(root, e.X, scope, level, depth)
	case *ast.Ident:
		if k, ok := primitiveKinds[e.Name]; ok {
			return Primitive{Kind: k, Name: e.Name, Source: src}, nil
		}
		name, local, err := b.qualify(root, e, scope)
		if err != nil {
			return nil, err
		}
		return Reference{Name: name, Local: local, Source: src}, nil
	case *ast.SelectorExpr:
		name, local, err := b.qualify(root, e, scope)
		if err != nil {
			return nil, err
		}
		if _, ok := b.Catalog.Container(name); ok {
			return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Generic type %s requires type arguments", src))
		}
		return Reference{Name: name, Local: local, Source: src}, nil
	case *ast.IndexExpr:
		return b.generic(root, e.X, []ast.Expr{e.Index}, src, scope, level, depth)
	case *ast.IndexListExpr:
		return b.generic(root, e.X, e.Indices, src, scope, level, depth)
	case *ast.StarExpr:
		return b.pointer(root, e, src, scope, level, depth)
	case *ast.ArrayType:
		if e.Len != nil {
			return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Only []byte arrays are supported, got %s", src))
		}
		if elt, ok := e.Elt.(*ast.Ident); ok && (elt.Name == "byte" || elt.Name == "uint8") {
			return ArrayOf{
				Component: Primitive{Kind: KindByte, Name: elt.Name, Source: elt.Name},
				Source:    src,
			}, nil
		}
		return b.container(root, ShapeList, []ast.Expr{e.Elt}, src, scope, level, depth)
	case *ast.MapType:
		return b.container(root, ShapeMap, []ast.Expr{e.Key, e.Value}, src, scope, level, depth)
	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return Reference{Name: NameAny, Source: src}, nil
		}
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Interface type %s is not supported", src))
	case *ast.StructType:
		if e.Fields == nil || len(e.Fields.List) == 0 {
			return Boxed{Kind: KindVoid, Source: src}, nil
		}
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Struct type %s is not supported", src))
	case *ast.Ellipsis:
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Variadic type %s is not supported", src))
	default:
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", src))
	}
}

func (b Builder) qualify(root Anchor, expr ast.Expr, scope Scope) (string, bool, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		if name, ok := predeclaredReferences[e.Name]; ok {
			return name, false, nil
		}
		if types.Universe.Lookup(e.Name) != nil {
			return "", false, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", e.Name))
		}
		return scope.Package + "." + e.Name, true, nil
	case *ast.SelectorExpr:
		x, ok := e.X.(*ast.Ident)
		if !ok {
			return "", false, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", types.ExprString(e)))
		}
		p, ok := scope.Imports[x.Name]
		if !ok {
			return "", false, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Unknown package %s of type %s", x.Name, types.ExprString(e)))
		}
		return b.Catalog.Canonical(p + "." + e.Sel.Name), false, nil
	default:
		return "", false, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Type %s is not supported", types.ExprString(expr)))
	}
}

func (b Builder) generic(root Anchor, base ast.Expr, args []ast.Expr, src string, scope Scope, level, depth int) (Descriptor, error) {
	name, local, err := b.qualify(root, base, scope)
	if err != nil {
		return nil, err
	}
	if shape, ok := b.Catalog.Container(name); ok {
		return b.container(root, shape, args, src, scope, level, depth)
	}
	ref := Reference{
		Name:   name,
		Args:   make([]Descriptor, 0, len(args)),
		Local:  local,
		Source: src,
	}
	for _, i := range args {
		d, err := b.describe(root, i, scope, level+1, depth)
		if err != nil {
			return nil, err
		}
		ref.Args = append(ref.Args, d)
	}
	return ref, nil
}

func (b Builder) pointer(root Anchor, e *ast.StarExpr, src string, scope Scope, level, depth int) (Descriptor, error) {
	if x, ok := e.X.(*ast.Ident); ok {
		if k, ok := primitiveKinds[x.Name]; ok {
			return Boxed{Kind: k, Name: x.Name, Source: src}, nil
		}
	}
	d, err := b.describe(root, e.X, scope, level, depth)
	if err != nil {
		return nil, err
	}
	ref, ok := d.(Reference)
	if !ok {
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Pointer type %s is not supported", src))
	}
	ref.Name = "*" + ref.Name
	ref.Source = src
	return ref, nil
}

func (b Builder) container(root Anchor, shape Shape, args []ast.Expr, src string, scope Scope, level, depth int) (Descriptor, error) {
	if shape == ShapeStream {
		if level != 0 {
			return nil, Illegal(root, ErrUnsupportedNesting, fmt.Sprintf("%s as subcomponent is not supported: %s", shape, src))
		}
		if len(args) != 2 {
			return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Stream %s must have two type arguments", src))
		}
		if errType, ok := args[1].(*ast.Ident); !ok || errType.Name != "error" {
			return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Stream %s must yield an error as its second value", src))
		}
		elem, err := b.describe(root, args[0], scope, level+1, depth)
		if err != nil {
			return nil, err
		}
		return Container{
			Shape:        shape,
			Args:         []Descriptor{elem},
			NestingLevel: level,
			Source:       src,
		}, nil
	}

	depth++
	if depth > b.NestingCap {
		return nil, Illegal(root, ErrUnsupportedNesting, fmt.Sprintf("%s as subcomponent is not supported: %s", shape, src))
	}
	if len(args) != 1 && shape != ShapeMap {
		return nil, Illegal(root, ErrUnsupportedType, fmt.Sprintf("Type %s must have one type argument", src))
	}
	c := Container{
		Shape:        shape,
		Args:         make([]Descriptor, 0, len(args)),
		NestingLevel: level,
		Source:       src,
	}
	if shape == ShapeMap {
		key, err := b.describe(root, args[0], scope, level+1, depth)
		if err != nil || !IsReference(key, NameString) {
			return nil, Illegal(root, ErrAmbiguousKeyType, fmt.Sprintf("Map key of %s must be a string", src))
		}
		c.Args = append(c.Args, key)
		args = args[1:]
	}
	for _, i := range args {
		d, err := b.describe(root, i, scope, level+1, depth)
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, d)
	}
	return c, nil
}
