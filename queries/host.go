package queries

import (
	"go/ast"
	"go/types"
	"strings"
	"unicode"
	"unicode/utf8"

	"xorkevin.dev/cypherforge/gopackages"
	"xorkevin.dev/cypherforge/typedesc"
)

type (
	// RawMethod is a method or function annotated with query directives as
	// read from source
	RawMethod struct {
		Anchor  typedesc.Anchor
		Name    string
		Static  bool
		Default bool
		Generic bool
		Query   []string
		Cypher  []string
		Aliases []string
		Type    *ast.FuncType
		Scope   typedesc.Scope
	}

	// RawInterface is an interface annotated with a queries directive as read
	// from source
	RawInterface struct {
		Anchor  typedesc.Anchor
		Name    string
		Prefix  string
		Package string
		Generic bool
		Methods []RawMethod
		Skipped []string
		Scope   typedesc.Scope
	}
)

func anchorOf(pkg *gopackages.Package, n ast.Node, element string) typedesc.Anchor {
	return typedesc.Anchor{
		Pos:     pkg.Fset.Position(n.Pos()),
		Element: element,
	}
}

// DefaultPrefix returns the identifier prefix of a queries interface with its
// first rune lowered
func DefaultPrefix(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}

func methodDirectives(dirs []gopackages.DirectiveInstance, d Directives) (query, cypher, aliases []string) {
	for _, i := range dirs {
		switch i.Sigil {
		case d.Query:
			query = append(query, i.Args())
		case d.Cypher:
			line := strings.TrimPrefix(strings.TrimPrefix(i.Directive, i.Sigil), " ")
			cypher = append(cypher, strings.TrimRightFunc(line, unicode.IsSpace))
		case d.Alias:
			aliases = append(aliases, i.Args())
		}
	}
	return query, cypher, aliases
}

// NewRawInterface reads a declaration annotated with a queries directive
func NewRawInterface(pkg *gopackages.Package, obj gopackages.DirectiveObject, dir gopackages.DirectiveInstance, d Directives) (RawInterface, error) {
	anchor := anchorOf(pkg, obj.Obj, obj.Kind.String())
	illegal := typedesc.Illegal(anchor, ErrIllegalQueriesDefinition, "only root interfaces allowed to be annotated with "+d.Queries)
	if obj.Kind != gopackages.ObjKindDeclType {
		return RawInterface{}, illegal
	}
	spec, ok := obj.Obj.(*ast.TypeSpec)
	if !ok {
		return RawInterface{}, illegal
	}
	anchor.Element = spec.Name.Name
	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok || spec.Assign.IsValid() {
		return RawInterface{}, typedesc.Illegal(anchor, ErrIllegalQueriesDefinition, "only root interfaces allowed to be annotated with "+d.Queries)
	}

	prefix := dir.Args()
	if prefix == "" {
		prefix = DefaultPrefix(spec.Name.Name)
	}
	raw := RawInterface{
		Anchor:  anchor,
		Name:    spec.Name.Name,
		Prefix:  prefix,
		Package: pkg.Name,
		Generic: spec.TypeParams != nil && len(spec.TypeParams.List) != 0,
		Scope:   typedesc.FileScope(pkg.Name, obj.File),
	}
	sigils := d.Sigils()
	for _, field := range iface.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			raw.Skipped = append(raw.Skipped, types.ExprString(field.Type))
			continue
		}
		query, cypher, aliases := methodDirectives(gopackages.ParseDirectives(field.Doc, sigils), d)
		for _, name := range field.Names {
			if len(query) == 0 && len(cypher) == 0 {
				raw.Skipped = append(raw.Skipped, name.Name)
				continue
			}
			raw.Methods = append(raw.Methods, RawMethod{
				Anchor:  anchorOf(pkg, name, raw.Name+"."+name.Name),
				Name:    name.Name,
				Generic: raw.Generic,
				Query:   query,
				Cypher:  cypher,
				Aliases: aliases,
				Type:    ft,
				Scope:   raw.Scope,
			})
		}
	}
	return raw, nil
}

// NewRawFunction reads a function declaration annotated with query
// directives
//
// Functions and concrete methods can not be query methods, and are read only
// to be reported.
func NewRawFunction(pkg *gopackages.Package, obj gopackages.DirectiveObject, d Directives) (RawMethod, bool) {
	fn, ok := obj.Obj.(*ast.FuncDecl)
	if !ok || obj.Kind != gopackages.ObjKindDeclFunc {
		return RawMethod{}, false
	}
	query, cypher, aliases := methodDirectives(obj.Directives, d)
	if len(query) == 0 && len(cypher) == 0 {
		return RawMethod{}, false
	}
	name := fn.Name.Name
	if fn.Recv != nil && len(fn.Recv.List) != 0 {
		name = types.ExprString(fn.Recv.List[0].Type) + "." + name
	}
	return RawMethod{
		Anchor:  anchorOf(pkg, fn, name),
		Name:    fn.Name.Name,
		Static:  fn.Recv == nil,
		Default: fn.Recv != nil && fn.Body != nil,
		Generic: fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) != 0,
		Query:   query,
		Cypher:  cypher,
		Aliases: aliases,
		Type:    fn.Type,
		Scope:   typedesc.FileScope(pkg.Name, obj.File),
	}, true
}
