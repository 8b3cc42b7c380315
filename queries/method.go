package queries

import (
	"fmt"
	"go/ast"
	"go/types"
	"maps"
	"slices"
	"strings"

	"xorkevin.dev/cypherforge/resolve"
	"xorkevin.dev/cypherforge/typedesc"
)

const (
	receiverName  = "t"
	runtimeName   = "cypherdb"
	resultErrName = "err"
)

type (
	// Parser parses query methods and queries interfaces
	Parser struct {
		Builder  typedesc.Builder
		Resolver resolve.Resolver
	}

	// ContextSpec is the context parameter of a query method
	ContextSpec struct {
		Name          string
		TypeRendering string
	}

	// ParameterSpec is a statement parameter of a query method
	ParameterSpec struct {
		DeclaredTypeRendering string
		Name                  string
		WireAlias             string
		Serializer            typedesc.Mapper
		FromNativelySupported bool
	}

	// QueryMethodSpec is a fully classified query method
	//
	// Return.TypeRendering is empty when the method returns only an error.
	QueryMethodSpec struct {
		Name            string
		Anchor          typedesc.Anchor
		Context         ContextSpec
		Parameters      []ParameterSpec
		Return          resolve.ReturnSpec
		ThrownTypeNames []string
		QueryText       string
		QueryKind       QueryKind
		TxKind          TxKind
	}
)

// NewParser returns a parser over the catalog
func NewParser(c *typedesc.Catalog, nestingCap int) Parser {
	b := typedesc.NewBuilder(c)
	if nestingCap > 0 {
		b.NestingCap = nestingCap
	}
	return Parser{
		Builder:  b,
		Resolver: resolve.New(c),
	}
}

func illegalShape(root typedesc.Anchor, reason string) error {
	return typedesc.Illegal(root, ErrIllegalMethodShape, reason)
}

// ParseMethod classifies a query method
func (p Parser) ParseMethod(raw RawMethod) (QueryMethodSpec, error) {
	root := raw.Anchor
	switch {
	case raw.Static:
		return QueryMethodSpec{}, illegalShape(root, "static methods are not allowed")
	case raw.Generic:
		return QueryMethodSpec{}, illegalShape(root, "generic methods are not allowed")
	case raw.Default:
		return QueryMethodSpec{}, illegalShape(root, "methods with default implementation are not allowed")
	}

	directive, err := ParseQueryDirective(root, raw.Query, raw.Cypher)
	if err != nil {
		return QueryMethodSpec{}, err
	}
	statement, err := directive.Statement(root)
	if err != nil {
		return QueryMethodSpec{}, err
	}
	queryKind, txKind, err := directive.Kinds(root, statement)
	if err != nil {
		return QueryMethodSpec{}, err
	}
	aliases, err := ParseAliases(root, raw.Aliases)
	if err != nil {
		return QueryMethodSpec{}, err
	}

	spec := QueryMethodSpec{
		Name:            raw.Name,
		Anchor:          root,
		ThrownTypeNames: []string{typedesc.NameError},
		QueryText:       statement,
		QueryKind:       queryKind,
		TxKind:          txKind,
	}

	ctxField, params, err := p.splitParams(root, raw)
	if err != nil {
		return QueryMethodSpec{}, err
	}
	spec.Context = ctxField

	ret, err := p.parseResults(root, raw)
	if err != nil {
		return QueryMethodSpec{}, err
	}
	spec.Return = ret

	wireNames := map[string]string{}
	for _, i := range params {
		d, err := p.Builder.Describe(i.anchor, i.typ, raw.Scope)
		if err != nil {
			return QueryMethodSpec{}, err
		}
		s, err := p.Resolver.Parameter(i.anchor, d)
		if err != nil {
			return QueryMethodSpec{}, err
		}
		wire := i.name
		if a, ok := aliases[i.name]; ok {
			wire = a
			delete(aliases, i.name)
		}
		if other, ok := wireNames[wire]; ok {
			return QueryMethodSpec{}, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Parameters %s and %s have the same name %s", other, i.name, wire))
		}
		wireNames[wire] = i.name
		spec.Parameters = append(spec.Parameters, ParameterSpec{
			DeclaredTypeRendering: d.Rendering(),
			Name:                  i.name,
			WireAlias:             wire,
			Serializer:            s.Mapper,
			FromNativelySupported: s.Native,
		})
	}
	if len(aliases) != 0 {
		return QueryMethodSpec{}, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Aliases for %s name no parameter", strings.Join(slices.Sorted(maps.Keys(aliases)), ", ")))
	}
	return spec, nil
}

type (
	rawParam struct {
		anchor typedesc.Anchor
		name   string
		typ    ast.Expr
	}
)

func isContext(expr ast.Expr, scope typedesc.Scope) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	x, ok := sel.X.(*ast.Ident)
	if !ok {
		return false
	}
	return scope.Imports[x.Name]+"."+sel.Sel.Name == typedesc.NameContext
}

func (p Parser) splitParams(root typedesc.Anchor, raw RawMethod) (ContextSpec, []rawParam, error) {
	var params []rawParam
	if raw.Type.Params != nil {
		for _, field := range raw.Type.Params.List {
			if _, ok := field.Type.(*ast.Ellipsis); ok {
				return ContextSpec{}, nil, illegalShape(root, "variadic parameters are not allowed")
			}
			if len(field.Names) == 0 {
				return ContextSpec{}, nil, illegalShape(root, "parameters must be named")
			}
			for _, name := range field.Names {
				switch name.Name {
				case "_":
					return ContextSpec{}, nil, illegalShape(root, "parameters must not be blank")
				case receiverName, runtimeName, resultErrName:
					return ContextSpec{}, nil, illegalShape(root, fmt.Sprintf("parameter name %s is reserved", name.Name))
				}
				if _, ok := raw.Scope.Imports[name.Name]; ok {
					return ContextSpec{}, nil, illegalShape(root, fmt.Sprintf("parameter name %s shadows an import", name.Name))
				}
				params = append(params, rawParam{
					anchor: typedesc.Anchor{Pos: root.Pos, Element: root.Element + "." + name.Name},
					name:   name.Name,
					typ:    field.Type,
				})
			}
		}
	}
	if len(params) == 0 || !isContext(params[0].typ, raw.Scope) {
		return ContextSpec{}, nil, illegalShape(root, "first parameter must be a context.Context")
	}
	return ContextSpec{
		Name:          params[0].name,
		TypeRendering: types.ExprString(params[0].typ),
	}, params[1:], nil
}

func isError(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == typedesc.NameError
}

const shapeResults = "results must be one of error, (T, error), or iter.Seq2[T, error]"

func (p Parser) parseResults(root typedesc.Anchor, raw RawMethod) (resolve.ReturnSpec, error) {
	var results []ast.Expr
	if raw.Type.Results != nil {
		for _, field := range raw.Type.Results.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for range n {
				results = append(results, field.Type)
			}
		}
	}
	switch len(results) {
	case 1:
		if isError(results[0]) {
			return resolve.ReturnSpec{Template: resolve.TemplateVoid}, nil
		}
		d, err := p.Builder.Describe(root, results[0], raw.Scope)
		if err != nil {
			return resolve.ReturnSpec{}, err
		}
		if c, ok := d.(typedesc.Container); !ok || c.Shape != typedesc.ShapeStream {
			return resolve.ReturnSpec{}, illegalShape(root, shapeResults)
		}
		return p.Resolver.ReturnType(root, d)
	case 2:
		if !isError(results[1]) {
			return resolve.ReturnSpec{}, illegalShape(root, shapeResults)
		}
		d, err := p.Builder.Describe(root, results[0], raw.Scope)
		if err != nil {
			return resolve.ReturnSpec{}, err
		}
		if c, ok := d.(typedesc.Container); ok && c.Shape == typedesc.ShapeStream {
			return resolve.ReturnSpec{}, illegalShape(root, "streams must be the only result")
		}
		return p.Resolver.ReturnType(root, d)
	default:
		return resolve.ReturnSpec{}, illegalShape(root, shapeResults)
	}
}
