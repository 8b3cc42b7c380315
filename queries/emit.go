package queries

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"xorkevin.dev/cypherforge/resolve"
	"xorkevin.dev/cypherforge/typedesc"
	"xorkevin.dev/kerrors"
)

// PathRuntime is the import path of the runtime of generated bindings
const PathRuntime = "xorkevin.dev/cypherforge/cypherdb"

type (
	// ImportSpec is an import of a generated file
	//
	// Name is empty when the local name is the conventional package name.
	ImportSpec struct {
		Name string
		Path string
	}

	// ParamSpec is a statement parameter entry
	ParamSpec struct {
		Alias string
		Expr  string
	}

	// MethodSpec is a generated query method
	MethodSpec struct {
		Name       string
		Ctx        string
		Params     string
		Results    string
		ErrorOnly  bool
		Executor   string
		Statement  string
		Parameters []ParamSpec
		ParamMap   string
		Template   resolve.Template
		ResultType string
		Row        string
		Extract    string
	}

	// ImplSpec is a generated implementation of a queries interface
	ImplSpec struct {
		Package   string
		Interface string
		Impl      string
		Imports   []ImportSpec
		Methods   []MethodSpec
		Complete  bool
	}
)

// Emit plans the implementation of a queries interface
func Emit(iface QueriesAnnotatedInterface) ImplSpec {
	spec := ImplSpec{
		Package:   iface.PackageName,
		Interface: iface.InterfaceName,
		Impl:      iface.Prefix + "Queries",
		Imports:   emitImports(iface.Imports),
		Methods:   make([]MethodSpec, 0, len(iface.Methods)),
		Complete:  iface.Complete,
	}
	for _, i := range iface.Methods {
		spec.Methods = append(spec.Methods, emitMethod(i))
	}
	return spec
}

func isStdImport(p string) bool {
	first, _, _ := strings.Cut(p, "/")
	return !strings.Contains(first, ".")
}

func sortImports(imports []ImportSpec) {
	slices.SortFunc(imports, func(a, b ImportSpec) int {
		as, bs := isStdImport(a.Path), isStdImport(b.Path)
		if as != bs {
			if as {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})
}

func emitImports(imports map[string]string) []ImportSpec {
	specs := []ImportSpec{{Path: PathRuntime}}
	for p, local := range imports {
		if p == PathRuntime {
			continue
		}
		name := ""
		if local != typedesc.ImportName(p) {
			name = local
		}
		specs = append(specs, ImportSpec{Name: name, Path: p})
	}
	sortImports(specs)
	return specs
}

// MergeImports merges the imports of generated implementations of a package
func MergeImports(impls []ImplSpec) ([]ImportSpec, error) {
	byPath := map[string]string{}
	byName := map[string]string{}
	var merged []ImportSpec
	for _, i := range impls {
		for _, j := range i.Imports {
			local := j.Name
			if local == "" {
				local = typedesc.ImportName(j.Path)
			}
			if prev, ok := byPath[j.Path]; ok {
				if prev != local {
					return nil, kerrors.WithKind(nil, ErrInvalidQueries, fmt.Sprintf("Import %s is imported as both %s and %s", j.Path, prev, local))
				}
				continue
			}
			if prev, ok := byName[local]; ok {
				return nil, kerrors.WithKind(nil, ErrInvalidQueries, fmt.Sprintf("Imports %s and %s have the same name %s", prev, j.Path, local))
			}
			byPath[j.Path] = local
			byName[local] = j.Path
			merged = append(merged, j)
		}
	}
	sortImports(merged)
	return merged, nil
}

// StatementLiteral renders a statement as a go string literal
//
// Multi-line statements are raw strings unless they can not be.
func StatementLiteral(s string) string {
	if strings.Contains(s, "\n") && !strings.ContainsAny(s, "`\r") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

func emitMethod(m QueryMethodSpec) MethodSpec {
	params := make([]string, 0, len(m.Parameters)+1)
	params = append(params, m.Context.Name+" "+m.Context.TypeRendering)
	entries := make([]ParamSpec, 0, len(m.Parameters))
	for _, i := range m.Parameters {
		params = append(params, i.Name+" "+i.DeclaredTypeRendering)
		entries = append(entries, ParamSpec{
			Alias: strconv.Quote(i.WireAlias),
			Expr:  typedesc.Render(i.Serializer, i.Name),
		})
	}

	ret := m.Return
	spec := MethodSpec{
		Name:       m.Name,
		Ctx:        m.Context.Name,
		Params:     strings.Join(params, ", "),
		Executor:   "ExecuteWrite",
		Statement:  StatementLiteral(m.QueryText),
		Parameters: entries,
		ParamMap:   paramMap(entries),
		Template:   ret.Template,
		ResultType: ret.TypeRendering,
	}
	if m.TxKind == TxKindRead {
		spec.Executor = "ExecuteRead"
	}

	switch {
	case ret.TypeRendering == "":
		spec.Results = "error"
		spec.ErrorOnly = true
	case ret.Template == resolve.TemplateStream:
		spec.Results = ret.TypeRendering
	default:
		spec.Results = "(" + ret.TypeRendering + ", error)"
	}

	switch ret.Template {
	case resolve.TemplateVoid:
		spec.Extract = "cypherdb.Discard"
	case resolve.TemplateSingle:
		spec.Row = emitRow(ret, ret.TypeRendering)
		spec.Extract = "cypherdb.Single(" + spec.Row + ")"
	case resolve.TemplateList:
		spec.Row = emitRow(ret, ret.ElemRendering)
		if c, ok := ret.Descriptor.(typedesc.Container); ok && c.Shape == typedesc.ShapeCollection {
			spec.Extract = "cypherdb.Seq(" + spec.Row + ")"
		} else {
			spec.Extract = "cypherdb.List(" + spec.Row + ")"
		}
	case resolve.TemplateStream:
		spec.Row = emitRow(ret, ret.ElemRendering)
	}
	return spec
}

func emitRow(ret resolve.ReturnSpec, rendering string) string {
	if ret.Row {
		return "cypherdb.WholeRecord"
	}
	if ret.Mapper == nil {
		return "cypherdb.FirstValue(cypherdb.As[" + rendering + "])"
	}
	return "cypherdb.FirstValue(" + typedesc.DecoderFunc(ret.Mapper, "v", rendering) + ")"
}

func paramMap(entries []ParamSpec) string {
	if len(entries) == 0 {
		return "nil"
	}
	var b strings.Builder
	b.WriteString("map[string]any{\n")
	for _, i := range entries {
		b.WriteString(i.Alias)
		b.WriteString(": ")
		b.WriteString(i.Expr)
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return b.String()
}
