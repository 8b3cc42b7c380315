package queries

import (
	"context"
	"errors"
	"fmt"
	"go/ast"

	"xorkevin.dev/cypherforge/typedesc"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/klog"
)

type (
	// Reporter receives query definition errors
	Reporter interface {
		Report(anchor typedesc.Anchor, err error)
	}

	// QueriesAnnotatedInterface is a fully classified queries interface
	//
	// RequiredImportNames holds the qualified names of the imported types of
	// the method signatures. Imports maps their import paths to the local
	// names used in source.
	QueriesAnnotatedInterface struct {
		PackageName         string
		InterfaceName       string
		Prefix              string
		RequiredImportNames map[string]struct{}
		Imports             map[string]string
		Methods             []QueryMethodSpec
		Complete            bool
	}

	// Diagnostics is a [Reporter] that logs and collects reports
	Diagnostics struct {
		log  *klog.LevelLogger
		ctx  context.Context
		errs []error
	}
)

// NewDiagnostics creates a new [*Diagnostics]
func NewDiagnostics(ctx context.Context, log klog.Logger) *Diagnostics {
	return &Diagnostics{
		log: klog.NewLevelLogger(log),
		ctx: ctx,
	}
}

// Report implements [Reporter]
func (d *Diagnostics) Report(anchor typedesc.Anchor, err error) {
	d.errs = append(d.errs, err)
	d.log.Err(klog.CtxWithAttrs(d.ctx, klog.AString("element", anchor.String())), err)
}

// Len returns the number of reports
func (d *Diagnostics) Len() int {
	return len(d.errs)
}

// Err returns all reports joined, or nil if there are none
func (d *Diagnostics) Err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return kerrors.WithKind(errors.Join(d.errs...), ErrInvalidQueries, fmt.Sprintf("Found %d invalid query definitions", len(d.errs)))
}

// ParseInterface classifies the annotated methods of a queries interface
//
// Each invalid method is reported to r and parsing continues with its
// siblings. An error is returned if any method is invalid.
func (p Parser) ParseInterface(raw RawInterface, r Reporter) (QueriesAnnotatedInterface, error) {
	iface := QueriesAnnotatedInterface{
		PackageName:         raw.Package,
		InterfaceName:       raw.Name,
		Prefix:              raw.Prefix,
		RequiredImportNames: map[string]struct{}{},
		Imports:             map[string]string{},
		Complete:            len(raw.Skipped) == 0,
	}
	failed := 0
	for _, i := range raw.Methods {
		if raw.Generic {
			i.Generic = true
		}
		m, err := p.ParseMethod(i)
		if err != nil {
			r.Report(i.Anchor, err)
			failed++
			continue
		}
		collectImports(p.Builder.Catalog, iface.RequiredImportNames, iface.Imports, i.Type, i.Scope)
		iface.Methods = append(iface.Methods, m)
	}
	if failed != 0 {
		return iface, kerrors.WithKind(nil, ErrInvalidQueries, fmt.Sprintf("Interface %s has %d invalid query methods", raw.Name, failed))
	}
	return iface, nil
}

func collectImports(c *typedesc.Catalog, names map[string]struct{}, imports map[string]string, ft *ast.FuncType, scope typedesc.Scope) {
	ast.Inspect(ft, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		x, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		p, ok := scope.Imports[x.Name]
		if !ok {
			return true
		}
		names[c.Canonical(p+"."+sel.Sel.Name)] = struct{}{}
		imports[p] = x.Name
		return false
	})
}
