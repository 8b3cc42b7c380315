// Package queries generates neo4j bindings of annotated go interfaces
package queries

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"text/template"

	"golang.org/x/tools/imports"
	"xorkevin.dev/cypherforge/gopackages"
	"xorkevin.dev/cypherforge/resolve"
	"xorkevin.dev/cypherforge/typedesc"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/kfs"
	"xorkevin.dev/klog"
)

const (
	generatedFileMode = 0o644
	generatedFileFlag = os.O_WRONLY | os.O_TRUNC | os.O_CREATE
)

type (
	Opts struct {
		Output           string
		Include          string
		Ignore           string
		QueriesDirective string
		QueryDirective   string
		CypherDirective  string
		AliasDirective   string
		NestingCap       int
		NativeTypes      []string
		Manifest         string
	}

	ExecEnv struct {
		GoPackage string
	}

	mainTemplateData struct {
		Generator string
		Version   string
		Package   string
		Imports   []ImportSpec
	}

	methodTemplateData struct {
		Impl   string
		Method MethodSpec
	}
)

// Directives returns the directive sigils of the opts
func (o Opts) Directives() Directives {
	d := DefaultDirectives()
	if o.QueriesDirective != "" {
		d.Queries = o.QueriesDirective
	}
	if o.QueryDirective != "" {
		d.Query = o.QueryDirective
	}
	if o.CypherDirective != "" {
		d.Cypher = o.CypherDirective
	}
	if o.AliasDirective != "" {
		d.Alias = o.AliasDirective
	}
	return d
}

// Execute runs cypherforge queries generation
func Execute(log klog.Logger, version string, opts Opts) error {
	gopackage := os.Getenv("GOPACKAGE")
	if len(gopackage) == 0 {
		return kerrors.WithKind(nil, ErrEnv, "Environment variable GOPACKAGE not provided by go generate")
	}
	gofile := os.Getenv("GOFILE")
	if len(gofile) == 0 {
		return kerrors.WithKind(nil, ErrEnv, "Environment variable GOFILE not provided by go generate")
	}

	ctx := klog.CtxWithAttrs(context.Background(),
		klog.AString("package", gopackage),
		klog.AString("source", gofile),
	)

	return Generate(ctx, log, kfs.DirFS("."), os.DirFS("."), version, opts, ExecEnv{
		GoPackage: gopackage,
	})
}

func compilePattern(pattern, name string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	r, err := regexp.Compile(pattern)
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Invalid %s regex", name))
	}
	return r, nil
}

func reportErr(r Reporter, fallback typedesc.Anchor, err error) {
	anchor, ok := typedesc.AnchorOf(err)
	if !ok {
		anchor = fallback
	}
	r.Report(anchor, err)
}

// Parse reads and classifies the queries interfaces of a package
//
// Every invalid definition is reported to r.
func Parse(ctx context.Context, log klog.Logger, pkg *gopackages.Package, opts Opts, r Reporter) []QueriesAnnotatedInterface {
	l := klog.NewLevelLogger(log)

	d := opts.Directives()
	p := NewParser(typedesc.NewCatalog(opts.NativeTypes), opts.NestingCap)

	var ifaces []QueriesAnnotatedInterface
	for _, obj := range gopackages.FindDirectives(pkg, d.Sigils()) {
		fallback := anchorOf(pkg, obj.Obj, obj.Kind.String())
		var queriesDir *gopackages.DirectiveInstance
		for _, i := range obj.Directives {
			if i.Sigil == d.Queries {
				queriesDir = &i
				break
			}
		}

		if queriesDir == nil {
			if raw, ok := NewRawFunction(pkg, obj, d); ok {
				if _, err := p.ParseMethod(raw); err != nil {
					reportErr(r, raw.Anchor, err)
				}
				continue
			}
			reportErr(r, fallback, typedesc.Illegal(fallback, ErrIllegalMethodShape, "query directives are only allowed on query methods"))
			continue
		}

		raw, err := NewRawInterface(pkg, obj, *queriesDir, d)
		if err != nil {
			reportErr(r, fallback, err)
			continue
		}
		ictx := klog.CtxWithAttrs(ctx, klog.AString("interface", raw.Name))
		if len(raw.Skipped) != 0 {
			l.Debug(ictx, "Skipped unannotated methods", klog.AAny("methods", raw.Skipped))
		}
		iface, err := p.ParseInterface(raw, r)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(iface.Methods))
		for _, i := range iface.Methods {
			names = append(names, i.Name)
		}
		l.Debug(ictx, "Detected queries interface", klog.AAny("methods", names))
		ifaces = append(ifaces, iface)
	}
	return ifaces
}

func Generate(ctx context.Context, log klog.Logger, outputfs fs.FS, inputfs fs.FS, version string, opts Opts, env ExecEnv) error {
	l := klog.NewLevelLogger(log)

	includePattern, err := compilePattern(opts.Include, "include")
	if err != nil {
		return err
	}
	ignorePattern, err := compilePattern(opts.Ignore, "ignore")
	if err != nil {
		return err
	}

	pkg, err := gopackages.ReadDir(inputfs, includePattern, ignorePattern)
	if err != nil {
		return err
	}
	if pkg.Name != env.GoPackage {
		return kerrors.WithKind(nil, ErrEnv, "Environment variable GOPACKAGE does not match directory package")
	}

	diagnostics := NewDiagnostics(ctx, log)
	ifaces := Parse(ctx, log, pkg, opts, diagnostics)
	if err := diagnostics.Err(); err != nil {
		return err
	}
	if len(ifaces) == 0 {
		return kerrors.WithKind(nil, ErrInvalidFile, "No queries interfaces found")
	}

	impls := make([]ImplSpec, 0, len(ifaces))
	for _, i := range ifaces {
		impls = append(impls, Emit(i))
	}

	src, err := Render(version, env.GoPackage, impls)
	if err != nil {
		return err
	}
	formatted, err := imports.Process(opts.Output, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return kerrors.WithMsg(err, "Failed to format generated queries")
	}

	if err := writeFile(outputfs, opts.Output, formatted); err != nil {
		return err
	}
	l.Info(ctx, "Generated queries file", klog.AString("output", opts.Output))

	if opts.Manifest != "" {
		b, err := encodeManifest(version, env.GoPackage, ifaces, impls)
		if err != nil {
			return err
		}
		if err := writeFile(outputfs, opts.Manifest, b); err != nil {
			return err
		}
		l.Info(ctx, "Generated queries manifest", klog.AString("output", opts.Manifest))
	}
	return nil
}

// Render renders the generated file of the implementations of a package
func Render(version string, pkgName string, impls []ImplSpec) ([]byte, error) {
	tplmain, err := template.New("main").Parse(templateMain)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to parse template templateMain")
	}
	tplimpl, err := template.New("impl").Parse(templateImpl)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to parse template templateImpl")
	}
	tplMethod := map[resolve.Template]*template.Template{}
	tplMethod[resolve.TemplateSingle], err = template.New("execute").Parse(templateExecute)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to parse template templateExecute")
	}
	tplMethod[resolve.TemplateList] = tplMethod[resolve.TemplateSingle]
	tplMethod[resolve.TemplateStream], err = template.New("stream").Parse(templateStream)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to parse template templateStream")
	}
	tplMethod[resolve.TemplateVoid], err = template.New("void").Parse(templateVoid)
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to parse template templateVoid")
	}

	importSpecs, err := MergeImports(impls)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	if err := tplmain.Execute(&b, mainTemplateData{
		Generator: "go generate cypherforge queries",
		Version:   version,
		Package:   pkgName,
		Imports:   importSpecs,
	}); err != nil {
		return nil, kerrors.WithMsg(err, "Failed to execute main queries template")
	}
	for _, i := range impls {
		if err := tplimpl.Execute(&b, i); err != nil {
			return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to execute impl template for interface %s", i.Interface))
		}
		for _, j := range i.Methods {
			tpl, ok := tplMethod[j.Template]
			if !ok {
				return nil, kerrors.WithMsg(nil, fmt.Sprintf("Unknown template %s for method %s.%s", j.Template, i.Interface, j.Name))
			}
			if err := tpl.Execute(&b, methodTemplateData{
				Impl:   i.Impl,
				Method: j,
			}); err != nil {
				return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to execute template for method %s.%s", i.Interface, j.Name))
			}
		}
	}
	return b.Bytes(), nil
}

func writeFile(fsys fs.FS, name string, data []byte) (retErr error) {
	file, err := kfs.OpenFile(fsys, name, generatedFileFlag, generatedFileMode)
	if err != nil {
		return kerrors.WithMsg(err, fmt.Sprintf("Failed to write file %s", name))
	}
	defer func() {
		if err := file.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, fmt.Sprintf("Failed to close open file %s", name)))
		}
	}()
	fwriter := bufio.NewWriter(file)
	if _, err := fwriter.Write(data); err != nil {
		return kerrors.WithMsg(err, fmt.Sprintf("Failed to write to file: %s", name))
	}
	if err := fwriter.Flush(); err != nil {
		return kerrors.WithMsg(err, fmt.Sprintf("Failed to write to file: %s", name))
	}
	return nil
}
