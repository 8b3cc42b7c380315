package gopackages

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"xorkevin.dev/kerrors"
)

type (
	// ErrorParseFile is returned when a go file fails to parse
	ErrorParseFile struct{}
	// ErrorConflictingPackage is returned when files of a directory declare
	// different packages
	ErrorConflictingPackage struct{}
)

func (e ErrorParseFile) Error() string {
	return "Failed parsing file"
}

func (e ErrorConflictingPackage) Error() string {
	return "Conflicting package"
}

type (
	// Package is a parsed directory of go source files
	Package struct {
		Name  string
		Files map[string]*ast.File
		Fset  *token.FileSet
	}
)

// ReadDir parses the non-test go files of the root of fsys
func ReadDir(fsys fs.FS, include, ignore *regexp.Regexp) (*Package, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, kerrors.WithMsg(err, "Failed to read dir")
	}
	pkg := &Package{
		Files: map[string]*ast.File{},
		Fset:  token.NewFileSet(),
	}
	for _, i := range entries {
		if i.IsDir() {
			continue
		}
		if !i.Type().IsRegular() {
			continue
		}
		filename := i.Name()
		if path.Ext(filename) != ".go" {
			continue
		}
		if strings.HasSuffix(filename, "_test.go") {
			continue
		}
		if include != nil && !include.MatchString(filename) {
			continue
		}
		if ignore != nil && ignore.MatchString(filename) {
			continue
		}
		astfile, err := parseGoFile(pkg.Fset, fsys, filename)
		if err != nil {
			return nil, err
		}
		if pkg.Name == "" {
			pkg.Name = astfile.Name.Name
		} else if astfile.Name.Name != pkg.Name {
			return nil, kerrors.WithKind(nil, ErrorConflictingPackage{}, fmt.Sprintf("Package %s of file %s conflicts with package %s", astfile.Name.Name, filename, pkg.Name))
		}
		pkg.Files[filename] = astfile
	}
	return pkg, nil
}

func parseGoFile(fset *token.FileSet, fsys fs.FS, filename string) (_ *ast.File, retErr error) {
	file, err := fsys.Open(filename)
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to open file %s", filename))
	}
	defer func() {
		if err := file.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, fmt.Sprintf("Failed to close open file %s", filename)))
		}
	}()
	astfile, err := parser.ParseFile(fset, filename, file, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, kerrors.WithKind(err, ErrorParseFile{}, fmt.Sprintf("Failed to parse file %s", filename))
	}
	return astfile, nil
}

// Filenames returns the package file names in sorted order
func (p *Package) Filenames() []string {
	names := make([]string, 0, len(p.Files))
	for k := range p.Files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type (
	// ObjKind is the kind of declaration a directive is attached to
	ObjKind int

	// DirectiveInstance is a single directive comment
	DirectiveInstance struct {
		Sigil     string
		Directive string
	}

	// DirectiveObject is a declaration with its directives
	DirectiveObject struct {
		Directives []DirectiveInstance
		Kind       ObjKind
		Obj        ast.Node
		File       *ast.File
		Filename   string
	}
)

const (
	ObjKindUnknown ObjKind = iota
	ObjKindDeclType
	ObjKindGroupType
	ObjKindGroupConst
	ObjKindGroupVar
	ObjKindDeclFunc
	ObjKindLocalType
)

func (k ObjKind) String() string {
	switch k {
	case ObjKindDeclType:
		return "type"
	case ObjKindGroupType:
		return "type group"
	case ObjKindGroupConst:
		return "const group"
	case ObjKindGroupVar:
		return "var group"
	case ObjKindDeclFunc:
		return "func"
	case ObjKindLocalType:
		return "local type"
	default:
		return "unknown"
	}
}

// Args returns the text of the directive following its sigil
func (d DirectiveInstance) Args() string {
	return strings.TrimSpace(strings.TrimPrefix(d.Directive, d.Sigil))
}

// ParseDirectives returns the directives of a comment group matching sigils
//
// A directive is a line comment with no space after the comment marker whose
// first word is a sigil.
func ParseDirectives(doc *ast.CommentGroup, sigils []string) []DirectiveInstance {
	if doc == nil {
		return nil
	}
	var dirs []DirectiveInstance
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, "//")
		if !ok {
			continue
		}
		for _, s := range sigils {
			if s == "" {
				continue
			}
			rest, ok := strings.CutPrefix(text, s)
			if !ok {
				continue
			}
			if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
				continue
			}
			dirs = append(dirs, DirectiveInstance{
				Sigil:     s,
				Directive: text,
			})
			break
		}
	}
	return dirs
}

// FindDirectives returns the top level declarations, functions, and function
// local types annotated with any of sigils, in file and source order
func FindDirectives(pkg *Package, sigils []string) []DirectiveObject {
	var objs []DirectiveObject
	for _, filename := range pkg.Filenames() {
		file := pkg.Files[filename]
		add := func(dirs []DirectiveInstance, kind ObjKind, obj ast.Node) {
			if len(dirs) == 0 {
				return
			}
			objs = append(objs, DirectiveObject{
				Directives: dirs,
				Kind:       kind,
				Obj:        obj,
				File:       file,
				Filename:   filename,
			})
		}
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok == token.TYPE && !d.Lparen.IsValid() && len(d.Specs) == 1 {
					add(ParseDirectives(d.Doc, sigils), ObjKindDeclType, d.Specs[0])
					continue
				}
				switch d.Tok {
				case token.TYPE:
					add(ParseDirectives(d.Doc, sigils), ObjKindGroupType, d)
					for _, spec := range d.Specs {
						if s, ok := spec.(*ast.TypeSpec); ok {
							add(ParseDirectives(s.Doc, sigils), ObjKindDeclType, s)
						}
					}
				case token.CONST:
					add(ParseDirectives(d.Doc, sigils), ObjKindGroupConst, d)
				case token.VAR:
					add(ParseDirectives(d.Doc, sigils), ObjKindGroupVar, d)
				}
			case *ast.FuncDecl:
				add(ParseDirectives(d.Doc, sigils), ObjKindDeclFunc, d)
				if d.Body != nil {
					findLocalTypes(d.Body, sigils, add)
				}
			}
		}
	}
	return objs
}

func findLocalTypes(body *ast.BlockStmt, sigils []string, add func(dirs []DirectiveInstance, kind ObjKind, obj ast.Node)) {
	ast.Inspect(body, func(n ast.Node) bool {
		stmt, ok := n.(*ast.DeclStmt)
		if !ok {
			return true
		}
		d, ok := stmt.Decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			return true
		}
		groupDirs := ParseDirectives(d.Doc, sigils)
		for _, spec := range d.Specs {
			s, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			dirs := append(append([]DirectiveInstance{}, groupDirs...), ParseDirectives(s.Doc, sigils)...)
			add(dirs, ObjKindLocalType, s)
		}
		return true
	})
}
