package queries

const templateMain = `// Code generated by {{.Generator}} {{.Version}}; DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports }}
	{{ with .Name }}{{ . }} {{ end }}"{{ .Path }}"
{{- end }}
)
`
