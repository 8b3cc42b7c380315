package queries

const templateImpl = `
type (
	{{.Impl}} struct {
		Executor cypherdb.Executor
	}
)
{{- if .Complete }}

var _ {{.Interface}} = (*{{.Impl}})(nil)
{{- end }}
`
