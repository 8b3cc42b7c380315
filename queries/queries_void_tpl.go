package queries

const templateVoid = `
func (t *{{.Impl}}) {{.Method.Name}}({{.Method.Params}}) {{.Method.Results}} {
	{{- if .Method.ErrorOnly }}
	_, err := cypherdb.Execute({{.Method.Ctx}}, t.Executor.{{.Method.Executor}}, {{.Method.Statement}}, {{.Method.ParamMap}}, {{.Method.Extract}})
	return err
	{{- else }}
	return cypherdb.Execute({{.Method.Ctx}}, t.Executor.{{.Method.Executor}}, {{.Method.Statement}}, {{.Method.ParamMap}}, {{.Method.Extract}})
	{{- end }}
}
`
