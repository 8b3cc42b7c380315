package queries

const templateExecute = `
func (t *{{.Impl}}) {{.Method.Name}}({{.Method.Params}}) {{.Method.Results}} {
	return cypherdb.Execute({{.Method.Ctx}}, t.Executor.{{.Method.Executor}}, {{.Method.Statement}}, {{.Method.ParamMap}}, {{.Method.Extract}})
}
`
