package queries

const templateStream = `
func (t *{{.Impl}}) {{.Method.Name}}({{.Method.Params}}) {{.Method.Results}} {
	return cypherdb.Stream({{.Method.Ctx}}, t.Executor.{{.Method.Executor}}, {{.Method.Statement}}, {{.Method.ParamMap}}, {{.Method.Row}})
}
`
