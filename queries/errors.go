package queries

var (
	// ErrEnv is returned when queries is run outside of go generate
	ErrEnv errEnv
	// ErrInvalidFile is returned when reading or writing an invalid file
	ErrInvalidFile errInvalidFile
	// ErrInvalidQueries is returned when a round finds invalid query
	// definitions
	ErrInvalidQueries errInvalidQueries
	// ErrMalformedQueryDefinition is returned when a query directive is
	// malformed
	ErrMalformedQueryDefinition errMalformedQueryDefinition
	// ErrIllegalMethodShape is returned when a query method signature is
	// illegal
	ErrIllegalMethodShape errIllegalMethodShape
	// ErrIllegalQueriesDefinition is returned when a queries directive is on
	// anything other than a top level interface
	ErrIllegalQueriesDefinition errIllegalQueriesDefinition
)

type (
	errEnv                      struct{}
	errInvalidFile              struct{}
	errInvalidQueries           struct{}
	errMalformedQueryDefinition struct{}
	errIllegalMethodShape       struct{}
	errIllegalQueriesDefinition struct{}
)

func (e errEnv) Error() string {
	return "Invalid execution environment"
}

func (e errInvalidFile) Error() string {
	return "Invalid file"
}

func (e errInvalidQueries) Error() string {
	return "Invalid queries"
}

func (e errMalformedQueryDefinition) Error() string {
	return "Malformed query definition"
}

func (e errIllegalMethodShape) Error() string {
	return "Illegal method shape"
}

func (e errIllegalQueriesDefinition) Error() string {
	return "Illegal queries definition"
}
