package queries

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"xorkevin.dev/cypherforge/typedesc"
)

type (
	// Directives are the sigils of the query directives
	Directives struct {
		Queries string
		Query   string
		Cypher  string
		Alias   string
	}

	// QueryDirective is the parsed configuration of a query method
	QueryDirective struct {
		Value     string
		HasValue  bool
		Cypher    string
		HasCypher bool
		Kind      string
		Tx        string
	}

	// QueryKind is the leading clause of a statement
	QueryKind int

	// TxKind is the access mode of the transaction a statement runs in
	TxKind int
)

const (
	QueryKindUnknown QueryKind = iota
	QueryKindCall
	QueryKindCreate
	QueryKindDelete
	QueryKindMatch
	QueryKindMerge
	QueryKindOptionalMatch
)

const (
	TxKindUnknown TxKind = iota
	TxKindRead
	TxKindWrite
)

// DefaultDirectives returns the default directive sigils
func DefaultDirectives() Directives {
	return Directives{
		Queries: "forge:queries",
		Query:   "forge:query",
		Cypher:  "forge:cypher",
		Alias:   "forge:alias",
	}
}

// Sigils returns all directive sigils
func (d Directives) Sigils() []string {
	return []string{d.Queries, d.Query, d.Cypher, d.Alias}
}

func (k QueryKind) String() string {
	switch k {
	case QueryKindCall:
		return "CALL"
	case QueryKindCreate:
		return "CREATE"
	case QueryKindDelete:
		return "DELETE"
	case QueryKindMatch:
		return "MATCH"
	case QueryKindMerge:
		return "MERGE"
	case QueryKindOptionalMatch:
		return "OPTIONAL_MATCH"
	default:
		return "UNKNOWN"
	}
}

// Tx returns the transaction kind a statement of kind k runs in by default
func (k QueryKind) Tx() TxKind {
	switch k {
	case QueryKindMatch, QueryKindOptionalMatch:
		return TxKindRead
	case QueryKindCall, QueryKindCreate, QueryKindDelete, QueryKindMerge:
		return TxKindWrite
	default:
		return TxKindUnknown
	}
}

func (k TxKind) String() string {
	switch k {
	case TxKindRead:
		return "READ"
	case TxKindWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

func parseQueryKind(s string) (QueryKind, bool) {
	switch strings.ToLower(s) {
	case "call":
		return QueryKindCall, true
	case "create":
		return QueryKindCreate, true
	case "delete":
		return QueryKindDelete, true
	case "match":
		return QueryKindMatch, true
	case "merge":
		return QueryKindMerge, true
	case "optional_match":
		return QueryKindOptionalMatch, true
	default:
		return QueryKindUnknown, false
	}
}

func parseTxKind(s string) (TxKind, bool) {
	switch strings.ToLower(s) {
	case "read":
		return TxKindRead, true
	case "write":
		return TxKindWrite, true
	default:
		return TxKindUnknown, false
	}
}

// DeduceQueryKind deduces the kind of a statement from its leading letters
func DeduceQueryKind(text string) (QueryKind, bool) {
	t := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(t, "CA"):
		return QueryKindCall, true
	case strings.HasPrefix(t, "CR"):
		return QueryKindCreate, true
	case strings.HasPrefix(t, "DE"):
		return QueryKindDelete, true
	case strings.HasPrefix(t, "MA"):
		return QueryKindMatch, true
	case strings.HasPrefix(t, "ME"):
		return QueryKindMerge, true
	case strings.HasPrefix(t, "O"):
		return QueryKindOptionalMatch, true
	default:
		return QueryKindUnknown, false
	}
}

func splitOptions(root typedesc.Anchor, args string) ([]string, error) {
	opts, err := shellquote.Split(args)
	if err != nil {
		return nil, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Invalid directive options %q: %s", args, err))
	}
	return opts, nil
}

// ParseQueryDirective parses the options of query directives and the lines of
// cypher directives
//
// Options are shell quoted key=value pairs. The cypher lines are joined by
// newlines into the cypher option.
func ParseQueryDirective(root typedesc.Anchor, args []string, cypher []string) (QueryDirective, error) {
	var q QueryDirective
	seen := map[string]struct{}{}
	for _, i := range args {
		opts, err := splitOptions(root, i)
		if err != nil {
			return QueryDirective{}, err
		}
		for _, j := range opts {
			k, v, ok := strings.Cut(j, "=")
			if !ok {
				return QueryDirective{}, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Query option %s must be key=value", j))
			}
			if _, ok := seen[k]; ok {
				return QueryDirective{}, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Duplicate query option %s", k))
			}
			seen[k] = struct{}{}
			switch k {
			case "value":
				q.Value = v
				q.HasValue = true
			case "cypher":
				q.Cypher = v
				q.HasCypher = true
			case "kind":
				q.Kind = v
			case "tx":
				q.Tx = v
			default:
				return QueryDirective{}, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Unknown query option %s", k))
			}
		}
	}
	if len(cypher) != 0 {
		lines := cypher
		if q.HasCypher {
			lines = append([]string{q.Cypher}, cypher...)
		}
		q.Cypher = strings.Join(lines, "\n")
		q.HasCypher = true
	}
	return q, nil
}

// Statement returns the statement text of the directive
//
// An empty value or cypher option is unset.
func (q QueryDirective) Statement(root typedesc.Anchor) (string, error) {
	hasValue := q.HasValue && q.Value != ""
	hasCypher := q.HasCypher && q.Cypher != ""
	switch {
	case hasValue && hasCypher:
		return "", typedesc.Illegal(root, ErrMalformedQueryDefinition, "must have one of value or cypher configured, but both of them are")
	case hasValue:
		v := strings.TrimSpace(q.Value)
		if v == "" {
			return "", typedesc.Illegal(root, ErrMalformedQueryDefinition, "can not have empty value")
		}
		return v, nil
	case hasCypher:
		v := strings.TrimSpace(q.Cypher)
		if v == "" {
			return "", typedesc.Illegal(root, ErrMalformedQueryDefinition, "can not have blank cypher")
		}
		return v, nil
	default:
		return "", typedesc.Illegal(root, ErrMalformedQueryDefinition, "must have one of value or cypher configured, but none of them are")
	}
}

// Kinds returns the statement and transaction kinds of the directive
func (q QueryDirective) Kinds(root typedesc.Anchor, statement string) (QueryKind, TxKind, error) {
	var kind QueryKind
	if q.Kind != "" {
		k, ok := parseQueryKind(q.Kind)
		if !ok {
			return QueryKindUnknown, TxKindUnknown, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Unknown statement kind %s", q.Kind))
		}
		kind = k
	} else {
		k, ok := DeduceQueryKind(statement)
		if !ok {
			return QueryKindUnknown, TxKindUnknown, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("cannot deduce statement kind of %s", statement))
		}
		kind = k
	}
	tx := kind.Tx()
	if q.Tx != "" {
		k, ok := parseTxKind(q.Tx)
		if !ok {
			return QueryKindUnknown, TxKindUnknown, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Unknown transaction kind %s", q.Tx))
		}
		tx = k
	}
	return kind, tx, nil
}

// ParseAliases parses alias directives of param=wire pairs
func ParseAliases(root typedesc.Anchor, args []string) (map[string]string, error) {
	aliases := map[string]string{}
	for _, i := range args {
		opts, err := splitOptions(root, i)
		if err != nil {
			return nil, err
		}
		for _, j := range opts {
			name, wire, ok := strings.Cut(j, "=")
			if !ok || name == "" || wire == "" {
				return nil, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Alias %s must be param=wirename", j))
			}
			if _, ok := aliases[name]; ok {
				return nil, typedesc.Illegal(root, ErrMalformedQueryDefinition, fmt.Sprintf("Duplicate alias for param %s", name))
			}
			aliases[name] = wire
		}
	}
	return aliases, nil
}
