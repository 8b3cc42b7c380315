// Package cypherdb is the runtime of generated query bindings
package cypherdb

import (
	"context"
	"iter"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"xorkevin.dev/kerrors"
)

var (
	// ErrNullValue is returned when a null value is read into a non-nullable
	// type
	ErrNullValue errNullValue
	// ErrValueType is returned when a value has an unexpected type
	ErrValueType errValueType
	// ErrValueRange is returned when a value does not fit its declared type
	ErrValueRange errValueRange
	// ErrNoRows is returned when a statement expected to return a row returns
	// none
	ErrNoRows errNoRows
	// ErrTooManyRows is returned when a statement expected to return a single
	// row returns more
	ErrTooManyRows errTooManyRows
	// ErrStreamInterrupted is returned when the transaction of a stream fails
	// after rows have been yielded
	ErrStreamInterrupted errStreamInterrupted
)

type (
	errNullValue   struct{}
	errValueType   struct{}
	errValueRange  struct{}
	errNoRows      struct{}
	errTooManyRows struct{}

	errStreamInterrupted struct{}
)

func (e errNullValue) Error() string {
	return "Null value"
}

func (e errValueType) Error() string {
	return "Invalid value type"
}

func (e errValueRange) Error() string {
	return "Value out of range"
}

func (e errNoRows) Error() string {
	return "No rows"
}

func (e errTooManyRows) Error() string {
	return "Too many rows"
}

func (e errStreamInterrupted) Error() string {
	return "Stream interrupted"
}

type (
	// Executor is the interface boundary of [neo4j.SessionWithContext]
	Executor interface {
		ExecuteRead(ctx context.Context, work TxWork) (any, error)
		ExecuteWrite(ctx context.Context, work TxWork) (any, error)
	}

	// TxWork is a unit of work run in a managed transaction
	TxWork func(tx Tx) (any, error)

	// RunFunc is [Executor] ExecuteRead or ExecuteWrite
	RunFunc func(ctx context.Context, work TxWork) (any, error)

	// Tx is the interface boundary of [neo4j.ManagedTransaction]
	Tx interface {
		Run(ctx context.Context, cypher string, params map[string]any) (Result, error)
	}

	// Result is the interface boundary of [neo4j.ResultWithContext]
	Result interface {
		Next(ctx context.Context) bool
		Record() *neo4j.Record
		Err() error
	}

	// RowMapper maps a result row
	RowMapper[T any] func(rec *neo4j.Record) (T, error)

	// Extractor reads the result of a statement
	Extractor[T any] func(ctx context.Context, res Result) (T, error)
)

type (
	// Session is an [Executor] backed by a [neo4j.SessionWithContext]
	Session struct {
		s           neo4j.SessionWithContext
		configurers []func(*neo4j.TransactionConfig)
	}

	managedTx struct {
		tx neo4j.ManagedTransaction
	}
)

// NewSession returns an [Executor] running managed transactions on s
func NewSession(s neo4j.SessionWithContext, configurers ...func(*neo4j.TransactionConfig)) *Session {
	return &Session{
		s:           s,
		configurers: configurers,
	}
}

// ExecuteRead runs work in a managed read transaction
func (s *Session) ExecuteRead(ctx context.Context, work TxWork) (any, error) {
	return s.s.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(managedTx{tx: tx})
	}, s.configurers...)
}

// ExecuteWrite runs work in a managed write transaction
func (s *Session) ExecuteWrite(ctx context.Context, work TxWork) (any, error) {
	return s.s.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(managedTx{tx: tx})
	}, s.configurers...)
}

func (t managedTx) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Execute runs a statement with run and reads its result with extract
func Execute[T any](ctx context.Context, run RunFunc, cypher string, params map[string]any, extract Extractor[T]) (T, error) {
	var v T
	if _, err := run(ctx, func(tx Tx) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, kerrors.WithMsg(err, "Failed to run statement")
		}
		r, err := extract(ctx, res)
		if err != nil {
			return nil, err
		}
		v = r
		return nil, nil
	}); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Stream runs a statement with run and lazily yields its mapped rows
//
// The transaction is open until iteration completes. Rows are yielded at most
// once: a retried transaction fails with [ErrStreamInterrupted] once any row
// has been yielded, and does nothing once iteration has stopped.
func Stream[T any](ctx context.Context, run RunFunc, cypher string, params map[string]any, row RowMapper[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		yielded := false
		stopped := false
		var failure error
		_, err := run(ctx, func(tx Tx) (any, error) {
			if stopped {
				return nil, nil
			}
			if yielded {
				msg := "Stream interrupted after yielding rows"
				if failure != nil {
					msg += ": " + failure.Error()
				}
				return nil, kerrors.WithKind(nil, ErrStreamInterrupted, msg)
			}
			failure = streamRows(ctx, tx, cypher, params, row, func(v T) bool {
				yielded = true
				if !yield(v, nil) {
					stopped = true
					return false
				}
				return true
			})
			return nil, failure
		})
		if err != nil && !stopped {
			var zero T
			yield(zero, err)
		}
	}
}

func streamRows[T any](ctx context.Context, tx Tx, cypher string, params map[string]any, row RowMapper[T], yield func(T) bool) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return kerrors.WithMsg(err, "Failed to run statement")
	}
	for res.Next(ctx) {
		v, err := row(res.Record())
		if err != nil {
			return err
		}
		if !yield(v) {
			return nil
		}
	}
	if err := res.Err(); err != nil {
		return kerrors.WithMsg(err, "Failed reading rows")
	}
	return nil
}

// Single returns an extractor of exactly one row
func Single[T any](row RowMapper[T]) Extractor[T] {
	return func(ctx context.Context, res Result) (T, error) {
		var zero T
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return zero, kerrors.WithMsg(err, "Failed reading rows")
			}
			return zero, kerrors.WithKind(nil, ErrNoRows, "Statement returned no rows")
		}
		v, err := row(res.Record())
		if err != nil {
			return zero, err
		}
		if res.Next(ctx) {
			return zero, kerrors.WithKind(nil, ErrTooManyRows, "Statement returned more than one row")
		}
		if err := res.Err(); err != nil {
			return zero, kerrors.WithMsg(err, "Failed reading rows")
		}
		return v, nil
	}
}

// List returns an extractor of all rows
func List[T any](row RowMapper[T]) Extractor[[]T] {
	return func(ctx context.Context, res Result) ([]T, error) {
		var rows []T
		for res.Next(ctx) {
			v, err := row(res.Record())
			if err != nil {
				return nil, err
			}
			rows = append(rows, v)
		}
		if err := res.Err(); err != nil {
			return nil, kerrors.WithMsg(err, "Failed reading rows")
		}
		return rows, nil
	}
}

// Seq returns an extractor of all rows as a sequence
func Seq[T any](row RowMapper[T]) Extractor[iter.Seq[T]] {
	list := List(row)
	return func(ctx context.Context, res Result) (iter.Seq[T], error) {
		rows, err := list(ctx, res)
		if err != nil {
			return nil, err
		}
		return slices.Values(rows), nil
	}
}

// Discard is an extractor consuming all rows
func Discard(ctx context.Context, res Result) (struct{}, error) {
	for res.Next(ctx) {
	}
	if err := res.Err(); err != nil {
		return struct{}{}, kerrors.WithMsg(err, "Failed reading rows")
	}
	return struct{}{}, nil
}

// FirstValue returns a row mapper of the first value of a row
func FirstValue[T any](f func(v any) (T, error)) RowMapper[T] {
	return func(rec *neo4j.Record) (T, error) {
		if rec == nil || len(rec.Values) == 0 {
			var zero T
			return zero, kerrors.WithKind(nil, ErrNullValue, "Row has no values")
		}
		return f(rec.Values[0])
	}
}

// WholeRecord is a row mapper of the row itself
func WholeRecord(rec *neo4j.Record) (*neo4j.Record, error) {
	return rec, nil
}
