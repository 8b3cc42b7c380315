package cypherdb

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
	"github.com/stretchr/testify/require"
)

type (
	fakeExecutor struct {
		tx    *fakeTx
		reads int
		write int
	}

	fakeTx struct {
		rows   [][]any
		err    error
		runErr error
		cypher string
		params map[string]any
		read   int
	}

	retryingExecutor struct {
		txs       []*fakeTx
		commitErr error
		attempts  int
	}

	fakeResult struct {
		tx  *fakeTx
		idx int
	}
)

func (e *fakeExecutor) ExecuteRead(ctx context.Context, work TxWork) (any, error) {
	e.reads++
	return work(e.tx)
}

func (e *fakeExecutor) ExecuteWrite(ctx context.Context, work TxWork) (any, error) {
	e.write++
	return work(e.tx)
}

// ExecuteRead retries work on neo4j errors the way a driver session does
func (e *retryingExecutor) ExecuteRead(ctx context.Context, work TxWork) (any, error) {
	for {
		tx := e.txs[e.attempts]
		e.attempts++
		v, err := work(tx)
		if err == nil && e.attempts == 1 {
			err = e.commitErr
		}
		var nerr *db.Neo4jError
		if err == nil || !errors.As(err, &nerr) || e.attempts == len(e.txs) {
			return v, err
		}
	}
}

func (t *fakeTx) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	if t.runErr != nil {
		return nil, t.runErr
	}
	t.cypher = cypher
	t.params = params
	return &fakeResult{tx: t, idx: -1}, nil
}

func (r *fakeResult) Next(ctx context.Context) bool {
	if r.idx+1 >= len(r.tx.rows) {
		r.idx = len(r.tx.rows)
		return false
	}
	r.idx++
	r.tx.read++
	return true
}

func (r *fakeResult) Record() *neo4j.Record {
	if r.idx < 0 || r.idx >= len(r.tx.rows) {
		return nil
	}
	return &neo4j.Record{
		Keys:   []string{"v"},
		Values: r.tx.rows[r.idx],
	}
}

func (r *fakeResult) Err() error {
	if r.idx >= len(r.tx.rows) {
		return r.tx.err
	}
	return nil
}

func TestExecute(t *testing.T) {
	t.Parallel()

	errRows := errors.New("connection reset")

	t.Run("single", func(t *testing.T) {
		t.Parallel()

		for _, tc := range []struct {
			Name  string
			Rows  [][]any
			RErr  error
			Value int32
			Err   error
		}{
			{
				Name:  "reads one row",
				Rows:  [][]any{{int64(-5)}},
				Value: -5,
			},
			{
				Name: "errors on no rows",
				Err:  ErrNoRows,
			},
			{
				Name: "errors on many rows",
				Rows: [][]any{{int64(1)}, {int64(2)}},
				Err:  ErrTooManyRows,
			},
			{
				Name: "errors on overflow",
				Rows: [][]any{{int64(1) << 40}},
				Err:  ErrValueRange,
			},
			{
				Name: "errors on null",
				Rows: [][]any{{nil}},
				Err:  ErrNullValue,
			},
			{
				Name: "errors on empty rows",
				Rows: [][]any{{}},
				Err:  ErrNullValue,
			},
			{
				Name: "errors on result errors",
				RErr: errRows,
				Err:  errRows,
			},
		} {
			t.Run(tc.Name, func(t *testing.T) {
				t.Parallel()

				assert := require.New(t)

				e := &fakeExecutor{tx: &fakeTx{rows: tc.Rows, err: tc.RErr}}
				v, err := Execute(context.Background(), e.ExecuteRead, "MATCH (p:Player {id: $id}) RETURN p.score", map[string]any{
					"id": int64(1),
				}, Single(FirstValue(ToPrimitiveInteger[int32])))
				assert.Equal(1, e.reads)
				assert.Equal("MATCH (p:Player {id: $id}) RETURN p.score", e.tx.cypher)
				assert.Equal(map[string]any{"id": int64(1)}, e.tx.params)
				if tc.Err != nil {
					assert.ErrorIs(err, tc.Err)
					assert.Zero(v)
					return
				}
				assert.NoError(err)
				assert.Equal(tc.Value, v)
			})
		}
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}, {"b"}}}}
		v, err := Execute(context.Background(), e.ExecuteWrite, "MATCH (p:Player) RETURN p.name", nil, List(FirstValue(As[string])))
		assert.NoError(err)
		assert.Equal([]string{"a", "b"}, v)
		assert.Equal(1, e.write)

		e = &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}, {int64(1)}}}}
		_, err = Execute(context.Background(), e.ExecuteWrite, "MATCH (p:Player) RETURN p.name", nil, List(FirstValue(As[string])))
		assert.ErrorIs(err, ErrValueType)

		e = &fakeExecutor{tx: &fakeTx{rows: [][]any{{int64(3)}, {int64(4)}}}}
		s, err := Execute(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.id", nil, Seq(FirstValue(ToPrimitiveInteger[int64])))
		assert.NoError(err)
		var ids []int64
		for i := range s {
			ids = append(ids, i)
		}
		assert.Equal([]int64{3, 4}, ids)
	})

	t.Run("discard", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{int64(1)}, {int64(2)}}}}
		_, err := Execute(context.Background(), e.ExecuteWrite, "MATCH (p:Player) DETACH DELETE p RETURN p.id", nil, Discard)
		assert.NoError(err)
		assert.Equal(2, e.tx.read)

		e = &fakeExecutor{tx: &fakeTx{err: errRows}}
		_, err = Execute(context.Background(), e.ExecuteWrite, "MATCH (p:Player) DETACH DELETE p", nil, Discard)
		assert.ErrorIs(err, errRows)
	})

	t.Run("records", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a", int64(1)}}}}
		rec, err := Execute(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name, p.id", nil, Single(WholeRecord))
		assert.NoError(err)
		assert.Equal([]any{"a", int64(1)}, rec.Values)
	})

	t.Run("run errors", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		errRun := errors.New("syntax error")
		e := &fakeExecutor{tx: &fakeTx{runErr: errRun}}
		_, err := Execute(context.Background(), e.ExecuteRead, "MATC (p) RETURN p", nil, Single(WholeRecord))
		assert.ErrorIs(err, errRun)
	})
}

func TestStream(t *testing.T) {
	t.Parallel()

	t.Run("yields every row", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}, {"b"}, {"c"}}}}
		s := Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString))
		assert.Equal(0, e.reads)

		var names []string
		for v, err := range s {
			assert.NoError(err)
			names = append(names, v)
		}
		assert.Equal([]string{"a", "b", "c"}, names)
		assert.Equal(1, e.reads)
	})

	t.Run("stops early", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}, {"b"}, {"c"}}}}
		var names []string
		for v, err := range Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString)) {
			assert.NoError(err)
			names = append(names, v)
			if len(names) == 2 {
				break
			}
		}
		assert.Equal([]string{"a", "b"}, names)
		assert.Equal(2, e.tx.read)
	})

	t.Run("yields errors last", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}, {int64(1)}, {"c"}}}}
		var names []string
		var errs []error
		for v, err := range Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString)) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			names = append(names, v)
		}
		assert.Equal([]string{"a"}, names)
		assert.Len(errs, 1)
		assert.ErrorIs(errs[0], ErrValueType)
	})

	t.Run("does not yield errors after stopping", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		errRows := errors.New("connection reset")
		e := &fakeExecutor{tx: &fakeTx{rows: [][]any{{"a"}}, err: errRows}}
		count := 0
		for _, err := range Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString)) {
			assert.NoError(err)
			count++
			break
		}
		assert.Equal(1, count)
	})

	t.Run("does not yield rows again on retries", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &retryingExecutor{txs: []*fakeTx{
			{rows: [][]any{{"a"}}, err: &db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}},
			{rows: [][]any{{"a"}, {"b"}}},
		}}
		var names []string
		var errs []error
		for v, err := range Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString)) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			names = append(names, v)
		}
		assert.Equal(2, e.attempts)
		assert.Equal([]string{"a"}, names)
		assert.Len(errs, 1)
		assert.ErrorIs(errs[0], ErrStreamInterrupted)
		assert.ErrorContains(errs[0], "DeadlockDetected")
		var nerr *db.Neo4jError
		assert.False(errors.As(errs[0], &nerr))
		assert.Equal("", e.txs[1].cypher)
	})

	t.Run("does not run again after stopping", func(t *testing.T) {
		t.Parallel()

		assert := require.New(t)

		e := &retryingExecutor{
			txs: []*fakeTx{
				{rows: [][]any{{"a"}, {"b"}}},
				{rows: [][]any{{"a"}, {"b"}}},
			},
			commitErr: &db.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"},
		}
		count := 0
		for _, err := range Stream(context.Background(), e.ExecuteRead, "MATCH (p:Player) RETURN p.name", nil, FirstValue(AsString)) {
			assert.NoError(err)
			count++
			break
		}
		assert.Equal(1, count)
		assert.Equal(2, e.attempts)
		assert.Equal("", e.txs[1].cypher)
		assert.Equal(0, e.txs[1].read)
	})
}
