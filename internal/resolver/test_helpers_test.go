package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"component-graphql/internal/dbexec"
)

type fakeRows struct {
	columns []string
	rows    [][]any
	idx     int
	err     error
}

func (r *fakeRows) Columns() ([]string, error) {
	return r.columns, nil
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.rows) {
		return errors.New("scan called without advancing rows")
	}
	row := r.rows[r.idx-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan row has %d values, dest has %d", len(row), len(dest))
	}
	for i, value := range row {
		d, ok := dest[i].(*any)
		if !ok {
			return fmt.Errorf("unsupported scan destination %T", dest[i])
		}
		*d = value
	}
	return nil
}

func (r *fakeRows) Err() error {
	return r.err
}

func (r *fakeRows) Close() error {
	return nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newMockConn(t *testing.T) (dbexec.Conn, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	conn, err := dbexec.NewStandardPool(db).Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Release() })
	return conn, mock
}
