// Package dbexec provides database query execution abstractions.
// A resolution acquires one pooled connection, runs every statement of its
// load/query/marshal sequence on it, and releases it when done.
package dbexec

import (
	"context"
	"database/sql"
	"fmt"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// Queryer runs read statements.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// Conn is a connection held for the duration of one resolution.
type Conn interface {
	Queryer
	// Release returns the connection to its pool.
	Release() error
}

// Pool hands out connections. Acquire may block until the pool has capacity.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// StandardPool acquires dedicated connections from a shared database handle.
type StandardPool struct {
	db *sql.DB
}

// NewStandardPool wraps a database handle. The caller keeps ownership of db.
func NewStandardPool(db *sql.DB) *StandardPool {
	return &StandardPool{db: db}
}

func (p *StandardPool) Acquire(ctx context.Context) (Conn, error) {
	if p.db == nil {
		return nil, sql.ErrConnDone
	}
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &pooledConn{conn: conn}, nil
}

type pooledConn struct {
	conn *sql.Conn
}

func (c *pooledConn) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

func (c *pooledConn) Release() error {
	return c.conn.Close()
}
