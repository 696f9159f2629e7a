package shared

import (
	"context"
	"database/sql"
)

// HpConnection is a wrapper around Go native sql.DB that remembers the connection type.
type HpConnection struct {
	DbSql  *sql.DB
	DbType string
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DbSql.QueryContext(ctx, query, args...)
}

func (c *HpConnection) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DbSql.QueryRowContext(ctx, query, args...)
}

func (c *HpConnection) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return c.DbSql.BeginTx(ctx, opts)
}

func (c *HpConnection) Close() {
	_ = c.DbSql.Close()
}

func (c *HpConnection) GetType() string {
	return c.DbType
}
