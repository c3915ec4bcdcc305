package querybuilder

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Executor runs SQL. *sql.DB, *sql.Tx and *sql.Conn satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Exec runs a statement compiled by b and marks its log entry executed.
// Statements recorded in another log are refused without running.
func (b *Builder) Exec(ctx context.Context, e Executor, stmt Statement) (sql.Result, error) {
	if err := b.owns(stmt); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := e.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		b.logger.Error("statement failed", "sql", stmt.SQL, "error", err)
		return nil, fmt.Errorf("exec %s: %w", stmt.Kind, err)
	}
	return res, b.executed(stmt, time.Since(start))
}

// Query runs a statement compiled by b and marks its log entry executed.
// The caller closes the returned rows.
func (b *Builder) Query(ctx context.Context, e Executor, stmt Statement) (*sql.Rows, error) {
	if err := b.owns(stmt); err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := e.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		b.logger.Error("statement failed", "sql", stmt.SQL, "error", err)
		return nil, fmt.Errorf("query %s: %w", stmt.Kind, err)
	}
	if err := b.executed(stmt, time.Since(start)); err != nil {
		rows.Close()
		return nil, err
	}
	return rows, nil
}

// Run builds the current draft and executes it, using QueryContext for
// SELECT and ExecContext otherwise. Rows are nil for non-SELECT statements.
func (b *Builder) Run(ctx context.Context, e Executor) (Statement, *sql.Rows, sql.Result, error) {
	stmt, err := b.Build()
	if err != nil {
		return Statement{}, nil, nil, err
	}

	if stmt.Kind == KindSelect {
		rows, err := b.Query(ctx, e, stmt)
		return stmt, rows, nil, err
	}

	res, err := b.Exec(ctx, e, stmt)
	return stmt, nil, res, err
}

func (b *Builder) executed(stmt Statement, elapsed time.Duration) error {
	if err := b.log.MarkExecuted(stmt.ID, elapsed); err != nil {
		return err
	}
	b.logger.Debug("executed statement", "sql", stmt.SQL, "elapsed", elapsed)
	return nil
}

// owns reports ErrUnknownEntry unless stmt was recorded in b's log.
func (b *Builder) owns(stmt Statement) error {
	if stmt.log != b.log {
		return fmt.Errorf("%w: %s statement %d was not compiled into this log", ErrUnknownEntry, stmt.Kind, stmt.ID)
	}
	return nil
}
