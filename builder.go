package querybuilder

import (
	"fmt"
	"log/slog"

	"github.com/niklucky/mysql-query-builder/qb"
)

// DefaultLimit bounds every SELECT that never calls Limit.
const DefaultLimit = 1000

type Kind int

const (
	KindNone Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	}
	return "none"
}

// draft is the statement under construction. Build consumes it.
type draft struct {
	kind Kind

	table  string
	fields []string
	values qb.H
	from   string

	where []qb.Condition
	like  []qb.LikeCondition
	joins []qb.JoinClause
	sets  []qb.Assignment

	limit *qb.Limit
	order *qb.Order
	group string

	// err is the first accumulation error; Build reports it.
	err error
}

// Builder accumulates clauses for one statement at a time and compiles them
// with Build. A Builder is not safe for concurrent use; give every goroutine
// its own and share a Log between them with WithLog if needed.
type Builder struct {
	draft

	log    *Log
	logger *slog.Logger

	inline       bool
	defaultLimit int
}

func New(opts ...Option) *Builder {
	b := &Builder{
		log:          NewLog(),
		logger:       slog.Default(),
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b.reset()
}

func (b *Builder) reset() *Builder {
	b.draft = draft{}
	return b
}

func (b *Builder) fail(field string, err error) *Builder {
	if b.err == nil {
		b.err = &ValidationError{Field: field, Msg: err.Error(), Underlying: err}
	}
	return b
}

// Build compiles the draft into a Statement and records it in the query log.
// The draft is cleared whether or not compilation succeeds; the log only
// grows on success.
func (b *Builder) Build() (Statement, error) {
	d := b.draft
	b.reset()

	if d.err != nil {
		return Statement{}, d.err
	}

	var (
		args = qb.NewArgs(b.inline)
		sq   string
		err  error
	)
	switch d.kind {
	case KindSelect:
		sq, err = d.selectSQL(args, b.defaultLimit)
	case KindInsert:
		sq, err = d.insertSQL(args)
	case KindUpdate:
		sq, err = d.updateSQL(args)
	case KindDelete:
		sq, err = d.deleteSQL(args)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedStatementKind, d.kind)
	}
	if err != nil {
		return Statement{}, err
	}

	stmt := Statement{Kind: d.kind, SQL: sq, Args: args.Values(), log: b.log}
	stmt.ID = b.log.Append(stmt.SQL, stmt.Args)

	b.logger.Debug("compiled statement", "kind", d.kind.String(), "sql", stmt.SQL, "args", stmt.Args)

	return stmt, nil
}

// LastQuery returns the text of the most recently compiled statement.
func (b *Builder) LastQuery() string {
	e, _ := b.log.Last()
	return e.SQL
}

// Queries returns a snapshot of the query log.
func (b *Builder) Queries() []Entry {
	return b.log.Entries()
}

func (b *Builder) Log() *Log {
	return b.log
}

// Statement is a compiled statement. SQL holds ? placeholders for Args unless
// the builder compiles inline values.
type Statement struct {
	ID   int
	Kind Kind
	SQL  string
	Args []any

	// log holds the entry ID points at.
	log *Log
}

// String renders the statement with its arguments inlined as literals.
func (s Statement) String() string {
	return qb.Interpolate(s.SQL, s.Args)
}
