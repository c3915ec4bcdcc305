package querybuilder

import (
	"errors"

	"github.com/niklucky/mysql-query-builder/qb"
)

var (
	// ErrMissingTable is returned when a statement has no table to act on.
	ErrMissingTable = errors.New("querybuilder: you need to specify a table")

	// ErrUnsupportedStatementKind is returned by Build when neither Select,
	// Insert, Update nor Delete was called.
	ErrUnsupportedStatementKind = errors.New("querybuilder: statement kind is not supported")

	ErrMalformedCondition = qb.ErrMalformedCondition

	// ErrUnconditionedMutation guards UPDATE and DELETE without conditions.
	ErrUnconditionedMutation = errors.New("querybuilder: refusing to change rows with no where conditions")

	ErrNoValues = errors.New("querybuilder: no values")

	ErrUnknownEntry = errors.New("querybuilder: unknown log entry")
)

type ValidationError struct {
	Field, Msg string
	Underlying error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Underlying
}
