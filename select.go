package querybuilder

import (
	"strings"

	"github.com/niklucky/mysql-query-builder/qb"
)

// Select starts a SELECT. Without fields the statement selects every column
// of the FROM table, addressed through its alias when it has one.
func (b *Builder) Select(fields ...string) *Builder {
	b.kind = KindSelect
	b.fields = fields
	return b
}

func (b *Builder) From(from string) *Builder {
	b.from = from
	return b
}

// Join adds a JOIN; typ is free text such as "left" or "inner".
func (b *Builder) Join(table, on string, typ ...string) *Builder {
	j := qb.JoinClause{Table: table, On: on, Type: first(typ, "")}
	if err := j.Validate(); err != nil {
		return b.fail(table, err)
	}
	b.joins = append(b.joins, j)
	return b
}

func (b *Builder) LeftJoin(table, on string) *Builder {
	return b.Join(table, on, "left")
}

func (b *Builder) InnerJoin(table, on string) *Builder {
	return b.Join(table, on, "inner")
}

// OrderBy sorts by fields. The direction is case-insensitive and defaults to
// ascending; anything but ASC or DESC fails the draft.
func (b *Builder) OrderBy(fields string, dir ...qb.Direction) *Builder {
	d, err := qb.ParseDirection(string(first(dir, qb.Asc)))
	if err != nil {
		return b.fail("order", err)
	}
	b.order = Ptr(qb.Order{Fields: fields, Direction: d})
	return b
}

func (b *Builder) GroupBy(fields string) *Builder {
	b.group = fields
	return b
}

func (b *Builder) Limit(offset, count int) *Builder {
	l := qb.Limit{Offset: offset, Count: count}
	if err := l.Validate(); err != nil {
		return b.fail("limit", err)
	}
	b.limit = Ptr(l)
	return b
}

func (d *draft) selectSQL(args *qb.Args, defaultLimit int) (string, error) {
	if strings.TrimSpace(d.from) == "" {
		return "", ErrMissingTable
	}

	fields := d.fields
	if len(fields) == 0 {
		fields = []string{tableAlias(d.from) + ".*"}
	}

	parts := []string{
		"SELECT " + strings.Join(fields, ","),
		"FROM " + d.from,
	}

	if joins := qb.CompileJoins(d.joins); joins != "" {
		parts = append(parts, joins)
	}

	if cond := qb.CompileFilter(d.where, d.like, args); cond != "" {
		parts = append(parts, "WHERE "+cond)
	}

	if group := qb.CompileGroupBy(d.group); group != "" {
		parts = append(parts, group)
	}

	if order := qb.CompileOrderBy(Unwrap(d.order)); order != "" {
		parts = append(parts, order)
	}

	limit := qb.Limit{Count: defaultLimit}
	if d.limit != nil {
		limit = *d.limit
	}
	parts = append(parts, qb.CompileLimit(limit))

	return strings.Join(parts, " "), nil
}

// tableAlias returns the alias of a FROM expression ("users AS u", "users u")
// or the table itself when there is none.
func tableAlias(from string) string {
	tokens := strings.Fields(from)
	switch {
	case len(tokens) >= 3 && strings.EqualFold(tokens[len(tokens)-2], "as"):
		return tokens[len(tokens)-1]
	case len(tokens) == 2:
		return tokens[1]
	}
	return tokens[0]
}
