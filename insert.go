package querybuilder

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/niklucky/mysql-query-builder/qb"
)

// Insert starts an INSERT whose columns are the keys of data, in key order.
func (b *Builder) Insert(table string, data qb.H) *Builder {
	return b.InsertFields(table, nil, data)
}

// InsertFields starts an INSERT of the given columns, taking each value from
// data.
func (b *Builder) InsertFields(table string, fields []string, data qb.H) *Builder {
	b.kind = KindInsert
	b.table = table
	b.fields = fields
	b.values = data

	for _, k := range data.Keys() {
		if !qb.IsScalar(data[k]) {
			return b.fail(k, fmt.Errorf("%w: unsupported value %T for %q", ErrMalformedCondition, data[k], k))
		}
	}
	return b
}

// insertSQL binds every value as text, so numbers reach the server as
// string literals just like any other value.
func (d *draft) insertSQL(args *qb.Args) (string, error) {
	if strings.TrimSpace(d.table) == "" {
		return "", ErrMissingTable
	}

	cols := d.fields
	if len(cols) == 0 {
		cols = d.values.Keys()
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("%w: insert into %s", ErrNoValues, d.table)
	}

	holders := make([]string, len(cols))
	for i, col := range cols {
		v, ok := d.values[col]
		if !ok {
			return "", &ValidationError{Field: col, Msg: "no value for column " + col, Underlying: ErrNoValues}
		}
		if v != nil {
			v = qb.Text(v)
		}
		holders[i] = args.Bind(v)
	}

	var sb strings.Builder

	sb.WriteString("INSERT INTO ")
	sb.WriteString(d.table)
	sb.WriteString("(")
	sb.WriteString(strings.Join(lo.Map(cols, func(c string, _ int) string { return qb.Quote(c) }), ","))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(holders, ","))
	sb.WriteString(")")

	return sb.String(), nil
}
