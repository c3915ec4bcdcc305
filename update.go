package querybuilder

import (
	"fmt"
	"strings"

	"github.com/niklucky/mysql-query-builder/qb"
)

// Update starts an UPDATE of table. Columns are assigned with Set or SetMap
// and the statement must carry at least one WHERE or LIKE condition.
func (b *Builder) Update(table string) *Builder {
	b.kind = KindUpdate
	b.table = table
	return b
}

func (b *Builder) Set(col string, value any) *Builder {
	a := qb.Assignment{Column: col, Value: value}
	if err := a.Validate(); err != nil {
		return b.fail(col, err)
	}
	b.sets = append(b.sets, a)
	return b
}

// SetMap assigns every entry of values, in key order.
func (b *Builder) SetMap(values qb.H) *Builder {
	for _, k := range values.Keys() {
		b.Set(k, values[k])
	}
	return b
}

// Delete starts a DELETE from table. Like Update it refuses to compile
// without conditions.
func (b *Builder) Delete(table string) *Builder {
	b.kind = KindDelete
	b.table = table
	return b
}

func (d *draft) updateSQL(args *qb.Args) (string, error) {
	if strings.TrimSpace(d.table) == "" {
		return "", ErrMissingTable
	}
	if len(d.sets) == 0 {
		return "", fmt.Errorf("%w: update %s", ErrNoValues, d.table)
	}

	var sb strings.Builder

	sb.WriteString("UPDATE ")
	sb.WriteString(d.table)
	sb.WriteString(" SET ")
	sb.WriteString(qb.CompileSet(d.sets, args))

	if err := d.mutationTail(&sb, args); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *draft) deleteSQL(args *qb.Args) (string, error) {
	if strings.TrimSpace(d.table) == "" {
		return "", ErrMissingTable
	}

	var sb strings.Builder

	sb.WriteString("DELETE FROM ")
	sb.WriteString(d.table)

	if err := d.mutationTail(&sb, args); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// mutationTail writes the WHERE and optional LIMIT shared by UPDATE and DELETE.
func (d *draft) mutationTail(sb *strings.Builder, args *qb.Args) error {
	cond := qb.CompileFilter(d.where, d.like, args)
	if cond == "" {
		return fmt.Errorf("%w: %s %s", ErrUnconditionedMutation, d.kind, d.table)
	}

	sb.WriteString(" WHERE ")
	sb.WriteString(cond)

	if d.limit != nil {
		if d.limit.Offset != 0 {
			return &ValidationError{
				Field:      "limit",
				Msg:        fmt.Sprintf("%s does not accept an offset", d.kind),
				Underlying: ErrMalformedCondition,
			}
		}
		sb.WriteString(" ")
		sb.WriteString(qb.CompileRowLimit(d.limit.Count))
	}
	return nil
}
