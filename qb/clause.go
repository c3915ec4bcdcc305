package qb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type JoinClause struct {
	Table string
	On    string
	Type  string
}

func (j JoinClause) Validate() error {
	if strings.TrimSpace(j.Table) == "" {
		return fmt.Errorf("%w: join without a table", ErrMalformedCondition)
	}
	return nil
}

func (j JoinClause) String() string {
	var sb strings.Builder
	if typ := strings.ToUpper(strings.TrimSpace(j.Type)); typ != "" {
		sb.WriteString(typ)
		sb.WriteString(" ")
	}
	sb.WriteString("JOIN ")
	sb.WriteString(j.Table)
	if j.On != "" {
		sb.WriteString(" ON ")
		sb.WriteString(j.On)
	}
	return sb.String()
}

func CompileJoins(joins []JoinClause) string {
	return strings.Join(lo.Map(joins, func(j JoinClause, _ int) string { return j.String() }), " ")
}

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: unknown sort direction %q", ErrMalformedCondition, s)
}

type Order struct {
	Fields    string
	Direction Direction
}

func CompileOrderBy(o Order) string {
	if o.Fields == "" {
		return ""
	}
	return "ORDER BY " + o.Fields + " " + string(lo.Ternary(o.Direction == "", Asc, o.Direction))
}

func CompileGroupBy(fields string) string {
	if fields == "" {
		return ""
	}
	return "GROUP BY " + fields
}

type Limit struct {
	Offset, Count int
}

func (l Limit) Validate() error {
	if l.Offset < 0 || l.Count < 0 {
		return fmt.Errorf("%w: negative limit %d, %d", ErrMalformedCondition, l.Offset, l.Count)
	}
	return nil
}

func CompileLimit(l Limit) string {
	return "LIMIT " + strconv.Itoa(l.Offset) + ", " + strconv.Itoa(l.Count)
}

// CompileRowLimit is the offset-less form accepted by UPDATE and DELETE.
func CompileRowLimit(count int) string {
	return "LIMIT " + strconv.Itoa(count)
}

type Assignment struct {
	Column string
	Value  any
}

func (a Assignment) Validate() error {
	if strings.TrimSpace(a.Column) == "" {
		return fmt.Errorf("%w: assignment without a column", ErrMalformedCondition)
	}
	if !IsScalar(a.Value) {
		return fmt.Errorf("%w: unsupported value %T for %q", ErrMalformedCondition, a.Value, a.Column)
	}
	return nil
}

func CompileSet(sets []Assignment, args *Args) string {
	parts := make([]string, len(sets))
	for i, a := range sets {
		parts[i] = Quote(a.Column) + "=" + args.Bind(a.Value)
	}
	return strings.Join(parts, ", ")
}
