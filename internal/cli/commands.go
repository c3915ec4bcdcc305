package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	querybuilder "github.com/niklucky/mysql-query-builder"
	"github.com/niklucky/mysql-query-builder/qb"
)

// filterFlags are the condition flags shared by select, update and delete.
type filterFlags struct {
	where   []string
	orWhere []string
	like    []string
	orLike  []string
	limit   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringArrayVar(&f.where, "where", nil, "AND condition key=value, key>value, key=a,b,c (repeatable)")
	fs.StringArrayVar(&f.orWhere, "or-where", nil, "OR condition, same syntax as --where (repeatable)")
	fs.StringArrayVar(&f.like, "like", nil, "AND LIKE field:pattern[:none|before|after|both] (repeatable)")
	fs.StringArrayVar(&f.orLike, "or-like", nil, "OR LIKE, same syntax as --like (repeatable)")
	fs.StringVar(&f.limit, "limit", "", "limit as offset,count or count")
}

func (f *filterFlags) apply(b *querybuilder.Builder) error {
	for _, s := range f.where {
		key, value, err := parseCondition(s)
		if err != nil {
			return err
		}
		b.Where(key, value)
	}
	for _, s := range f.orWhere {
		key, value, err := parseCondition(s)
		if err != nil {
			return err
		}
		b.WhereOR(key, value)
	}
	for _, s := range f.like {
		field, pattern, anchor, err := parseLike(s)
		if err != nil {
			return err
		}
		b.Like(field, pattern, anchor)
	}
	for _, s := range f.orLike {
		field, pattern, anchor, err := parseLike(s)
		if err != nil {
			return err
		}
		b.LikeOR(field, pattern, anchor)
	}
	if f.limit != "" {
		offset, count, err := parseLimit(f.limit)
		if err != nil {
			return err
		}
		b.Limit(offset, count)
	}
	return nil
}

func (a *app) selectCommand() *cobra.Command {
	var (
		filter filterFlags
		from   string
		fields []string
		joins  []string
		order  string
		desc   bool
		group  string
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Compile a SELECT statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.builder().Select(fields...).From(from)
			for _, s := range joins {
				typ, table, on, err := parseJoin(s)
				if err != nil {
					return err
				}
				b.Join(table, on, typ)
			}
			if err := filter.apply(b); err != nil {
				return err
			}
			if group != "" {
				b.GroupBy(group)
			}
			if order != "" {
				dir := qb.Asc
				if desc {
					dir = qb.Desc
				}
				b.OrderBy(order, dir)
			}
			return a.finish(cmd, b)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&from, "from", "", "table expression, e.g. \"users u\"")
	fs.StringSliceVar(&fields, "fields", nil, "selected fields (default <alias>.*)")
	fs.StringArrayVar(&joins, "join", nil, "join as type:table:on, e.g. left:orders o:o.user_id=u.id (repeatable)")
	fs.StringVar(&order, "order", "", "ORDER BY fields")
	fs.BoolVar(&desc, "desc", false, "sort descending")
	fs.StringVar(&group, "group", "", "GROUP BY fields")
	filter.register(cmd)

	return cmd
}

func (a *app) insertCommand() *cobra.Command {
	var (
		table   string
		columns []string
		sets    []string
	)

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Compile an INSERT statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			return a.finish(cmd, a.builder().InsertFields(table, columns, data))
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&table, "table", "", "target table")
	fs.StringSliceVar(&columns, "columns", nil, "column list (default: keys of --set)")
	fs.StringArrayVar(&sets, "set", nil, "value as column=value (repeatable)")

	return cmd
}

func (a *app) updateCommand() *cobra.Command {
	var (
		filter filterFlags
		table  string
		sets   []string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Compile an UPDATE statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			b := a.builder().Update(table).SetMap(data)
			if err := filter.apply(b); err != nil {
				return err
			}
			return a.finish(cmd, b)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&table, "table", "", "target table")
	fs.StringArrayVar(&sets, "set", nil, "assignment as column=value (repeatable)")
	filter.register(cmd)

	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	var (
		filter filterFlags
		table  string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Compile a DELETE statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.builder().Delete(table)
			if err := filter.apply(b); err != nil {
				return err
			}
			return a.finish(cmd, b)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "target table")
	filter.register(cmd)

	return cmd
}

// parseCondition splits "age>=18" into the key "age>=" and the value 18.
// Comma separated values become a list and NULL becomes nil.
func parseCondition(s string) (string, any, error) {
	i := strings.IndexAny(s, "=<>!")
	if i <= 0 {
		return "", nil, fmt.Errorf("condition %q: want key=value", s)
	}
	j := i
	for j < len(s) && strings.ContainsRune("=<>!", rune(s[j])) {
		j++
	}

	key, raw := s[:j], s[j:]
	if strings.EqualFold(raw, "null") {
		if key[i:] == "=" {
			key = key[:i]
		}
		return key, nil, nil
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		values := make([]any, len(parts))
		for k, p := range parts {
			values[k] = qb.ParseValue(strings.TrimSpace(p))
		}
		return key, values, nil
	}
	return key, qb.ParseValue(raw), nil
}

func parseLike(s string) (string, string, qb.Anchor, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return "", "", qb.AnchorNone, fmt.Errorf("like %q: want field:pattern[:anchor]", s)
	}
	var anchor qb.Anchor
	if len(parts) == 3 {
		var err error
		if anchor, err = qb.ParseAnchor(parts[2]); err != nil {
			return "", "", qb.AnchorNone, err
		}
	}
	return parts[0], parts[1], anchor, nil
}

func parseJoin(s string) (typ, table, on string, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("join %q: want type:table:on", s)
	}
	return parts[0], parts[1], parts[2], nil
}

func parseLimit(s string) (int, int, error) {
	offset, count := "0", s
	if before, after, ok := strings.Cut(s, ","); ok {
		offset, count = before, after
	}

	o, err := strconv.Atoi(strings.TrimSpace(offset))
	if err != nil {
		return 0, 0, fmt.Errorf("limit %q: %w", s, err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return 0, 0, fmt.Errorf("limit %q: %w", s, err)
	}
	return o, c, nil
}

func parseAssignments(sets []string) (qb.H, error) {
	data := make(qb.H, len(sets))
	for _, s := range sets {
		col, raw, ok := strings.Cut(s, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("assignment %q: want column=value", s)
		}
		if strings.EqualFold(raw, "null") {
			data[col] = nil
			continue
		}
		data[col] = qb.ParseValue(raw)
	}
	return data, nil
}
