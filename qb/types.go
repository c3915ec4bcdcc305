package qb

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const timeLayout = "2006-01-02 15:04:05"

// H maps column names to values. It is iterated in ascending key order.
type H map[string]any

func (h H) Keys() []string {
	keys := lo.Keys(h)
	sort.Strings(keys)
	return keys
}

// Args collects the values bound while a statement compiles. In inline mode
// values are rendered as literals in place of placeholders.
type Args struct {
	inline bool
	values []any
}

func NewArgs(inline bool) *Args {
	return &Args{inline: inline}
}

// Bind returns the SQL text standing for v.
func (a *Args) Bind(v any) string {
	if a.inline {
		return Literal(v)
	}
	a.values = append(a.values, v)
	return "?"
}

func (a *Args) Values() []any {
	return a.values
}

// literalEscaper escapes string literals for MySQL's default sql_mode, where
// a backslash is an escape character inside quotes.
var literalEscaper = strings.NewReplacer(`\`, `\\`, "'", "''")

// Literal renders v the way it appears in logged SQL. Numbers are bare, bools
// are 1 or 0 as drivers send them, nil is NULL and everything else is a
// single-quoted string.
func Literal(v any) string {
	if v == nil {
		return "NULL"
	}
	if b, ok := v.(bool); ok {
		return lo.Ternary(b, "1", "0")
	}
	if isNumeric(v) {
		return fmt.Sprint(v)
	}
	return "'" + literalEscaper.Replace(Text(v)) + "'"
}

// Text is the string form of a scalar value.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(timeLayout)
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil || dv == nil {
			return ""
		}
		return Text(dv)
	}
	return fmt.Sprint(v)
}

// Interpolate replaces each placeholder in query with the literal form of the
// matching argument. Placeholders inside quoted text are left alone.
func Interpolate(query string, args []any) string {
	if len(args) == 0 {
		return query
	}

	var (
		sb    strings.Builder
		quote rune
		n     int
	)
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '`' || r == '"':
			quote = r
		case r == '?' && n < len(args):
			sb.WriteString(Literal(args[n]))
			n++
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// IsScalar reports whether v can stand for a single SQL value.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, []byte, bool, time.Time, driver.Valuer:
		return true
	}
	return isNumeric(v)
}

func isNumeric(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isSequence(v any) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// ParseValue turns command line text into a typed value: integers and floats
// become numbers, everything else stays a string.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if !strings.ContainsAny(s, "0123456789") {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
