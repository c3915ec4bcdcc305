package qb

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMalformedCondition reports a clause whose value shape cannot be compiled.
var ErrMalformedCondition = errors.New("malformed condition")

// operatorChars mark a key that carries its own comparison operator.
const operatorChars = "=<>!"

type Combinator int

const (
	And Combinator = iota
	Or
)

func (c Combinator) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Condition is one accumulated WHERE entry. The combinator joins it to the
// previous sibling and is ignored on the first condition.
type Condition struct {
	Key        string
	Value      any
	Combinator Combinator
}

func (c Condition) Validate() error {
	col, op := splitOperator(c.Key)
	if col == "" {
		return fmt.Errorf("%w: empty column in key %q", ErrMalformedCondition, c.Key)
	}

	if c.Value == nil {
		if op != "" {
			return fmt.Errorf("%w: nil value with operator %q", ErrMalformedCondition, op)
		}
		return nil
	}

	if isSequence(c.Value) {
		if op != "" && op != "=" {
			return fmt.Errorf("%w: list value with operator %q", ErrMalformedCondition, op)
		}
		rv := reflect.ValueOf(c.Value)
		if rv.Len() == 0 {
			return fmt.Errorf("%w: empty list for %q", ErrMalformedCondition, col)
		}
		for i := 0; i < rv.Len(); i++ {
			if el := rv.Index(i).Interface(); el == nil || !IsScalar(el) {
				return fmt.Errorf("%w: list element %d for %q is not a scalar", ErrMalformedCondition, i, col)
			}
		}
		return nil
	}

	if !IsScalar(c.Value) {
		return fmt.Errorf("%w: unsupported value %T for %q", ErrMalformedCondition, c.Value, col)
	}
	return nil
}

func (c Condition) Build(args *Args) string {
	col, op := splitOperator(c.Key)
	col = Quote(col)

	if c.Value == nil {
		return col + " IS NULL"
	}

	if isSequence(c.Value) {
		rv := reflect.ValueOf(c.Value)
		holders := make([]string, rv.Len())
		for i := range holders {
			holders[i] = args.Bind(rv.Index(i).Interface())
		}
		return col + " IN (" + strings.Join(holders, ",") + ")"
	}

	if op == "" {
		op = "="
	}
	return col + op + args.Bind(c.Value)
}

func splitOperator(key string) (col, op string) {
	key = strings.TrimSpace(key)
	i := strings.IndexAny(key, operatorChars)
	if i < 0 {
		return key, ""
	}
	return strings.TrimSpace(key[:i]), strings.TrimSpace(key[i:])
}

// Quote back-tick quotes an identifier. Dotted names are quoted per part,
// "*" is left bare and existing back-ticks are not doubled.
func Quote(ident string) string {
	parts := strings.Split(strings.TrimSpace(ident), ".")
	for i, p := range parts {
		p = strings.Trim(p, "`")
		if p == "*" {
			parts[i] = p
			continue
		}
		parts[i] = "`" + p + "`"
	}
	return strings.Join(parts, ".")
}
