package qb

import (
	"fmt"
	"strings"
)

type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorBefore
	AnchorAfter
	AnchorBoth
)

func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return AnchorNone, nil
	case "before":
		return AnchorBefore, nil
	case "after":
		return AnchorAfter, nil
	case "both":
		return AnchorBoth, nil
	}
	return AnchorNone, fmt.Errorf("unknown like anchor %q", s)
}

func (a Anchor) String() string {
	switch a {
	case AnchorBefore:
		return "before"
	case AnchorAfter:
		return "after"
	case AnchorBoth:
		return "both"
	}
	return "none"
}

// Wrap places the % wildcards around pattern.
func (a Anchor) Wrap(pattern string) string {
	if a == AnchorBefore || a == AnchorBoth {
		pattern = "%" + pattern
	}
	if a == AnchorAfter || a == AnchorBoth {
		pattern += "%"
	}
	return pattern
}

type LikeCondition struct {
	Field      string
	Pattern    string
	Anchor     Anchor
	Combinator Combinator
}

func (l LikeCondition) Validate() error {
	if strings.TrimSpace(l.Field) == "" {
		return fmt.Errorf("%w: like without a field", ErrMalformedCondition)
	}
	if l.Anchor < AnchorNone || l.Anchor > AnchorBoth {
		return fmt.Errorf("%w: like anchor %d out of range", ErrMalformedCondition, l.Anchor)
	}
	return nil
}

func (l LikeCondition) Build(args *Args) string {
	return Quote(l.Field) + " LIKE " + args.Bind(l.Anchor.Wrap(l.Pattern))
}

type builder interface {
	Build(args *Args) string
}

func compile[T builder](conds []T, comb func(T) Combinator, args *Args) string {
	var sb strings.Builder
	for i, c := range conds {
		if i > 0 {
			sb.WriteString(" ")
			sb.WriteString(comb(c).String())
			sb.WriteString(" ")
		}
		sb.WriteString(c.Build(args))
	}
	return sb.String()
}

// CompileWhere joins the conditions in order, each with its own combinator.
func CompileWhere(conds []Condition, args *Args) string {
	return compile(conds, func(c Condition) Combinator { return c.Combinator }, args)
}

func CompileLike(conds []LikeCondition, args *Args) string {
	return compile(conds, func(l LikeCondition) Combinator { return l.Combinator }, args)
}

// CompileFilter is the body of a WHERE clause: the plain conditions followed
// by the LIKE conditions, the two groups joined with AND. It is empty when
// there is nothing to filter on.
func CompileFilter(where []Condition, like []LikeCondition, args *Args) string {
	w := CompileWhere(where, args)
	l := CompileLike(like, args)

	switch {
	case w == "":
		return l
	case l == "":
		return w
	}
	return w + " AND " + l
}
