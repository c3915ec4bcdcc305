package querybuilder

import "github.com/niklucky/mysql-query-builder/qb"

// Where adds an AND condition. The key may carry its own operator, as in
// Where("age>", 18); a slice value compiles to an IN list and nil to IS NULL.
func (b *Builder) Where(key string, value any) *Builder {
	return b.where(qb.Condition{Key: key, Value: value, Combinator: qb.And})
}

func (b *Builder) WhereOR(key string, value any) *Builder {
	return b.where(qb.Condition{Key: key, Value: value, Combinator: qb.Or})
}

// WhereMap adds one AND condition per entry, in key order.
func (b *Builder) WhereMap(conds qb.H) *Builder {
	for _, k := range conds.Keys() {
		b.Where(k, conds[k])
	}
	return b
}

func (b *Builder) where(c qb.Condition) *Builder {
	if err := c.Validate(); err != nil {
		return b.fail(c.Key, err)
	}
	b.draft.where = append(b.draft.where, c)
	return b
}

func (b *Builder) Like(field, pattern string, anchor qb.Anchor) *Builder {
	return b.like(qb.LikeCondition{Field: field, Pattern: pattern, Anchor: anchor, Combinator: qb.And})
}

func (b *Builder) LikeOR(field, pattern string, anchor qb.Anchor) *Builder {
	return b.like(qb.LikeCondition{Field: field, Pattern: pattern, Anchor: anchor, Combinator: qb.Or})
}

func (b *Builder) like(l qb.LikeCondition) *Builder {
	if err := l.Validate(); err != nil {
		return b.fail(l.Field, err)
	}
	b.draft.like = append(b.draft.like, l)
	return b
}
