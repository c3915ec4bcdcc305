package querybuilder

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niklucky/mysql-query-builder/qb"
)

func inline() *Builder {
	return New(WithInlineValues())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(b *Builder) *Builder
		want  string
	}{
		{
			name:  "where with default fields and limit",
			build: func(b *Builder) *Builder { return b.Select().From("users").Where("id", 5) },
			want:  "SELECT users.* FROM users WHERE `id`=5 LIMIT 0, 1000",
		},
		{
			name:  "alias with AS",
			build: func(b *Builder) *Builder { return b.Select().From("users AS u") },
			want:  "SELECT u.* FROM users AS u LIMIT 0, 1000",
		},
		{
			name:  "lower case as",
			build: func(b *Builder) *Builder { return b.Select().From("users as u") },
			want:  "SELECT u.* FROM users as u LIMIT 0, 1000",
		},
		{
			name:  "bare alias",
			build: func(b *Builder) *Builder { return b.Select().From("users u") },
			want:  "SELECT u.* FROM users u LIMIT 0, 1000",
		},
		{
			name:  "table name containing as",
			build: func(b *Builder) *Builder { return b.Select().From("cases") },
			want:  "SELECT cases.* FROM cases LIMIT 0, 1000",
		},
		{
			name:  "explicit fields",
			build: func(b *Builder) *Builder { return b.Select("id", "name").From("users") },
			want:  "SELECT id,name FROM users LIMIT 0, 1000",
		},
		{
			name: "canonical clause order",
			build: func(b *Builder) *Builder {
				return b.Select("u.id", "COUNT(o.id)").
					From("users u").
					Limit(10, 20).
					OrderBy("u.name", qb.Desc).
					GroupBy("u.id").
					Like("u.name", "bo", qb.AnchorAfter).
					Where("u.active", 1).
					Join("orders o", "o.user_id = u.id", "left")
			},
			want: "SELECT u.id,COUNT(o.id) FROM users u LEFT JOIN orders o ON o.user_id = u.id " +
				"WHERE `u`.`active`=1 AND `u`.`name` LIKE 'bo%' GROUP BY u.id ORDER BY u.name DESC LIMIT 10, 20",
		},
		{
			name: "several joins",
			build: func(b *Builder) *Builder {
				return b.Select().From("users u").
					InnerJoin("orders o", "o.user_id = u.id").
					LeftJoin("payments p", "p.order_id = o.id").
					Join("tags", "")
			},
			want: "SELECT u.* FROM users u INNER JOIN orders o ON o.user_id = u.id " +
				"LEFT JOIN payments p ON p.order_id = o.id JOIN tags LIMIT 0, 1000",
		},
		{
			name:  "order direction defaults to ascending",
			build: func(b *Builder) *Builder { return b.Select().From("users").OrderBy("name") },
			want:  "SELECT users.* FROM users ORDER BY name ASC LIMIT 0, 1000",
		},
		{
			name:  "lower case direction is normalised",
			build: func(b *Builder) *Builder { return b.Select().From("users").OrderBy("name", "desc") },
			want:  "SELECT users.* FROM users ORDER BY name DESC LIMIT 0, 1000",
		},
		{
			name:  "like only",
			build: func(b *Builder) *Builder { return b.Select().From("users").Like("name", "bob", qb.AnchorBoth) },
			want:  "SELECT users.* FROM users WHERE `name` LIKE '%bob%' LIMIT 0, 1000",
		},
		{
			name: "like combinators",
			build: func(b *Builder) *Builder {
				return b.Select().From("users").
					Like("name", "bob", qb.AnchorBefore).
					LikeOR("email", "bob", qb.AnchorNone)
			},
			want: "SELECT users.* FROM users WHERE `name` LIKE '%bob' OR `email` LIKE 'bob' LIMIT 0, 1000",
		},
		{
			name: "or conditions",
			build: func(b *Builder) *Builder {
				return b.Select().From("users").Where("a", 1).WhereOR("b", "x").Where("c", 2.5)
			},
			want: "SELECT users.* FROM users WHERE `a`=1 OR `b`='x' AND `c`=2.5 LIMIT 0, 1000",
		},
		{
			name:  "leading whereOR gets no joiner",
			build: func(b *Builder) *Builder { return b.Select().From("users").WhereOR("a", 1) },
			want:  "SELECT users.* FROM users WHERE `a`=1 LIMIT 0, 1000",
		},
		{
			name: "operators carried by the key",
			build: func(b *Builder) *Builder {
				return b.Select().From("users").Where("age>", 18).Where("age <=", 65).Where("name!=", "bob")
			},
			want: "SELECT users.* FROM users WHERE `age`>18 AND `age`<=65 AND `name`!='bob' LIMIT 0, 1000",
		},
		{
			name: "in lists",
			build: func(b *Builder) *Builder {
				return b.Select().From("users").
					Where("id", []int{1, 2, 3}).
					Where("role", []string{"admin", "owner"}).
					Where("code", []any{7, "x"})
			},
			want: "SELECT users.* FROM users WHERE `id` IN (1,2,3) AND `role` IN ('admin','owner') " +
				"AND `code` IN (7,'x') LIMIT 0, 1000",
		},
		{
			name:  "nil is null",
			build: func(b *Builder) *Builder { return b.Select().From("users").Where("deleted_at", nil) },
			want:  "SELECT users.* FROM users WHERE `deleted_at` IS NULL LIMIT 0, 1000",
		},
		{
			name:  "where map in key order",
			build: func(b *Builder) *Builder { return b.Select().From("users").WhereMap(qb.H{"b": 2, "a": "x"}) },
			want:  "SELECT users.* FROM users WHERE `a`='x' AND `b`=2 LIMIT 0, 1000",
		},
		{
			name:  "quotes are doubled",
			build: func(b *Builder) *Builder { return b.Select().From("users").Where("name", "O'Brien") },
			want:  "SELECT users.* FROM users WHERE `name`='O''Brien' LIMIT 0, 1000",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stmt, err := tt.build(inline()).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL)
			assert.Empty(t, stmt.Args)
			assert.Equal(t, KindSelect, stmt.Kind)

			// The bound form renders to the same text.
			bound, err := tt.build(New()).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.want, bound.String())
		})
	}
}

func TestSelect_BoundValues(t *testing.T) {
	t.Parallel()

	stmt, err := New().Select().From("users").
		Where("id", []int{1, 2}).
		WhereOR("name", "bob").
		Like("email", "example.com", qb.AnchorBefore).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "SELECT users.* FROM users WHERE `id` IN (?,?) OR `name`=? AND `email` LIKE ? LIMIT 0, 1000", stmt.SQL)
	assert.Equal(t, []any{1, 2, "bob", "%example.com"}, stmt.Args)
}

func TestSelect_DefaultLimitOption(t *testing.T) {
	t.Parallel()

	stmt, err := New(WithDefaultLimit(50)).Select().From("users").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT users.* FROM users LIMIT 0, 50", stmt.SQL)

	stmt, err = New(WithDefaultLimit(-1)).Select().From("users").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT users.* FROM users LIMIT 0, 1000", stmt.SQL)
}

func TestInsert(t *testing.T) {
	t.Parallel()

	t.Run("columns from data", func(t *testing.T) {
		t.Parallel()
		stmt, err := inline().Insert("users", qb.H{"name": "Bob"}).Build()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users(`name`) VALUES ('Bob')", stmt.SQL)
		assert.Equal(t, KindInsert, stmt.Kind)
	})

	t.Run("every value is a string", func(t *testing.T) {
		t.Parallel()
		stmt, err := New().Insert("users", qb.H{"name": "Bob", "age": 30, "score": 1.5}).Build()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users(`age`,`name`,`score`) VALUES (?,?,?)", stmt.SQL)
		assert.Equal(t, []any{"30", "Bob", "1.5"}, stmt.Args)
		assert.Equal(t, "INSERT INTO users(`age`,`name`,`score`) VALUES ('30','Bob','1.5')", stmt.String())
	})

	t.Run("explicit fields keep their order", func(t *testing.T) {
		t.Parallel()
		stmt, err := inline().InsertFields("users", []string{"name", "age"}, qb.H{"age": 30, "name": "Bob", "extra": 1}).Build()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO users(`name`,`age`) VALUES ('Bob','30')", stmt.SQL)
	})

	t.Run("nil is NULL", func(t *testing.T) {
		t.Parallel()
		stmt, err := New().Insert("users", qb.H{"name": nil}).Build()
		require.NoError(t, err)
		assert.Equal(t, []any{nil}, stmt.Args)
		assert.Equal(t, "INSERT INTO users(`name`) VALUES (NULL)", stmt.String())
	})

	t.Run("missing value", func(t *testing.T) {
		t.Parallel()
		_, err := New().InsertFields("users", []string{"name", "age"}, qb.H{"name": "Bob"}).Build()
		require.ErrorIs(t, err, ErrNoValues)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "age", verr.Field)
	})

	t.Run("no values", func(t *testing.T) {
		t.Parallel()
		_, err := New().Insert("users", nil).Build()
		assert.ErrorIs(t, err, ErrNoValues)
	})

	t.Run("no table", func(t *testing.T) {
		t.Parallel()
		_, err := New().Insert("", qb.H{"name": "Bob"}).Build()
		assert.ErrorIs(t, err, ErrMissingTable)
	})

	t.Run("non scalar value", func(t *testing.T) {
		t.Parallel()
		_, err := New().Insert("users", qb.H{"tags": []string{"a"}}).Build()
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("set and where", func(t *testing.T) {
		t.Parallel()
		stmt, err := New().Update("users").Set("name", "Bob").Set("age", 31).Where("id", 5).Build()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE users SET `name`=?, `age`=? WHERE `id`=?", stmt.SQL)
		assert.Equal(t, []any{"Bob", 31, 5}, stmt.Args)
		assert.Equal(t, KindUpdate, stmt.Kind)
	})

	t.Run("set map and row limit", func(t *testing.T) {
		t.Parallel()
		stmt, err := inline().Update("users").SetMap(qb.H{"b": 2, "a": "x"}).Like("name", "bo", qb.AnchorAfter).Limit(0, 1).Build()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE users SET `a`='x', `b`=2 WHERE `name` LIKE 'bo%' LIMIT 1", stmt.SQL)
	})

	t.Run("refuses without conditions", func(t *testing.T) {
		t.Parallel()
		_, err := New().Update("users").Set("name", "Bob").Build()
		assert.ErrorIs(t, err, ErrUnconditionedMutation)
	})

	t.Run("refuses without assignments", func(t *testing.T) {
		t.Parallel()
		_, err := New().Update("users").Where("id", 1).Build()
		assert.ErrorIs(t, err, ErrNoValues)
	})

	t.Run("offset is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := New().Update("users").Set("a", 1).Where("id", 1).Limit(5, 1).Build()
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})

	t.Run("bad assignment", func(t *testing.T) {
		t.Parallel()
		_, err := New().Update("users").Set("", 1).Where("id", 1).Build()
		assert.ErrorIs(t, err, ErrMalformedCondition)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	stmt, err := inline().Delete("users").Where("id", []int{1, 2}).WhereOR("name", "bob").Limit(0, 10).Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users WHERE `id` IN (1,2) OR `name`='bob' LIMIT 10", stmt.SQL)
	assert.Equal(t, KindDelete, stmt.Kind)

	_, err = New().Delete("users").Build()
	assert.ErrorIs(t, err, ErrUnconditionedMutation)

	_, err = New().Delete("").Where("id", 1).Build()
	assert.ErrorIs(t, err, ErrMissingTable)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(b *Builder) *Builder
		want  error
	}{
		{"no statement", func(b *Builder) *Builder { return b.From("users").Where("id", 1) }, ErrUnsupportedStatementKind},
		{"select without from", func(b *Builder) *Builder { return b.Select().Where("id", 1) }, ErrMissingTable},
		{"empty key", func(b *Builder) *Builder { return b.Select().From("t").Where("", 1) }, ErrMalformedCondition},
		{"operator only key", func(b *Builder) *Builder { return b.Select().From("t").Where(">=", 1) }, ErrMalformedCondition},
		{"empty list", func(b *Builder) *Builder { return b.Select().From("t").Where("id", []int{}) }, ErrMalformedCondition},
		{"nested list", func(b *Builder) *Builder { return b.Select().From("t").Where("id", [][]int{{1}}) }, ErrMalformedCondition},
		{"map value", func(b *Builder) *Builder { return b.Select().From("t").Where("id", map[string]int{}) }, ErrMalformedCondition},
		{"struct value", func(b *Builder) *Builder { return b.Select().From("t").Where("id", struct{}{}) }, ErrMalformedCondition},
		{"list with not-equal", func(b *Builder) *Builder { return b.Select().From("t").Where("id!=", []int{1}) }, ErrMalformedCondition},
		{"list with comparison", func(b *Builder) *Builder { return b.Select().From("t").Where("age>", []int{1}) }, ErrMalformedCondition},
		{"delete with negated list", func(b *Builder) *Builder { return b.Delete("t").Where("id!=", []int{1, 2}) }, ErrMalformedCondition},
		{"nil with operator", func(b *Builder) *Builder { return b.Select().From("t").Where("id>", nil) }, ErrMalformedCondition},
		{"like without field", func(b *Builder) *Builder { return b.Select().From("t").Like(" ", "x", qb.AnchorBoth) }, ErrMalformedCondition},
		{"like bad anchor", func(b *Builder) *Builder { return b.Select().From("t").Like("a", "x", qb.Anchor(9)) }, ErrMalformedCondition},
		{"join without table", func(b *Builder) *Builder { return b.Select().From("t").Join("", "a = b") }, ErrMalformedCondition},
		{"unknown order direction", func(b *Builder) *Builder { return b.Select().From("t").OrderBy("id", "DESC; DROP TABLE t") }, ErrMalformedCondition},
		{"negative limit", func(b *Builder) *Builder { return b.Select().From("t").Limit(-1, 10) }, ErrMalformedCondition},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := New()
			stmt, err := tt.build(b).Build()
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, Statement{}, stmt)
			assert.Zero(t, b.Log().Len(), "failed builds are not logged")
			assert.Equal(t, draft{}, b.draft, "draft is reset after a failed build")
		})
	}
}

func TestBuild_FirstAccumulationErrorWins(t *testing.T) {
	t.Parallel()

	_, err := New().Select().From("t").Where("", 1).Limit(-1, 1).Where("id", 1).Build()

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "", verr.Field)
	assert.ErrorIs(t, err, ErrMalformedCondition)
}

func TestBuild_ResetsDraft(t *testing.T) {
	t.Parallel()

	b := inline()
	_, err := b.Select("id").From("users u").
		Join("orders o", "o.user_id = u.id").
		Where("id", 1).
		Like("name", "x", qb.AnchorBoth).
		GroupBy("id").
		OrderBy("id").
		Limit(1, 2).
		Build()
	require.NoError(t, err)
	assert.Equal(t, draft{}, b.draft)

	stmt, err := b.Select().From("posts").Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT posts.* FROM posts LIMIT 0, 1000", stmt.SQL)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrUnsupportedStatementKind)
}

func TestBuild_LastStatementKindWins(t *testing.T) {
	t.Parallel()

	stmt, err := inline().Select().From("users").Insert("users", qb.H{"name": "Bob"}).Build()
	require.NoError(t, err)
	assert.Equal(t, KindInsert, stmt.Kind)
	assert.Equal(t, "INSERT INTO users(`name`) VALUES ('Bob')", stmt.SQL)
}

func TestQueryLog(t *testing.T) {
	t.Parallel()

	b := inline()
	assert.Equal(t, "", b.LastQuery())

	first, err := b.Select().From("users").Build()
	require.NoError(t, err)
	_, err = b.Select().Build()
	require.Error(t, err)
	second, err := b.Insert("users", qb.H{"name": "Bob"}).Build()
	require.NoError(t, err)

	assert.Equal(t, 0, first.ID)
	assert.Equal(t, 1, second.ID)
	assert.Equal(t, second.SQL, b.LastQuery())

	entries := b.Queries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{SQL: first.SQL}, entries[0])
	assert.Equal(t, Entry{SQL: second.SQL}, entries[1])
}

func TestBuilders_AreIndependent(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.Select().From("users").Where("id", 1)
	b.Select().From("posts").Where("slug", "x")

	sa, err := a.Build()
	require.NoError(t, err)
	sb, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "SELECT users.* FROM users WHERE `id`=? LIMIT 0, 1000", sa.SQL)
	assert.Equal(t, []any{1}, sa.Args)
	assert.Equal(t, "SELECT posts.* FROM posts WHERE `slug`=? LIMIT 0, 1000", sb.SQL)
	assert.Equal(t, []any{"x"}, sb.Args)
	assert.Equal(t, 1, a.Log().Len())
	assert.Equal(t, 1, b.Log().Len())
}

func TestBuilders_ConcurrentWithSharedLog(t *testing.T) {
	t.Parallel()

	const workers, perWorker = 8, 50

	shared := NewLog()
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			b := New(WithLog(shared))
			for i := 0; i < perWorker; i++ {
				stmt, err := b.Select().From("jobs").Where("worker", w).Where("seq", i).Build()
				if err != nil {
					errs <- err
					return
				}
				if len(stmt.Args) != 2 || stmt.Args[0] != w || stmt.Args[1] != i {
					errs <- fmt.Errorf("worker %d got args %v", w, stmt.Args)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	entries := shared.Entries()
	require.Len(t, entries, workers*perWorker)
	for _, e := range entries {
		assert.Equal(t, "SELECT jobs.* FROM jobs WHERE `worker`=? AND `seq`=? LIMIT 0, 1000", e.SQL)
		assert.Len(t, e.Args, 2)
	}
}

func TestBuild_LogsCompiledStatements(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithLogger(logger)).Select().From("users").Build()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "compiled statement")
	assert.Contains(t, buf.String(), "kind=select")
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Field: "id", Msg: "bad", Underlying: ErrMalformedCondition}
	assert.Equal(t, "id: bad", err.Error())
	assert.True(t, errors.Is(err, ErrMalformedCondition))

	assert.Equal(t, "bad", (&ValidationError{Msg: "bad"}).Error())
}
