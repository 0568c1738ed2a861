package query_test

import (
	"testing"

	"taskboard/internal/models/task"
	"taskboard/internal/repository/task/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%foo%", query.LikePattern("FoO"))
	assert.Equal(t, `%100\%%`, query.LikePattern("100%"))
	assert.Equal(t, `%a\_b%`, query.LikePattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, query.LikePattern(`C:\dir`))
}

func TestList_NoFilters(t *testing.T) {
	sql, args, err := query.List(psql, task.Filter{}, task.NewPage(1, 10)).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, title, color, completed, created_at, updated_at FROM tasks ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 0",
		sql)
	assert.Empty(t, args)
}

func TestList_AllFilters(t *testing.T) {
	completed := true
	color := "red"
	search := "Foo"
	filter := task.Filter{Completed: &completed, Color: &color, Search: &search}

	sql, args, err := query.List(psql, filter, task.NewPage(3, 5)).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT id, title, color, completed, created_at, updated_at FROM tasks WHERE (completed = $1 AND color = $2 AND LOWER(title) LIKE $3 ESCAPE '\') ORDER BY created_at DESC, id DESC LIMIT 5 OFFSET 10`,
		sql)
	assert.Equal(t, []any{true, "red", "%foo%"}, args)
}

func TestCount_QuestionPlaceholders(t *testing.T) {
	color := "blue"
	sql, args, err := query.Count(sq.StatementBuilder.PlaceholderFormat(sq.Question), task.Filter{Color: &color}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM tasks WHERE (color = ?)", sql)
	assert.Equal(t, []any{"blue"}, args)
}
