// Package query строит SQL для таблицы tasks, общий для postgres и sqlite.
package query

import (
	"strings"

	"taskboard/internal/models/task"

	sq "github.com/Masterminds/squirrel"
)

const Table = "tasks"

var Columns = []string{"id", "title", "color", "completed", "created_at", "updated_at"}

// Scanner покрывает pgx.Row, pgx.Rows, *sql.Row и *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

func ScanTask(row Scanner) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.UUID,
		&t.Title,
		&t.Color,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Where превращает фильтр в условия, объединённые через AND
func Where(filter task.Filter) sq.And {
	conditions := sq.And{}

	if filter.Completed != nil {
		conditions = append(conditions, sq.Eq{"completed": *filter.Completed})
	}
	if filter.Color != nil {
		conditions = append(conditions, sq.Eq{"color": *filter.Color})
	}
	if filter.Search != nil {
		conditions = append(conditions, sq.Expr(`LOWER(title) LIKE ? ESCAPE '\'`, LikePattern(*filter.Search)))
	}

	return conditions
}

func List(b sq.StatementBuilderType, filter task.Filter, page task.Page) sq.SelectBuilder {
	query := b.Select(Columns...).From(Table)
	if !filter.IsEmpty() {
		query = query.Where(Where(filter))
	}

	return query.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))
}

func Count(b sq.StatementBuilderType, filter task.Filter) sq.SelectBuilder {
	query := b.Select("COUNT(*)").From(Table)
	if !filter.IsEmpty() {
		query = query.Where(Where(filter))
	}
	return query
}

func GetByID(b sq.StatementBuilderType, id any) sq.SelectBuilder {
	return b.Select(Columns...).From(Table).Where(sq.Eq{"id": id}).Limit(1)
}

func Delete(b sq.StatementBuilderType, id any) sq.DeleteBuilder {
	return b.Delete(Table).Where(sq.Eq{"id": id})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern - подстрока без учёта регистра, спецсимволы LIKE экранируются
func LikePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
