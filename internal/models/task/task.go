package task

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const MaxTitleLength = 255

type Task struct {
	UUID      uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Color     string    `json:"color" db:"color"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Filter - условия выборки, все заданные поля объединяются через AND
type Filter struct {
	Completed *bool   `json:"completed,omitempty"`
	Color     *string `json:"color,omitempty"`
	Search    *string `json:"search,omitempty"`
}

func (f Filter) IsEmpty() bool {
	return f.Completed == nil && f.Color == nil && f.Search == nil
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Page struct {
	Page  int
	Limit int
}

// NewPage подставляет значения по умолчанию вместо неположительных
func NewPage(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Page{Page: page, Limit: limit}
}

// Offset насыщается до math.MaxInt вместо переполнения
func (p Page) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages = ceil(total/limit)
func (p Page) TotalPages(total int) int {
	if p.Limit < 1 || total < 1 {
		return 0
	}
	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return pages
}
