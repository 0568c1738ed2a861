package task_test

import (
	"math"
	"testing"

	"taskboard/internal/models/task"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
		expectedSkip  int
	}{
		{name: "defaults for zero values", page: 0, limit: 0, expectedPage: 1, expectedLimit: 10, expectedSkip: 0},
		{name: "negative values fall back", page: -3, limit: -1, expectedPage: 1, expectedLimit: 10, expectedSkip: 0},
		{name: "third page of five", page: 3, limit: 5, expectedPage: 3, expectedLimit: 5, expectedSkip: 10},
		{name: "huge page saturates offset", page: 4611686018427387904, limit: 4, expectedPage: 4611686018427387904, expectedLimit: 4, expectedSkip: math.MaxInt},
		{name: "max page and limit saturate offset", page: math.MaxInt, limit: math.MaxInt, expectedPage: math.MaxInt, expectedLimit: math.MaxInt, expectedSkip: math.MaxInt},
		{name: "huge limit on first page", page: 1, limit: math.MaxInt, expectedPage: 1, expectedLimit: math.MaxInt, expectedSkip: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := task.NewPage(tt.page, tt.limit)
			assert.Equal(t, tt.expectedPage, p.Page)
			assert.Equal(t, tt.expectedLimit, p.Limit)
			assert.Equal(t, tt.expectedSkip, p.Offset())
		})
	}
}

func TestPage_TotalPages(t *testing.T) {
	p := task.NewPage(1, 10)

	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
	assert.Equal(t, 0, task.Page{}.TotalPages(5))

	huge := task.NewPage(1, math.MaxInt)
	assert.Equal(t, 1, huge.TotalPages(2))
	assert.Equal(t, 1, huge.TotalPages(math.MaxInt))
	assert.Equal(t, 0, huge.TotalPages(0))
}

func TestApply_PartialUpdate(t *testing.T) {
	original := &task.Task{Title: "Buy milk", Color: "blue"}
	completed := true

	task.Apply(original,
		task.WithTitle(nil),
		task.WithColor(nil),
		task.WithCompleted(&completed),
	)

	assert.Equal(t, "Buy milk", original.Title)
	assert.Equal(t, "blue", original.Color)
	assert.True(t, original.Completed)

	title, color := "Buy bread", "red"
	task.Apply(original, task.WithTitle(&title), task.WithColor(&color))

	assert.Equal(t, "Buy bread", original.Title)
	assert.Equal(t, "red", original.Color)
}

func TestFilter_IsEmpty(t *testing.T) {
	assert.True(t, task.Filter{}.IsEmpty())

	color := "red"
	assert.False(t, task.Filter{Color: &color}.IsEmpty())
}
