package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"taskboard/internal/models/task"
	"taskboard/internal/repository"
	"taskboard/internal/repository/task/inmemory"
	"taskboard/internal/repository/task/storetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// InMemoryTestSuite гоняет общий контракт хранилища; каждый тест получает чистое хранилище
type InMemoryTestSuite struct {
	storetest.Contract
}

func (s *InMemoryTestSuite) SetupTest() {
	s.Repo = inmemory.NewTaskStorage()
}

func TestInMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTestSuite))
}

func createTask(t *testing.T, storage *inmemory.TaskStorage, title, color string, completed bool) *task.Task {
	t.Helper()

	newTask := &task.Task{Title: title, Color: color, Completed: completed}
	require.NoError(t, storage.Create(context.Background(), newTask))
	return newTask
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := createTask(t, storage, "Buy milk", "blue", false)

	// Проверяем, что поля заполнены хранилищем
	assert.NotEqual(t, uuid.Nil, created.UUID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	retrieved, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.Equal(t, *created, *retrieved)
}

// TestTaskStorage_GetByID тестирует получение задачи по ID
func TestTaskStorage_GetByID(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	t.Run("not found", func(t *testing.T) {
		_, err := storage.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("returned copy does not alias storage", func(t *testing.T) {
		created := createTask(t, storage, "Original", "red", false)

		got, err := storage.GetByID(ctx, created.UUID)
		require.NoError(t, err)
		got.Title = "Changed"

		again, err := storage.GetByID(ctx, created.UUID)
		require.NoError(t, err)
		assert.Equal(t, "Original", again.Title)
	})
}

// TestTaskStorage_Update тестирует обновление
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := createTask(t, storage, "Buy milk", "blue", false)

	toUpdate, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	toUpdate.Completed = true

	require.NoError(t, storage.Update(ctx, toUpdate))
	assert.False(t, toUpdate.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, toUpdate.CreatedAt)

	stored, err := storage.GetByID(ctx, created.UUID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "Buy milk", stored.Title)

	err = storage.Update(ctx, &task.Task{UUID: uuid.New(), Title: "ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует удаление
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	tasks := make([]*task.Task, 5)
	for i := range tasks {
		tasks[i] = createTask(t, storage, fmt.Sprintf("Task %d", i), "red", false)
	}

	// Удаляем задачу из середины
	require.NoError(t, storage.Delete(ctx, tasks[2].UUID))
	assert.ErrorIs(t, storage.Delete(ctx, tasks[2].UUID), repository.ErrNotFound)

	for i, tk := range tasks {
		_, err := storage.GetByID(ctx, tk.UUID)
		if i == 2 {
			assert.ErrorIs(t, err, repository.ErrNotFound)
			continue
		}
		assert.NoError(t, err)
	}

	all, err := storage.List(ctx, task.Filter{}, task.NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// TestTaskStorage_List тестирует фильтры, порядок и пагинацию
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	createTask(t, storage, "Buy milk", "blue", false)
	createTask(t, storage, "Buy FOOd", "red", true)
	createTask(t, storage, "food court", "red", false)
	createTask(t, storage, "seafood", "red", true)
	createTask(t, storage, "Walk dog", "red", true)

	yes := true
	red := "red"
	foo := "foo"

	tests := []struct {
		name           string
		filter         task.Filter
		page           task.Page
		expectedTitles []string
		expectedCount  int
	}{
		{
			name:           "no filters newest first",
			filter:         task.Filter{},
			page:           task.NewPage(1, 10),
			expectedTitles: []string{"Walk dog", "seafood", "food court", "Buy FOOd", "Buy milk"},
			expectedCount:  5,
		},
		{
			name:           "all three predicates together",
			filter:         task.Filter{Completed: &yes, Color: &red, Search: &foo},
			page:           task.NewPage(1, 10),
			expectedTitles: []string{"seafood", "Buy FOOd"},
			expectedCount:  2,
		},
		{
			name:           "second page",
			filter:         task.Filter{Color: &red},
			page:           task.NewPage(2, 3),
			expectedTitles: []string{"Buy FOOd"},
			expectedCount:  4,
		},
		{
			name:           "page past the end",
			filter:         task.Filter{},
			page:           task.NewPage(4, 2),
			expectedTitles: []string{},
			expectedCount:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := storage.List(ctx, tt.filter, tt.page)
			require.NoError(t, err)

			titles := make([]string, 0, len(tasks))
			for _, tk := range tasks {
				titles = append(titles, tk.Title)
			}
			assert.Equal(t, tt.expectedTitles, titles)

			count, err := storage.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCount, count)
		})
	}
}

// TestTaskStorage_ConcurrentAccess тестирует конкурентный доступ
func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			newTask := &task.Task{Title: fmt.Sprintf("Task %d", i), Color: "red"}
			assert.NoError(t, storage.Create(ctx, newTask))
			_, err := storage.List(ctx, task.Filter{}, task.NewPage(1, 10))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := storage.Count(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
