package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	// порядок вставки, он же порядок created_at
	ids []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Close() {}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now().UTC()
	taskToCreate.UUID = uuid.New()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := *taskToCreate
	s.storage[stored.UUID] = &stored
	s.ids = append(s.ids, stored.UUID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.UUID]
	if !ok {
		return repo.ErrNotFound
	}

	existing.Title = taskToUpdate.Title
	existing.Color = taskToUpdate.Color
	existing.Completed = taskToUpdate.Completed
	existing.UpdatedAt = time.Now().UTC()

	*taskToUpdate = *existing
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	found := *taskToGet
	return &found, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// List отдаёт задачи от новых к старым
func (s *TaskStorage) List(ctx context.Context, filter task.Filter, page task.Page) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	skipped := 0

	for i := len(s.ids) - 1; i >= 0; i-- {
		if len(res) >= page.Limit {
			break
		}

		taskToGet := s.storage[s.ids[i]]
		if !matches(taskToGet, filter) {
			continue
		}

		if skipped < page.Offset() {
			skipped++
			continue
		}

		found := *taskToGet
		res = append(res, &found)
	}

	return res, nil
}

func (s *TaskStorage) Count(ctx context.Context, filter task.Filter) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, t := range s.storage {
		if matches(t, filter) {
			count++
		}
	}
	return count, nil
}

func matches(t *task.Task, filter task.Filter) bool {
	if filter.Completed != nil && t.Completed != *filter.Completed {
		return false
	}
	if filter.Color != nil && t.Color != *filter.Color {
		return false
	}
	if filter.Search != nil &&
		!strings.Contains(strings.ToLower(t.Title), strings.ToLower(*filter.Search)) {
		return false
	}
	return true
}
