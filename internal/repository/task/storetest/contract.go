// Package storetest - общий набор проверок для реализаций service.TaskRepository.
package storetest

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/models/task"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// Contract встраивается в suite конкретного хранилища; Repo выставляется в SetupSuite,
// таблица должна очищаться в SetupTest
type Contract struct {
	suite.Suite
	Repo service.TaskRepository
}

func (c *Contract) create(title, color string) *task.Task {
	newTask := &task.Task{Title: title, Color: color}
	c.Require().NoError(c.Repo.Create(context.Background(), newTask))
	return newTask
}

func (c *Contract) TestHealthCheck() {
	c.NoError(c.Repo.HealthCheck(context.Background()))
}

func (c *Contract) TestCreate_FillsStoreFields() {
	created := c.create("Buy milk", "blue")

	c.NotEqual(uuid.Nil, created.UUID)
	c.Equal(4, int(created.UUID.Version()))
	c.False(created.Completed)
	c.False(created.CreatedAt.IsZero())
	c.False(created.UpdatedAt.IsZero())
}

func (c *Contract) TestGetByID_RoundTrip() {
	ctx := context.Background()
	created := c.create("Buy milk", "blue")

	found, err := c.Repo.GetByID(ctx, created.UUID)
	c.Require().NoError(err)
	c.Equal(created.UUID, found.UUID)
	c.Equal("Buy milk", found.Title)
	c.Equal("blue", found.Color)
	c.False(found.Completed)
	c.WithinDuration(created.CreatedAt, found.CreatedAt, time.Millisecond)

	_, err = c.Repo.GetByID(ctx, uuid.New())
	c.ErrorIs(err, repository.ErrNotFound)
}

func (c *Contract) TestUpdate() {
	ctx := context.Background()
	created := c.create("Buy milk", "blue")

	toUpdate, err := c.Repo.GetByID(ctx, created.UUID)
	c.Require().NoError(err)
	toUpdate.Completed = true
	toUpdate.Color = "green"

	c.Require().NoError(c.Repo.Update(ctx, toUpdate))
	c.False(toUpdate.UpdatedAt.Before(created.UpdatedAt))

	found, err := c.Repo.GetByID(ctx, created.UUID)
	c.Require().NoError(err)
	c.True(found.Completed)
	c.Equal("green", found.Color)
	c.Equal("Buy milk", found.Title)

	err = c.Repo.Update(ctx, &task.Task{UUID: uuid.New(), Title: "ghost", Color: "red"})
	c.ErrorIs(err, repository.ErrNotFound)
}

func (c *Contract) TestDelete() {
	ctx := context.Background()
	created := c.create("Buy milk", "blue")

	c.Require().NoError(c.Repo.Delete(ctx, created.UUID))
	c.ErrorIs(c.Repo.Delete(ctx, created.UUID), repository.ErrNotFound)

	_, err := c.Repo.GetByID(ctx, created.UUID)
	c.ErrorIs(err, repository.ErrNotFound)
}

func (c *Contract) TestList_FiltersOrderAndPages() {
	ctx := context.Background()

	titles := []string{"Buy milk", "Buy FOOd", "food court", "seafood", "Walk dog", "100% done"}
	colors := []string{"blue", "red", "red", "red", "red", "red"}
	for i, title := range titles {
		created := c.create(title, colors[i])
		if i%2 == 1 {
			created.Completed = true
			c.Require().NoError(c.Repo.Update(ctx, created))
		}
		// created_at должен строго возрастать
		time.Sleep(5 * time.Millisecond)
	}

	all, err := c.Repo.List(ctx, task.Filter{}, task.NewPage(1, 10))
	c.Require().NoError(err)
	c.Equal([]string{"100% done", "Walk dog", "seafood", "food court", "Buy FOOd", "Buy milk"}, titlesOf(all))

	yes := true
	red := "red"
	foo := "foo"
	filter := task.Filter{Completed: &yes, Color: &red, Search: &foo}

	matched, err := c.Repo.List(ctx, filter, task.NewPage(1, 10))
	c.Require().NoError(err)
	c.Equal([]string{"seafood", "Buy FOOd"}, titlesOf(matched))

	count, err := c.Repo.Count(ctx, filter)
	c.Require().NoError(err)
	c.Equal(2, count)

	percent := "%"
	literal, err := c.Repo.List(ctx, task.Filter{Search: &percent}, task.NewPage(1, 10))
	c.Require().NoError(err)
	c.Equal([]string{"100% done"}, titlesOf(literal))

	second, err := c.Repo.List(ctx, task.Filter{Color: &red}, task.NewPage(2, 3))
	c.Require().NoError(err)
	c.Equal([]string{"food court", "Buy FOOd"}, titlesOf(second))

	total, err := c.Repo.Count(ctx, task.Filter{})
	c.Require().NoError(err)
	c.Equal(len(titles), total)
}

// TestList_SearchNonASCII - регистр не учитывается и для не-ASCII заголовков
func (c *Contract) TestList_SearchNonASCII() {
	ctx := context.Background()
	c.create("Äpfel kaufen", "green")
	c.create("МОЛОКО", "white")
	c.create("Buy bread", "brown")

	tests := []struct {
		search   string
		expected []string
	}{
		{search: "Äpfel", expected: []string{"Äpfel kaufen"}},
		{search: "äpfel", expected: []string{"Äpfel kaufen"}},
		{search: "ÄPFEL", expected: []string{"Äpfel kaufen"}},
		{search: "молоко", expected: []string{"МОЛОКО"}},
		{search: "МОЛОКО", expected: []string{"МОЛОКО"}},
		{search: "лок", expected: []string{"МОЛОКО"}},
		{search: "BREAD", expected: []string{"Buy bread"}},
	}

	for _, tt := range tests {
		search := tt.search
		filter := task.Filter{Search: &search}

		tasks, err := c.Repo.List(ctx, filter, task.NewPage(1, 10))
		c.Require().NoError(err)
		c.Equal(tt.expected, titlesOf(tasks), "search %q", tt.search)

		total, err := c.Repo.Count(ctx, filter)
		c.Require().NoError(err)
		c.Equal(len(tt.expected), total, "search %q", tt.search)
	}
}

// TestList_PageFarPastEnd - огромный номер страницы даёт пустую выборку
func (c *Contract) TestList_PageFarPastEnd() {
	c.create("Buy milk", "blue")
	c.create("Buy bread", "brown")

	tasks, err := c.Repo.List(context.Background(), task.Filter{}, task.NewPage(4611686018427387904, 4))
	c.Require().NoError(err)
	c.Empty(tasks)
}

func (c *Contract) TestList_Empty() {
	tasks, err := c.Repo.List(context.Background(), task.Filter{}, task.NewPage(1, 10))
	c.Require().NoError(err)
	c.NotNil(tasks)
	c.Empty(tasks)
}

func titlesOf(tasks []*task.Task) []string {
	res := make([]string, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, t.Title)
	}
	return res
}

// Seed нужен для ручных прогонов и бенчмарков
func Seed(ctx context.Context, repo service.TaskRepository, n int) error {
	for i := 0; i < n; i++ {
		if err := repo.Create(ctx, &task.Task{Title: fmt.Sprintf("Task %d", i), Color: "red"}); err != nil {
			return err
		}
	}
	return nil
}
