package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"
	"taskboard/internal/repository/task/migrations"
	"taskboard/internal/repository/task/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const slowQuery = 50 * time.Millisecond

// фиксированная ширина, чтобы строковое сравнение совпадало с хронологическим
const timeLayout = "2006-01-02 15:04:05.000000000"

// driverName - go-sqlite3 с LOWER, понимающим Unicode: встроенный LOWER
// sqlite приводит к нижнему регистру только ASCII
const driverName = "sqlite3_unicode"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

type Storage struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

func New(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open(driverName, path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	// sqlite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное подключение к SQLite", zap.String("path", path))
	return &Storage{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(db),
	}, nil
}

func (s *Storage) Close() {
	s.db.Close()
	logger.Info("Repository: Соединение SQLite закрыто")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Migrate применяет встроенные миграции; драйвер migrate работает поверх того же *sql.DB,
// поэтому migrate.Close здесь не вызывается
func (s *Storage) Migrate(ctx context.Context) error {
	source, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("драйвер миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: Ошибка применения миграций", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Repository: Миграции SQLite применены")
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	now := time.Now().UTC()
	id := uuid.New()

	_, err := s.builder.Insert(query.Table).
		Columns(query.Columns...).
		Values(id.String(), taskToCreate.Title, taskToCreate.Color, taskToCreate.Completed,
			now.Format(timeLayout), now.Format(timeLayout)).
		ExecContext(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	taskToCreate.UUID = id
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	warnIfSlow(start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	found, err := query.ScanTask(query.GetByID(s.builder, id.String()).QueryRowContext(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow(start)
	return found, nil
}

func (s *Storage) List(ctx context.Context, filter task.Filter, page task.Page) ([]*task.Task, error) {
	start := time.Now()

	rows, err := query.List(s.builder, filter, page).QueryContext(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		found, err := query.ScanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, found)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start)
	return tasks, nil
}

func (s *Storage) Count(ctx context.Context, filter task.Filter) (int, error) {
	var count int
	if err := query.Count(s.builder, filter).QueryRowContext(ctx).Scan(&count); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return 0, fmt.Errorf("подсчёт задач: %w", err)
	}
	return count, nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	now := time.Now().UTC()

	res, err := s.builder.Update(query.Table).
		Set("title", taskToUpdate.Title).
		Set("color", taskToUpdate.Color).
		Set("completed", taskToUpdate.Completed).
		Set("updated_at", now.Format(timeLayout)).
		Where(sq.Eq{"id": taskToUpdate.UUID.String()}).
		ExecContext(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repo.ErrNotFound
	}

	taskToUpdate.UpdatedAt = now
	warnIfSlow(start)
	return nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := query.Delete(s.builder, id.String()).ExecContext(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func warnIfSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
