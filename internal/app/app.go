package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/metrics"
	"taskboard/internal/repository/task/inmemory"
	"taskboard/internal/repository/task/postgres"
	"taskboard/internal/repository/task/sqlite"
	"taskboard/internal/service"
	"taskboard/internal/worker"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store - хранилище задач с управлением жизненным циклом
type Store interface {
	service.TaskRepository
	Close()
}

type App struct {
	config    *config.Config
	server    *http.Server
	store     Store
	service   *service.TaskService
	worker    *worker.SummaryWorker
	shutdowns []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	store, err := OpenStore(ctx, a.config)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		store.Close()
	})

	m := metrics.New()
	a.service = service.NewTaskService(store)
	a.worker = worker.NewSummaryWorker(a.service, m, &a.config.Worker.SummaryInterval)

	router := NewRouter(RouterConfig{
		CORSOrigins: a.config.Server.CORSOrigins,
		RateLimit:   a.config.Server.RateLimit,
	}, handlers.NewTaskHandler(a.service), m)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))

	return a, nil
}

// OpenStore создаёт единственный долгоживущий экземпляр хранилища
// и применяет миграции для SQL-бэкендов
func OpenStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConns:        cfg.Database.MaxConnections,
			MinConns:        cfg.Database.MinConnections,
			MaxConnIdleTime: cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, fmt.Errorf("миграции postgres: %w", err)
		}
		return storage, nil

	case config.RepositorySQLite:
		storage, err := sqlite.New(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("открытие sqlite: %w", err)
		}
		if err := storage.Migrate(ctx); err != nil {
			storage.Close()
			return nil, fmt.Errorf("миграции sqlite: %w", err)
		}
		return storage, nil

	case config.RepositoryInMemory:
		return inmemory.NewTaskStorage(), nil

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %q", cfg.Repository.Type)
	}
}

// Run блокируется, пока ctx не отменён или сервер не упал
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.worker.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка сервера: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
