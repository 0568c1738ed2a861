package worker

import (
	"context"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	"taskboard/internal/service"

	"go.uber.org/zap"
)

type SummaryCounter interface {
	Summary(ctx context.Context, filter task.Filter) (service.Summary, error)
}

type SummarySink interface {
	SetTaskSummary(total, completed int)
}

// SummaryWorker периодически пересчитывает сводку по всем задачам
// и публикует её в метрики
type SummaryWorker struct {
	counter  SummaryCounter
	sink     SummarySink
	interval time.Duration
}

func NewSummaryWorker(counter SummaryCounter, sink SummarySink, interval *time.Duration) *SummaryWorker {
	intervalToSet := 30 * time.Second
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}

	return &SummaryWorker{
		counter:  counter,
		sink:     sink,
		interval: intervalToSet,
	}
}

// Start блокируется до отмены ctx; первая проверка выполняется сразу
func (w *SummaryWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Подсчёт сводки останавливается")
			return nil
		}
	}
}

func (w *SummaryWorker) Check(ctx context.Context) {
	start := time.Now()

	summary, err := w.counter.Summary(ctx, task.Filter{})
	if err != nil {
		logger.Warn("Worker: Ошибка подсчёта задач", zap.Error(err))
		return
	}

	w.sink.SetTaskSummary(summary.Total, summary.Completed)

	logger.Info(
		"Worker: Сводка обновлена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("total", summary.Total),
		zap.Int("completed", summary.Completed),
	)
}
