// Package outbox публикует события заказов из transactional outbox в брокер.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/blackbeesoft/erp/internal/domain"
)

var (
	outboxPublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_outbox_publish_attempts_total",
		Help: "Total number of outbox publish attempts grouped by result.",
	}, []string{"result"})
	outboxPendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "erp_outbox_pending_records",
		Help: "Current number of pending records in transactional outbox.",
	})
	outboxOldestPendingAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "erp_outbox_oldest_pending_age_seconds",
		Help: "Age in seconds of the oldest pending outbox record.",
	})
)

// settings — нормализованная конфигурация воркера.
type settings struct {
	logger         *log.Entry
	pollInterval   time.Duration
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
}

func defaultSettings() settings {
	return settings{
		pollInterval:   time.Second,
		batchSize:      100,
		maxAttempts:    3,
		retryBaseDelay: 50 * time.Millisecond,
	}
}

// Option настраивает Worker.
type Option func(*settings)

// WithLogger задаёт logger воркера.
func WithLogger(logger *log.Entry) Option {
	return func(s *settings) { s.logger = logger }
}

// WithPollInterval задаёт период опроса outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithBatchSize задаёт максимум записей за один проход.
func WithBatchSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации, после которых
// запись помечается failed и остаётся в таблице для разбора.
func WithMaxAttempts(attempts int) Option {
	return func(s *settings) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
	}
}

// WithRetryBaseDelay задаёт базовую задержку exponential backoff.
// Ноль отключает паузы между попытками.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(s *settings) {
		if delay >= 0 {
			s.retryBaseDelay = delay
		}
	}
}

// Worker забирает pending-записи из outbox и публикует их в брокер.
// Гарантия — at-least-once: запись помечается sent только после
// подтверждённой отправки, поэтому потребители должны быть идемпотентны.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	cfg       settings
}

// NewWorker собирает воркер поверх репозитория и паблишера.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, options ...Option) *Worker {
	cfg := defaultSettings()
	for _, option := range options {
		option(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.WithField("component", "outbox-worker")
	}

	return &Worker{repo: repo, publisher: publisher, cfg: cfg}
}

// Run крутит polling-цикл до отмены контекста.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.cfg.logger.Warn("outbox worker отключён: нет репозитория или паблишера")
		return
	}

	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce обрабатывает один батч; вынесен отдельно для тестов
// и для ручного прогона при остановленном цикле.
func (w *Worker) ProcessOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.observeBacklog()

	batch, err := w.repo.PullPending(w.cfg.batchSize)
	if err != nil {
		w.cfg.logger.WithError(err).Warn("не удалось прочитать pending-записи outbox")
		return
	}

	for _, msg := range batch {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, msg)
	}

	if len(batch) > 0 {
		w.observeBacklog()
	}
}

// deliver доводит одно сообщение до терминального статуса: sent или failed.
func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) {
	if err := w.publishWithRetry(ctx, msg); err != nil {
		w.cfg.logger.WithError(err).WithFields(log.Fields{
			"outbox_id":  msg.ID,
			"event_type": msg.EventType,
		}).Error("публикация события не удалась, запись помечается failed")
		outboxPublishAttempts.WithLabelValues("failed").Inc()

		if markErr := w.repo.MarkFailed(msg.ID); markErr != nil {
			w.cfg.logger.WithError(markErr).WithField("outbox_id", msg.ID).
				Warn("не удалось пометить запись failed")
		}
		return
	}

	if err := w.repo.MarkSent(msg.ID); err != nil {
		w.cfg.logger.WithError(err).WithField("outbox_id", msg.ID).
			Warn("событие опубликовано, но запись не помечена sent")
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error

	for attempt := 0; attempt < w.cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := w.sleepBeforeRetry(ctx, attempt); err != nil {
				return err
			}
		}

		if lastErr = w.publisher.Publish(msg); lastErr == nil {
			outboxPublishAttempts.WithLabelValues("sent").Inc()
			return nil
		}
		outboxPublishAttempts.WithLabelValues("retry_error").Inc()
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.cfg.maxAttempts, lastErr)
}

// sleepBeforeRetry ждёт retryBaseDelay*2^(attempt-1) либо отмену контекста.
func (w *Worker) sleepBeforeRetry(ctx context.Context, attempt int) error {
	if w.cfg.retryBaseDelay <= 0 {
		return ctx.Err()
	}

	delay := w.cfg.retryBaseDelay
	for i := 1; i < attempt && delay < time.Minute; i++ {
		delay *= 2
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *Worker) observeBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.cfg.logger.WithError(err).Warn("не удалось получить статистику outbox")
		return
	}

	outboxPendingRecords.Set(float64(stats.PendingCount))
	switch {
	case stats.PendingCount == 0 || stats.OldestPendingAt.IsZero():
		outboxOldestPendingAge.Set(0)
	default:
		age := time.Since(stats.OldestPendingAt).Seconds()
		if age < 0 {
			age = 0
		}
		outboxOldestPendingAge.Set(age)
	}
}
