package coordinates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/estate-geo-service/internal/domain"
	"github.com/estate-geo-service/internal/domain/repository"
	"github.com/estate-geo-service/internal/pkg/metrics"
	"github.com/estate-geo-service/internal/usecase"
	"github.com/estate-geo-service/internal/worker"
)

const retryBackoff = 200 * time.Millisecond

// Syncer применяет событие записи координат
type Syncer interface {
	Apply(ctx context.Context, event *domain.CoordinateSyncEvent) (*domain.CoordinateSyncedEvent, error)
}

// SyncWorker читает stream:geo:coordinates:sync, согласует координаты записи
// и публикует результат в stream:geo:coordinates:synced
type SyncWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	syncer     Syncer
	maxRetries int
}

// NewSyncWorker создает новый SyncWorker
func NewSyncWorker(
	streamRepo repository.StreamRepository,
	syncer Syncer,
	consumerGroup string,
	consumerName string,
	maxRetries int,
	logger *zap.Logger,
) *SyncWorker {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &SyncWorker{
		BaseWorker: worker.NewBaseWorker("coordinate-sync", consumerGroup, consumerName, logger),
		streamRepo: streamRepo,
		syncer:     syncer,
		maxRetries: maxRetries,
	}
}

// Start запускает воркер
func (w *SyncWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting coordinate sync worker",
		zap.String("stream", domain.StreamCoordinatesSync),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("max_retries", w.maxRetries))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamCoordinatesSync, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	runCtx, cancel := w.RunContext(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(runCtx, domain.StreamCoordinatesSync, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-runCtx.Done():
			logger.Info("Coordinate sync worker stopped")
			if w.IsStopped() {
				return nil
			}
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			w.HandleMessage(runCtx, msg)
		}
	}
}

// HandleMessage обрабатывает одно сообщение. Сообщение подтверждается после
// публикации результата; при остановке до завершения остаётся в pending.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.CoordinateSyncEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		metrics.SyncEvents.WithLabelValues("failed").Inc()
		w.ack(ctx, msg.ID)
		return
	}

	result, err := w.applyWithRetry(ctx, &event)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Error("Failed to sync coordinates",
			zap.String("kind", string(event.Kind)),
			zap.Int64("record_id", event.RecordID),
			zap.Error(err))
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamCoordinatesSynced, result); err != nil {
		// Без ACK сообщение будет доставлено повторно
		logger.Error("Failed to publish synced event", zap.Error(err))
		return
	}

	w.ack(ctx, msg.ID)
}

func (w *SyncWorker) applyWithRetry(ctx context.Context, event *domain.CoordinateSyncEvent) (*domain.CoordinateSyncedEvent, error) {
	var (
		result *domain.CoordinateSyncedEvent
		err    error
	)
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		result, err = w.syncer.Apply(ctx, event)
		if err == nil || permanent(err) || attempt == w.maxRetries {
			break
		}

		w.Logger().Warn("Retrying coordinate sync",
			zap.Int64("record_id", event.RecordID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	if result == nil {
		result = &domain.CoordinateSyncedEvent{Kind: event.Kind, RecordID: event.RecordID}
		if err != nil {
			result.Error = err.Error()
		}
	}
	return result, err
}

// permanent - повтор не поможет
func permanent(err error) bool {
	return errors.Is(err, usecase.ErrUnsupportedKind) || errors.Is(err, repository.ErrRecordNotFound)
}

func (w *SyncWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamCoordinatesSync, w.ConsumerGroup(), id); err != nil {
		w.Logger().Warn("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}
