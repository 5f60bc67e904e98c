package indexing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/worker"
)

const (
	emptyQueueSleep = 100 * time.Millisecond
	errorSleep      = time.Second
	retryBackoff    = 500 * time.Millisecond
)

// DestinationEncoder - расчёт эмбеддингов мест
type DestinationEncoder interface {
	EncodeDestinations(ctx context.Context, events []domain.DestinationPersistedEvent) ([]string, error)
	ReencodeStale(ctx context.Context) (int, error)
}

// EmbeddingWorker читает stream:destination:persisted и пересчитывает эмбеддинги мест
type EmbeddingWorker struct {
	*worker.BaseWorker
	streamRepo  repository.StreamRepository
	encoder     DestinationEncoder
	batchSize   int
	readTimeout time.Duration
	maxRetries  int
}

// NewEmbeddingWorker создает новый EmbeddingWorker
func NewEmbeddingWorker(
	streamRepo repository.StreamRepository,
	encoder DestinationEncoder,
	consumerGroup string,
	batchSize int,
	readTimeout time.Duration,
	maxRetries int,
	logger *zap.Logger,
) *EmbeddingWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &EmbeddingWorker{
		BaseWorker:  worker.NewBaseWorker("destination-embedding", consumerGroup, logger),
		streamRepo:  streamRepo,
		encoder:     encoder,
		batchSize:   batchSize,
		readTimeout: readTimeout,
		maxRetries:  maxRetries,
	}
}

// Start запускает воркер: сначала догоняет векторы старой версии модели, затем читает стрим
func (w *EmbeddingWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	ctx, cancel := w.Context(ctx)
	defer cancel()

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamDestinationPersisted, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("Starting EmbeddingWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize))

	if n, err := w.encoder.ReencodeStale(ctx); err != nil {
		logger.Warn("Stale embeddings re-encode failed", zap.Int("reencoded", n), zap.Error(err))
	} else if n > 0 {
		logger.Info("Stale embeddings re-encoded", zap.Int("count", n))
	}

	for {
		if w.IsStopped() || ctx.Err() != nil {
			logger.Info("Worker stopped")
			return nil
		}

		processed, err := w.ProcessBatch(ctx)
		if err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			if !w.Sleep(ctx, errorSleep) {
				return nil
			}
			continue
		}
		if processed == 0 && !w.Sleep(ctx, emptyQueueSleep) {
			return nil
		}
	}
}

// ProcessBatch читает и обрабатывает одну пачку сообщений.
// Возвращает количество прочитанных сообщений.
func (w *EmbeddingWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamDestinationPersisted,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.batchSize,
		w.readTimeout,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	events := make([]domain.DestinationPersistedEvent, 0, len(messages))
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		var ev domain.DestinationPersistedEvent
		if err := json.Unmarshal([]byte(msg.Data), &ev); err != nil || ev.DestinationID == "" {
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			// битое сообщение подтверждаем, чтобы не застревало
			_ = w.streamRepo.AckMessage(ctx, domain.StreamDestinationPersisted, w.ConsumerGroup(), msg.ID)
			continue
		}
		events = append(events, ev)
		ids = append(ids, msg.ID)
	}
	if len(events) == 0 {
		return len(messages), nil
	}

	var updated []string
	for attempt := 1; ; attempt++ {
		updated, err = w.encoder.EncodeDestinations(ctx, events)
		if err == nil || attempt >= w.maxRetries || ctx.Err() != nil {
			break
		}
		logger.Warn("Encode attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if !w.Sleep(ctx, retryBackoff*time.Duration(attempt)) {
			break
		}
	}
	if err != nil {
		// после исчерпания попыток сообщения подтверждаются: ReencodeStale подберёт места без вектора
		logger.Error("Dropping batch after retries",
			zap.Int("events", len(events)),
			zap.Int("encoded", len(updated)),
			zap.Error(err))
	}

	if ackErr := w.streamRepo.AckMessages(ctx, domain.StreamDestinationPersisted, w.ConsumerGroup(), ids...); ackErr != nil {
		logger.Error("Failed to ack messages", zap.Error(ackErr))
	}

	logger.Info("Batch processed",
		zap.Int("events", len(events)),
		zap.Int("encoded", len(updated)))

	return len(messages), nil
}
