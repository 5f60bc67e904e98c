package indexing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/worker"
)

// IndexRebuilder - пересборка векторного индекса из хранилища
type IndexRebuilder interface {
	RebuildIndex(ctx context.Context) (int, error)
}

// IndexRefreshWorker держит векторный индекс процесса в актуальном состоянии:
// пересобирает его по событиям stream:embedding:updated и по таймеру.
// У каждого экземпляра своя consumer group, чтобы событие получил каждый процесс.
type IndexRefreshWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	index      IndexRebuilder
	interval   time.Duration
}

// NewIndexRefreshWorker создает новый IndexRefreshWorker. streamRepo может быть nil: тогда только таймер.
func NewIndexRefreshWorker(
	streamRepo repository.StreamRepository,
	index IndexRebuilder,
	consumerGroup string,
	interval time.Duration,
	logger *zap.Logger,
) *IndexRefreshWorker {
	base := worker.NewBaseWorker("vector-index-refresh", "", logger)
	if consumerGroup != "" {
		base = worker.NewBaseWorker("vector-index-refresh", consumerGroup+":"+worker.ConsumerName(), logger)
	}
	return &IndexRefreshWorker{
		BaseWorker: base,
		streamRepo: streamRepo,
		index:      index,
		interval:   interval,
	}
}

// Start строит индекс и затем обновляет его до остановки
func (w *IndexRefreshWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	ctx, cancel := w.Context(ctx)
	defer cancel()

	w.rebuild(ctx, "startup")

	var events <-chan domain.StreamMessage
	if w.streamRepo != nil && w.ConsumerGroup() != "" {
		if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamEmbeddingUpdated, w.ConsumerGroup()); err != nil {
			return fmt.Errorf("failed to create consumer group: %w", err)
		}
		ch, err := w.streamRepo.ConsumeStream(ctx, domain.StreamEmbeddingUpdated, w.ConsumerGroup(), w.ConsumerName())
		if err != nil {
			return fmt.Errorf("failed to consume stream: %w", err)
		}
		events = ch
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped")
			return nil

		case <-tick:
			w.rebuild(ctx, "interval")

		case msg, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			ids := append([]string{msg.ID}, drain(events)...)
			w.rebuild(ctx, "embedding_updated")
			if err := w.streamRepo.AckMessages(ctx, domain.StreamEmbeddingUpdated, w.ConsumerGroup(), ids...); err != nil {
				logger.Warn("Failed to ack index events", zap.Error(err))
			}
		}
	}
}

func (w *IndexRefreshWorker) rebuild(ctx context.Context, reason string) {
	started := time.Now()
	n, err := w.index.RebuildIndex(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.Logger().Error("Vector index rebuild failed", zap.String("reason", reason), zap.Error(err))
		}
		return
	}
	w.Logger().Info("Vector index rebuilt",
		zap.String("reason", reason),
		zap.Int("vectors", n),
		zap.Duration("took", time.Since(started)))
}

// drain забирает уже пришедшие события, чтобы пачка обновлений дала одну пересборку
func drain(ch <-chan domain.StreamMessage) []string {
	var ids []string
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return ids
			}
			ids = append(ids, msg.ID)
		default:
			return ids
		}
	}
}
