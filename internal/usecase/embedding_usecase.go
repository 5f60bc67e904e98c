package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/embedding"
	"github.com/trip-planner/internal/pkg/utils"
)

const defaultEmbeddingPage = 500

// IndexBuilder - пересборка векторного индекса
type IndexBuilder interface {
	Build(ids []string, vectors [][]float32) error
	Dim() int
}

// EmbeddingUseCase - расчёт эмбеддингов мест и пересборка индекса
type EmbeddingUseCase struct {
	embRepo    repository.EmbeddingRepository
	destRepo   repository.DestinationRepository
	streamRepo repository.StreamRepository
	encoder    embedding.Encoder
	index      IndexBuilder
	parallel   int
	pageSize   int
	logger     *zap.Logger
}

// NewEmbeddingUseCase - создание нового EmbeddingUseCase. index и streamRepo могут быть nil.
func NewEmbeddingUseCase(
	embRepo repository.EmbeddingRepository,
	destRepo repository.DestinationRepository,
	streamRepo repository.StreamRepository,
	encoder embedding.Encoder,
	index IndexBuilder,
	parallel int,
	logger *zap.Logger,
) *EmbeddingUseCase {
	return &EmbeddingUseCase{
		embRepo:    embRepo,
		destRepo:   destRepo,
		streamRepo: streamRepo,
		encoder:    encoder,
		index:      index,
		parallel:   parallel,
		pageSize:   defaultEmbeddingPage,
		logger:     logger,
	}
}

// EncodeDestinations кодирует места из событий и сохраняет векторы.
// Возвращает id мест, чьи векторы обновлены.
func (uc *EmbeddingUseCase) EncodeDestinations(ctx context.Context, events []domain.DestinationPersistedEvent) ([]string, error) {
	if len(events) == 0 {
		return nil, nil
	}
	dests := make([]domain.Destination, 0, len(events))
	for _, ev := range events {
		dest := domain.Destination{
			ID:          ev.DestinationID,
			Name:        ev.Name,
			Types:       ev.Types,
			Address:     ev.Address,
			Rating:      ev.Rating,
			Description: ev.Description,
		}
		if len(ev.Duration) > 0 {
			d, err := utils.ParseDuration(ev.Duration)
			if err != nil {
				uc.logger.Warn("Ignoring unparsable visit duration",
					zap.String("destination_id", ev.DestinationID), zap.ByteString("duration", ev.Duration))
			} else {
				uc.storeDuration(ctx, ev.DestinationID, d)
			}
		}
		dests = append(dests, dest)
	}
	return uc.encode(ctx, dests)
}

func (uc *EmbeddingUseCase) storeDuration(ctx context.Context, id string, d time.Duration) {
	dest, err := uc.destRepo.GetByID(ctx, id)
	if err != nil {
		uc.logger.Warn("Destination not in catalog, duration dropped", zap.String("destination_id", id), zap.Error(err))
		return
	}
	if dest.TypicalDuration == d {
		return
	}
	dest.TypicalDuration = d
	if _, err := uc.destRepo.Upsert(ctx, dest); err != nil {
		uc.logger.Warn("Failed to store visit duration", zap.String("destination_id", id), zap.Error(err))
	}
}

func (uc *EmbeddingUseCase) encode(ctx context.Context, dests []domain.Destination) ([]string, error) {
	texts := make([]string, len(dests))
	for i := range dests {
		texts[i] = embedding.DestinationText(&dests[i])
	}
	vectors, err := embedding.EncodeBatch(ctx, uc.encoder, texts, uc.parallel)
	if err != nil {
		uc.logger.Error("Failed to encode destinations", zap.Int("count", len(dests)), zap.Error(err))
		return nil, err
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(dests))
	for i := range dests {
		e := &domain.DestinationEmbedding{
			DestinationID: dests[i].ID,
			Vector:        vectors[i],
			ModelVersion:  uc.encoder.ModelVersion(),
			UpdatedAt:     now,
		}
		if err := uc.embRepo.Upsert(ctx, e); err != nil {
			return ids, err
		}
		ids = append(ids, e.DestinationID)
	}

	if uc.streamRepo != nil && len(ids) > 0 {
		event := domain.EmbeddingUpdatedEvent{DestinationIDs: ids, ModelVersion: uc.encoder.ModelVersion()}
		if err := uc.streamRepo.PublishToStream(ctx, domain.StreamEmbeddingUpdated, event); err != nil {
			uc.logger.Warn("Failed to publish embedding event", zap.Error(err))
		}
	}
	uc.logger.Info("Destination embeddings updated", zap.Int("count", len(ids)))
	return ids, nil
}

// ReencodeStale пересчитывает векторы, посчитанные другой версией модели
func (uc *EmbeddingUseCase) ReencodeStale(ctx context.Context) (int, error) {
	total := 0
	for {
		ids, err := uc.embRepo.ListStale(ctx, uc.encoder.ModelVersion(), uc.pageSize)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		found, err := uc.destRepo.GetByIDs(ctx, ids)
		if err != nil {
			return total, err
		}
		dests := make([]domain.Destination, 0, len(found))
		for _, id := range ids {
			if d, ok := found[id]; ok {
				dests = append(dests, d)
			}
		}
		if len(dests) == 0 {
			uc.logger.Warn("Stale embeddings without catalog entries", zap.Int("count", len(ids)))
			return total, nil
		}
		updated, err := uc.encode(ctx, dests)
		total += len(updated)
		if err != nil {
			return total, err
		}
		if len(updated) < len(ids) || len(ids) < uc.pageSize {
			return total, nil
		}
	}
}

// RebuildIndex перечитывает все векторы постранично и атомарно подменяет индекс
func (uc *EmbeddingUseCase) RebuildIndex(ctx context.Context) (int, error) {
	if uc.index == nil {
		return 0, nil
	}
	started := time.Now()
	var ids []string
	var vectors [][]float32
	skipped := 0
	after := ""
	for {
		page, err := uc.embRepo.ListPage(ctx, after, uc.pageSize)
		if err != nil {
			return 0, err
		}
		for _, e := range page {
			if len(e.Vector) != uc.index.Dim() {
				skipped++
				continue
			}
			ids = append(ids, e.DestinationID)
			vectors = append(vectors, e.Vector)
		}
		if len(page) < uc.pageSize {
			break
		}
		after = page[len(page)-1].DestinationID
	}

	if err := uc.index.Build(ids, vectors); err != nil {
		uc.logger.Error("Vector index rebuild failed", zap.Error(err))
		return 0, err
	}
	uc.logger.Info("Vector index rebuilt",
		zap.Int("vectors", len(ids)),
		zap.Int("skipped", skipped),
		zap.Duration("took", time.Since(started)))
	return len(ids), nil
}
