package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

// placeIDPrefix - так начинаются id Google Places
const placeIDPrefix = "ChIJ"

// DestinationUseCase - каталог мест: локальная таблица, дополняемая Place Resolver
type DestinationUseCase struct {
	destRepo   repository.DestinationRepository
	resolver   repository.PlaceResolver
	streamRepo repository.StreamRepository
	logger     *zap.Logger
}

// NewDestinationUseCase - создание нового DestinationUseCase. Без resolver работает только локальный каталог.
func NewDestinationUseCase(
	destRepo repository.DestinationRepository,
	resolver repository.PlaceResolver,
	streamRepo repository.StreamRepository,
	logger *zap.Logger,
) *DestinationUseCase {
	return &DestinationUseCase{
		destRepo:   destRepo,
		resolver:   resolver,
		streamRepo: streamRepo,
		logger:     logger,
	}
}

func looksLikePlaceID(s string) bool {
	return strings.HasPrefix(s, placeIDPrefix) && !strings.ContainsAny(s, " \t")
}

// Resolve находит место по id или по тексту
func (uc *DestinationUseCase) Resolve(ctx context.Context, query string) (*domain.Destination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ErrInvalidRequest.WithMessage("destination is required")
	}
	if looksLikePlaceID(query) {
		return uc.Get(ctx, query)
	}
	if uc.resolver == nil {
		return nil, errors.ErrDestinationNotFound.WithMessage("no place matches %q", query)
	}

	places, err := uc.resolver.Search(ctx, query)
	if err != nil {
		uc.logger.Error("Place search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	if len(places) == 0 {
		return nil, errors.ErrDestinationNotFound.WithMessage("no place matches %q", query)
	}
	return uc.ensure(ctx, &places[0])
}

// Get возвращает место из каталога, при отсутствии запрашивает Place Resolver
func (uc *DestinationUseCase) Get(ctx context.Context, id string) (*domain.Destination, error) {
	dest, err := uc.destRepo.GetByID(ctx, id)
	if err == nil {
		return dest, nil
	}
	if errors.KindOf(err) != errors.CodeNotFound || uc.resolver == nil {
		return nil, err
	}
	details, err := uc.resolver.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.ensure(ctx, details)
}

// Search - сырые результаты внешнего поиска
func (uc *DestinationUseCase) Search(ctx context.Context, query string) ([]domain.PlaceDetails, error) {
	if uc.resolver == nil {
		return []domain.PlaceDetails{}, nil
	}
	return uc.resolver.Search(ctx, query)
}

// PlaceInfo - записи каталога для пунктов снимка; ошибка не критична
func (uc *DestinationUseCase) PlaceInfo(ctx context.Context, ids []string) map[string]domain.Destination {
	if len(ids) == 0 {
		return nil
	}
	places, err := uc.destRepo.GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Warn("Failed to load place info", zap.Int("count", len(ids)), zap.Error(err))
		return nil
	}
	return places
}

// ensure сохраняет место в каталоге; новое место публикуется для расчёта эмбеддинга
func (uc *DestinationUseCase) ensure(ctx context.Context, details *domain.PlaceDetails) (*domain.Destination, error) {
	dest := details.ToDestination()
	created, err := uc.destRepo.Upsert(ctx, &dest)
	if err != nil {
		uc.logger.Error("Failed to store destination", zap.String("destination_id", dest.ID), zap.Error(err))
		return nil, err
	}
	if created && uc.streamRepo != nil {
		event := domain.DestinationPersistedEvent{
			DestinationID: dest.ID,
			Name:          dest.Name,
			Types:         dest.Types,
			Address:       dest.Address,
			Rating:        dest.Rating,
			Description:   dest.Description,
		}
		if err := uc.streamRepo.PublishToStream(ctx, domain.StreamDestinationPersisted, event); err != nil {
			uc.logger.Warn("Failed to publish destination event", zap.String("destination_id", dest.ID), zap.Error(err))
		}
	}
	return &dest, nil
}
