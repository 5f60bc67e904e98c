package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/pkg/errors"
)

const conversationKeyPrefix = "conversation:"

type conversationRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewConversationStateRepository - состояние диалога в Redis. ttl <= 0 хранит без срока.
// Каждая запись продлевает срок.
func NewConversationStateRepository(redis *Redis, ttl time.Duration) repository.ConversationStateRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &conversationRepository{
		client: redis.Client(),
		ttl:    ttl,
		logger: redis.logger,
	}
}

func conversationKey(roomID string) string {
	return conversationKeyPrefix + roomID
}

func (r *conversationRepository) Get(ctx context.Context, roomID string) (*domain.ConversationState, error) {
	data, err := r.client.Get(ctx, conversationKey(roomID)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return &domain.ConversationState{}, nil
	}
	if err != nil {
		r.logger.Error("Failed to load conversation state", zap.String("room_id", roomID), zap.Error(err))
		return nil, errors.ErrCacheError.Wrap(err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		// битое состояние не должно блокировать комнату
		r.logger.Warn("Discarding corrupt conversation state", zap.String("room_id", roomID), zap.Error(err))
		return &domain.ConversationState{}, nil
	}
	return &state, nil
}

func (r *conversationRepository) Save(ctx context.Context, roomID string, state *domain.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.ErrInternalServer.Wrap(err)
	}
	if err := r.client.Set(ctx, conversationKey(roomID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save conversation state", zap.String("room_id", roomID), zap.Error(err))
		return errors.ErrCacheError.Wrap(err)
	}
	return nil
}

func (r *conversationRepository) Clear(ctx context.Context, roomID string) error {
	if err := r.client.Del(ctx, conversationKey(roomID)).Err(); err != nil {
		return errors.ErrCacheError.Wrap(err)
	}
	return nil
}
