package domain

import "encoding/json"

// Stream names
const (
	StreamDestinationPersisted = "stream:destination:persisted"
	StreamEmbeddingUpdated     = "stream:embedding:updated"
)

// DestinationPersistedEvent - место сохранено в каталоге, нужен (пере)расчёт эмбеддинга
type DestinationPersistedEvent struct {
	DestinationID string          `json:"destination_id"`
	Name          string          `json:"name"`
	Types         []string        `json:"types,omitempty"`
	Address       string          `json:"address,omitempty"`
	Rating        *float64        `json:"rating,omitempty"`
	Description   string          `json:"description,omitempty"`
	Duration      json.RawMessage `json:"duration,omitempty"`
}

// EmbeddingUpdatedEvent - эмбеддинги обновлены, индекс нужно пересобрать
type EmbeddingUpdatedEvent struct {
	DestinationIDs []string `json:"destination_ids"`
	ModelVersion   string   `json:"model_version"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
