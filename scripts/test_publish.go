//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trip-planner/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	destinationID := flag.String("id", "ChIJD3uTd9hx5kcR1IQvGfr8dbk", "Destination id")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовое событие
	event := domain.DestinationPersistedEvent{
		DestinationID: *destinationID,
		Name:          "Musée du Louvre",
		Types:         []string{"museum", "tourist_attraction"},
		Address:       "Rue de Rivoli, 75001 Paris, France",
		Rating:        ptr(4.7),
		Description:   "World's largest art museum",
		Duration:      json.RawMessage(`"PT3H"`),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Последний id до публикации: ответ ищем только среди новых сообщений
	lastID := "0"
	if last, err := client.XRevRangeN(ctx, domain.StreamEmbeddingUpdated, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		lastID = last[0].ID
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamDestinationPersisted,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamDestinationPersisted)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Destination: %s (%s)\n", event.Name, event.DestinationID)

	fmt.Printf("\nWaiting for %s...\n", domain.StreamEmbeddingUpdated)

	timeout := time.After(30 * time.Second)
	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for embedding update")
			return
		default:
		}

		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamEmbeddingUpdated, lastID},
			Count:   10,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Printf("read failed: %v", err)
			continue
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var updated domain.EmbeddingUpdatedEvent
				if err := json.Unmarshal([]byte(raw), &updated); err != nil {
					continue
				}
				if slices.Contains(updated.DestinationIDs, event.DestinationID) {
					fmt.Printf("\nEmbedding updated (model %s)\n", updated.ModelVersion)
					return
				}
			}
		}
	}
}
