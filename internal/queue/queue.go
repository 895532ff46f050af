package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamInvalidations carries stale-instance notifications (mutators
	// push, renderer workers pop).
	StreamInvalidations = "render_invalidations"

	// GroupRenderers is the consumer group for renderer workers.
	GroupRenderers = "renderer_pool"
)

// InvalidationMessage is the payload pushed to the render_invalidations
// stream.
type InvalidationMessage struct {
	ProjectElementID int64  `json:"project_element_id"`
	Reason           string `json:"reason,omitempty"`
}

// Queue manages the Redis invalidation stream.
type Queue struct {
	client *redis.Client
}

// New creates a Queue from a Redis client.
func New(client *redis.Client) *Queue {
	return &Queue{client: client}
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// EnsureStreams creates the consumer group if it doesn't exist.
func (q *Queue) EnsureStreams(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, StreamInvalidations, GroupRenderers, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("create group %s on %s: %w", GroupRenderers, StreamInvalidations, err)
	}
	return nil
}

// PushInvalidation adds a stale-instance notification to the stream.
func (q *Queue) PushInvalidation(ctx context.Context, projectElementID int64, reason string) (string, error) {
	result, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamInvalidations,
		Values: map[string]any{
			"project_element_id": strconv.FormatInt(projectElementID, 10),
			"reason":             reason,
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("push invalidation: %w", err)
	}
	return result, nil
}

// ReadInvalidation reads one invalidation from the stream (blocking).
func (q *Queue) ReadInvalidation(ctx context.Context, consumer string) (*InvalidationMessage, string, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    GroupRenderers,
		Consumer: consumer,
		Streams:  []string{StreamInvalidations, ">"},
		Count:    1,
		Block:    0,
	}).Result()
	if err != nil {
		return nil, "", fmt.Errorf("read invalidation: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			inv := &InvalidationMessage{
				ProjectElementID: getInt64(msg.Values, "project_element_id"),
				Reason:           getString(msg.Values, "reason"),
			}
			return inv, msg.ID, nil
		}
	}
	return nil, "", fmt.Errorf("no messages")
}

// Ack acknowledges a processed invalidation.
func (q *Queue) Ack(ctx context.Context, msgID string) error {
	return q.client.XAck(ctx, StreamInvalidations, GroupRenderers, msgID).Err()
}

// Status returns the invalidation stream length.
func (q *Queue) Status(ctx context.Context) (int64, error) {
	return q.client.XLen(ctx, StreamInvalidations).Result()
}

func getString(values map[string]any, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt64(values map[string]any, key string) int64 {
	n, _ := strconv.ParseInt(getString(values, key), 10, 64)
	return n
}
