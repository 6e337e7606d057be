// Package events publishes application lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	TypeApplicationCreated = "application.created"
	DefaultChannel         = TypeApplicationCreated
)

type Event struct {
	Type           string                  `json:"type"`
	ApplicationID  string                  `json:"applicationId"`
	JobID          string                  `json:"jobId"`
	ResumeID       string                  `json:"resumeId"`
	Score          int                     `json:"score"`
	Recommendation matching.Recommendation `json:"recommendation"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// RedisPublisher sends events as JSON messages on a pub/sub channel.
type RedisPublisher struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisPublisher(rdb redis.UniversalClient, channel string) (*RedisPublisher, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	if channel = strings.TrimSpace(channel); channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Close releases the underlying redis client.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
