package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-matcher/internal/matching"
)

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{Type: TypeApplicationCreated}))
}

func TestNewRedisPublisherDefaults(t *testing.T) {
	_, err := NewRedisPublisher(nil, "")
	require.Error(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	p, err := NewRedisPublisher(rdb, "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultChannel, p.Channel())
}

func TestRedisPublisherCloseReleasesClient(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})

	p, err := NewRedisPublisher(rdb, "")
	require.NoError(t, err)
	require.NoError(t, p.Close())

	err = rdb.Ping(context.Background()).Err()
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestPublishReportsUnreachableServer(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer rdb.Close()

	p, err := NewRedisPublisher(rdb, "test")
	require.NoError(t, err)

	err = p.Publish(context.Background(), Event{Type: TypeApplicationCreated})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish application.created")
}

func TestRedisPublisherRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	sub := rdb.Subscribe(ctx, "resume-matcher-test")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	p, err := NewRedisPublisher(rdb, "resume-matcher-test")
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, Event{
		Type:           TypeApplicationCreated,
		ApplicationID:  "app-1",
		JobID:          "job-1",
		ResumeID:       "r-1",
		Score:          85,
		Recommendation: matching.StrongMatch,
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, "app-1", got.ApplicationID)
	assert.Equal(t, matching.StrongMatch, got.Recommendation)
	assert.False(t, got.OccurredAt.IsZero())
}
