// Package publisher announces completed exports on a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/gridiron/internal/model"
)

// ExportStream receives one entry per completed export.
const ExportStream = "exports.completed.nfl"

// DefaultMaxLen caps the stream approximately.
const DefaultMaxLen = 1000

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client streamAdder
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return newPublisher(client, ExportStream)
}

func newPublisher(client streamAdder, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: DefaultMaxLen}
}

// Name identifies the notifier in logs.
func (p *RedisStreamPublisher) Name() string {
	return "redis-stream"
}

// NotifyExport appends the event to the export stream.
func (p *RedisStreamPublisher) NotifyExport(ctx context.Context, event model.ExportEvent) error {
	args, err := exportArgs(p.stream, p.maxLen, event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func exportArgs(stream string, maxLen int64, event model.ExportEvent) (*redis.XAddArgs, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	ts := event.CompletedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"season":    event.Season,
			"timestamp": ts.Unix(),
		},
	}, nil
}
