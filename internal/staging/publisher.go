package staging

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"listingstudio.app/studio/internal/model"
)

const statusStreamMaxLen = 2000

// StatusPublisher receives every task transition of a run.
type StatusPublisher interface {
	Publish(ctx context.Context, sessionID string, runID int64, task model.StagingTask) error
}

// StreamName is the redis stream carrying status for one session.
func StreamName(prefix, sessionID string) string {
	return fmt.Sprintf("%s:session-%s", prefix, sessionID)
}

type redisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher appends transitions to a capped redis stream. A nil
// client yields a publisher that drops everything.
func NewRedisPublisher(client *redis.Client, prefix string) StatusPublisher {
	if client == nil {
		return NopPublisher{}
	}
	return &redisPublisher{client: client, prefix: prefix}
}

func (p *redisPublisher) Publish(ctx context.Context, sessionID string, runID int64, task model.StagingTask) error {
	values := map[string]any{
		"run_id": runID,
		"index":  task.Index,
		"photo":  task.Source.Name,
		"state":  string(task.State),
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	if task.Error != "" {
		values["error"] = task.Error
	}
	if task.Enhanced != nil {
		values["mime_type"] = task.Enhanced.MimeType
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName(p.prefix, sessionID),
		MaxLen: statusStreamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, int64, model.StagingTask) error {
	return nil
}
