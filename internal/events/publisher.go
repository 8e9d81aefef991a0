// Package events publishes domain events on Redis pub/sub for other services
// (cache invalidation, notifications) to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ChannelPostingChanged carries a PostingChanged payload per curated posting mutation.
const ChannelPostingChanged = "EVENT_JOB_POSTING_CHANGED"

// Posting mutation actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// PostingChanged is published after a curated posting is created, updated or deleted.
type PostingChanged struct {
	Type   string `json:"type"`
	JobID  string `json:"jobId"`
	Action string `json:"action"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishPostingChanged(ctx context.Context, jobID, action string) error
}

// postingChangedPayload encodes the message body sent on ChannelPostingChanged.
func postingChangedPayload(jobID, action string) ([]byte, error) {
	payload, err := json.Marshal(PostingChanged{
		Type:   ChannelPostingChanged,
		JobID:  jobID,
		Action: action,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return payload, nil
}

// RedisPublisher publishes on Redis channels.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher backed by rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishPostingChanged publishes on ChannelPostingChanged.
func (p *RedisPublisher) PublishPostingChanged(ctx context.Context, jobID, action string) error {
	payload, err := postingChangedPayload(jobID, action)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, ChannelPostingChanged, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ChannelPostingChanged, err)
	}
	return nil
}
