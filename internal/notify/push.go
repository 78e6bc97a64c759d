package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const pushChannel = "notifications"

// PushEvent is the real-time payload fanned out to connected clients.
type PushEvent struct {
	UserID  uint   `json:"user_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	RefID   uint   `json:"ref_id,omitempty"`
}

// Publisher pushes events over redis pub/sub. Fire-and-forget: delivery
// failures are logged, never surfaced to the caller.
type Publisher struct {
	redis *redis.Client
	log   *slog.Logger
}

func NewPublisher(rdb *redis.Client, log *slog.Logger) *Publisher {
	return &Publisher{redis: rdb, log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev PushEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("push event marshal failed", "err", err)
		return
	}

	if err := p.redis.Publish(ctx, pushChannel, string(data)).Err(); err != nil {
		p.log.Error("push publish failed", "user_id", ev.UserID, "err", err)
	}
}
