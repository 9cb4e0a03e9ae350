package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckinNotice is published after a successful attendance append so the
// audit worker can record it off the request path. It carries no photo or
// email; the receipt shown to the participant is separate.
type CheckinNotice struct {
	EventID     string `json:"event_id"`
	EventName   string `json:"event_name"`
	RegNumber   string `json:"reg_number"`
	ArrivalTime string `json:"arrival_time"`
}

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, notice CheckinNotice) error
	Consume(ctx context.Context) (<-chan CheckinNotice, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan CheckinNotice
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan CheckinNotice, size)}
}

// Publish enqueues a notice.
func (q *InMemory) Publish(ctx context.Context, notice CheckinNotice) error {
	select {
	case q.ch <- notice:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan CheckinNotice, error) {
	out := make(chan CheckinNotice)
	go func() {
		defer close(out)
		for {
			select {
			case notice := <-q.ch:
				out <- notice
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a Redis list-backed queue with JSON payloads.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "attendance:checkins"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a notice.
func (q *RedisQueue) Publish(ctx context.Context, notice CheckinNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Consume streams notices using BRPOP. Malformed payloads are skipped.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan CheckinNotice, error) {
	out := make(chan CheckinNotice)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var notice CheckinNotice
				if err := json.Unmarshal([]byte(res[1]), &notice); err == nil {
					out <- notice
				}
			}
		}
	}()
	return out, nil
}
