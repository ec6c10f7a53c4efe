package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrPopTimeout is returned by Pop when no task arrived within the timeout.
var ErrPopTimeout = errors.New("broker pop timed out")

// Broker is the thin transport under the queue: per-kind FIFO lists plus a
// cheap liveness probe. Pop consults keys in the given order, which is how
// kind priority is expressed.
type Broker interface {
	Ping(ctx context.Context) error
	Push(ctx context.Context, key string, value string) error
	Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, string, error)
}

type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBroker) Push(ctx context.Context, key string, value string) error {
	return b.client.LPush(ctx, key, value).Err()
}

// Pop blocks up to timeout on the given keys. LPush plus BRPop keeps each
// list FIFO; BRPop checks keys left to right, so earlier keys win.
func (b *RedisBroker) Pop(ctx context.Context, timeout time.Duration, keys ...string) (string, string, error) {
	res, err := b.client.BRPop(ctx, timeout, keys...).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", "", ErrPopTimeout
		}
		return "", "", err
	}
	if len(res) != 2 {
		return "", "", ErrPopTimeout
	}
	return res[0], res[1], nil
}
