package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/fakeso/internal/utils"
)

func NewRedisClient(ctx context.Context, cfg utils.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisRelay publishes events through a Redis channel so every server instance
// subscribed to it delivers them to its own local subscribers.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   Broadcaster
	logger  *zap.Logger
	timeout time.Duration

	subscribed atomic.Bool
	wg         sync.WaitGroup
}

func NewRedisRelay(client *redis.Client, channel string, local Broadcaster, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  logger,
		timeout: 2 * time.Second,
	}
}

// Publish hands the event to Redis in the background. While this instance is not
// subscribed to the channel, or if Redis rejects the event, it is delivered to the
// local subscribers directly.
func (r *RedisRelay) Publish(event string, payload any) {
	frame, err := encode(event, payload)
	if err != nil {
		r.logger.Warn("drop event", zap.String("event", event), zap.Error(err))
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		err := r.client.Publish(ctx, r.channel, frame).Err()
		switch {
		case err != nil:
			r.logger.Warn("redis publish failed; delivering locally",
				zap.String("event", event),
				zap.String("channel", r.channel),
				zap.Error(err))
		case r.subscribed.Load():
			return
		default:
			r.logger.Debug("relay not subscribed; delivering locally", zap.String("event", event))
		}
		r.local.Broadcast(frame)
	}()
}

// Subscribed reports whether Run is currently receiving from the relay channel.
func (r *RedisRelay) Subscribed() bool {
	return r.subscribed.Load()
}

// Run forwards every frame received on the relay channel to the local hub until
// ctx is cancelled or the subscription ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}
	r.subscribed.Store(true)
	defer r.subscribed.Store(false)
	r.logger.Info("redis relay subscribed", zap.String("channel", r.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				r.logger.Warn("redis relay channel closed", zap.String("channel", r.channel))
				return nil
			}
			r.local.Broadcast([]byte(msg.Payload))
		}
	}
}

// Wait blocks until in-flight publishes have finished.
func (r *RedisRelay) Wait() {
	r.wg.Wait()
}
