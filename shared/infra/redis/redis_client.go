package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gridcert/exchange/shared/config"
)

type Logger interface {
	Info(ctx context.Context, message string, fields ...zap.Field)
	Error(ctx context.Context, message string, fields ...zap.Field)
}

type RedisClient interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

type client struct {
	rdb               *goredis.Client
	logger            Logger
	connectionTimeout time.Duration
}

func NewClient(cfg config.RedisConfig, logger Logger) *client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:            cfg.Address(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		DialTimeout:     cfg.ConnectionTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
	})

	return &client{
		rdb:               rdb,
		logger:            logger,
		connectionTimeout: cfg.ConnectionTimeout,
	}
}

func (c *client) withTimeout(ctx context.Context, command string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectionTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		c.logger.Error(ctx, "redis command failed",
			zap.String("command", command),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (c *client) Incr(ctx context.Context, key string) (int64, error) {
	var count int64
	err := c.withTimeout(ctx, "INCR", func(ctx context.Context) error {
		value, err := c.rdb.Incr(ctx, key).Result()
		if err != nil {
			return err
		}

		count = value
		return nil
	})

	return count, err
}

func (c *client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.withTimeout(ctx, "EXPIRE", func(ctx context.Context) error {
		return c.rdb.Expire(ctx, key, expiration).Err()
	})
}

func (c *client) Ping(ctx context.Context) error {
	return c.withTimeout(ctx, "PING", func(ctx context.Context) error {
		return c.rdb.Ping(ctx).Err()
	})
}

func (c *client) Close() error {
	return c.rdb.Close()
}
