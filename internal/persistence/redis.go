package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bart-incident-bot/internal/config"
)

const redisPingTimeout = 3 * time.Second

// Keyspace is the prefix every Redis key is written under.
type Keyspace string

// Key joins the namespace and parts with ':'. Empty parts are skipped.
func (k Keyspace) Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if ns := strings.Trim(string(k), ":"); ns != "" {
		segments = append(segments, ns)
	}
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}

// Redis holds the client behind user tokens and the directory cache, and the
// keyspace both write under.
type Redis struct {
	Client *redis.Client
	Keys   Keyspace
}

// NewRedis builds the client. An unreachable server is logged, not fatal.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	r := &Redis{Client: client, Keys: Keyspace(cfg.KeyPrefix)}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("redis ready", zap.String("addr", cfg.Addr), zap.String("keyspace", string(r.Keys)))
	}
	return r
}

// Ping is used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}
