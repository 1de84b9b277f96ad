package cache

import (
	"context"
	"fmt"

	"github.com/Souleilune/TechSyncDevVersion-sub000/pkg/logger"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the configured backend. Redis is pinged before use.
func New(ctx context.Context, cfg Config, log logger.Logger) (ProjectCache, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendNone:
		return NewDisabled(), nil
	case BackendRedis:
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, WithRedisLogger(log))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
