package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Backend string // "file" (default), "memory" or "redis"
	Path    string // file backend: path of the JSON cache document
	Prefix  string // redis backend: key prefix
}

func NewStore(cfg Config, redisClient *redis.Client, logger *zap.Logger) Store {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	case "memory":
		return NewMemoryStore()
	default:
		return NewFileStore(cfg.Path, logger)
	}
}
