package router

import (
	"net"
	"strconv"

	"github.com/gofiber/storage/redis"

	"github.com/yaguita/iglesia-backend/internal/pkg/cache"
	"github.com/yaguita/iglesia-backend/internal/pkg/env"
)

// NewLimiterStorage returns a Redis storage for the rate limiter on database 1
// (the cache uses DB 0), reusing the address of the cache client.
func NewLimiterStorage() *redis.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if cacheClient := cache.GetClient(); cacheClient != nil {
		if h, p, err := net.SplitHostPort(cacheClient.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := cacheClient.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
