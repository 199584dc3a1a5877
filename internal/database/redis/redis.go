package redis

import (
	"context"
	"log"
	"time"

	"github.com/RuvimboRue/DevsKonnekt/internal/config"

	"github.com/redis/go-redis/v9"
)

// Connect opens and verifies a Redis client for the webhook event ledger.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Error pinging Redis: %v", err)
		return nil, err
	}

	log.Printf("Successfully connected to Redis at %s", cfg.Address)
	return client, nil
}
