package session

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"parkingconsole/internal/config"
	"parkingconsole/internal/database"
)

// OpenStorage builds the storage named by cfg.SessionBackend.
// The returned close function releases its connections.
func OpenStorage(ctx context.Context, cfg *config.Config) (Storage, func() error, error) {
	switch cfg.SessionBackend {
	case "memory":
		return NewMemoryStorage(), func() error { return nil }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Printf("Session storage: redis at %s", cfg.RedisAddr)
		return NewRedisStorage(client, cfg.SessionDuration), client.Close, nil

	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Printf("Session storage: %s database", cfg.DatabaseType)
		return NewSQLStorage(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported session backend: %s", cfg.SessionBackend)
	}
}
