package app

import (
	"context"
	"time"

	"trade-match/internal/config"
	"trade-match/internal/database"
	dbpostgres "trade-match/internal/database/postgres"
	"trade-match/internal/queue"
)

type Container struct {
	Config config.Config
	DB     database.DB
	Queue  *queue.RedisQueue
}

func NewContainer(cfg config.Config) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	q := queue.NewRedisQueue(cfg.Redis, cfg.Matching.QueueName)
	if err := q.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Container{Config: cfg, DB: db, Queue: q}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
