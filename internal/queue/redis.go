package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trade-match/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Task is one queued matching run.
type Task struct {
	JobID   uuid.UUID `json:"job_id"`
	Attempt int       `json:"attempt"`
}

type RedisQueue struct {
	client *redis.Client
	queue  string
}

func NewRedisQueue(cfg config.RedisConfig, queueName string) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})
	return &RedisQueue{client: client, queue: queueName}
}

func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	b, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.queue, b).Err()
}

// Dequeue blocks until a task is available or the context is cancelled.
func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	vals, err := q.client.BRPop(ctx, 0, q.queue).Result()
	if err != nil {
		return Task{}, err
	}
	if len(vals) < 2 {
		return Task{}, fmt.Errorf("unexpected BRPop response: %v", vals)
	}

	var task Task
	if err := json.Unmarshal([]byte(vals[1]), &task); err != nil {
		return Task{}, fmt.Errorf("invalid task payload: %w", err)
	}
	return task, nil
}

// AcquireRunLock takes a per-job lock so two concurrent triggers for the
// same job cannot both write matches. The TTL bounds how long a crashed
// worker can hold the lock.
func (q *RedisQueue) AcquireRunLock(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return q.client.SetNX(ctx, runLockKey(jobID), "1", ttl).Result()
}

func (q *RedisQueue) ReleaseRunLock(ctx context.Context, jobID uuid.UUID) error {
	return q.client.Del(ctx, runLockKey(jobID)).Err()
}

func runLockKey(jobID uuid.UUID) string {
	return "matching:lock:" + jobID.String()
}
