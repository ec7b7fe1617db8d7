package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const matchEventsChannel = "matching:events"

// MatchesReadyEvent crosses the process boundary between the matcher
// worker and the API server, which relays it to websocket subscribers.
type MatchesReadyEvent struct {
	JobID uuid.UUID `json:"job_id"`
	Count int       `json:"count"`
}

// NotifyMatchesReady publishes a finished run. Best-effort: a publish
// failure never fails the run that produced the matches.
func (q *RedisQueue) NotifyMatchesReady(jobID uuid.UUID, count int) {
	b, err := json.Marshal(MatchesReadyEvent{JobID: jobID, Count: count})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = q.client.Publish(ctx, matchEventsChannel, b).Err()
}

// SubscribeMatchesReady delivers events until the context is cancelled.
func (q *RedisQueue) SubscribeMatchesReady(ctx context.Context) <-chan MatchesReadyEvent {
	out := make(chan MatchesReadyEvent, 16)
	sub := q.client.Subscribe(ctx, matchEventsChannel)

	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt MatchesReadyEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					continue
				}
				select {
				case out <- evt:
				default:
				}
			}
		}
	}()

	return out
}
