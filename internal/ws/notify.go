package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MatchesReadyEvent struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

// MatchNotifier publishes match-ready events onto a hub. It satisfies
// the matcher's Notifier interface.
type MatchNotifier struct {
	hub *Hub
}

func NewMatchNotifier(hub *Hub) *MatchNotifier {
	return &MatchNotifier{hub: hub}
}

func (n *MatchNotifier) NotifyMatchesReady(jobID uuid.UUID, count int) {
	if n == nil || n.hub == nil || jobID == uuid.Nil {
		return
	}

	evt := MatchesReadyEvent{
		Type:      "matches_ready",
		JobID:     jobID.String(),
		Count:     count,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.Publish(jobID.String(), b)
}
