package job

import (
	"time"

	"github.com/google/uuid"
)

type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyHigh      Urgency = "high"
	UrgencyMedium    Urgency = "medium"
	UrgencyLow       Urgency = "low"
)

// IsUrgent reports whether quote generation should apply a worker's
// emergency multiplier.
func (u Urgency) IsUrgent() bool {
	return u == UrgencyEmergency || u == UrgencyHigh
}

type Job struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Title       string
	Description string
	Urgency     Urgency
	Latitude    *float64
	Longitude   *float64
	CreatedAt   time.Time
}

func (j Job) HasCoordinates() bool {
	return j.Latitude != nil && j.Longitude != nil
}
