package match

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSuggested Status = "suggested"
	StatusAssigned  Status = "assigned"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

// ValidTransition reports whether a lifecycle move is allowed. Matches are
// created as suggested; acceptance flows move them forward.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusSuggested:
		return to == StatusAssigned || to == StatusDeclined
	case StatusAssigned:
		return to == StatusCompleted || to == StatusDeclined
	default:
		return false
	}
}

type PricingMethod string

const (
	PricingHourly PricingMethod = "hourly"
	PricingDaily  PricingMethod = "daily"
)

// CostBreakdown is the structured view of how a quote was assembled.
// TotalCost is always recomputed as BaseCost + TravelCost, never taken
// from the quote service.
type CostBreakdown struct {
	LabourCost          float64  `json:"labour_cost"`
	CalloutFee          float64  `json:"callout_fee"`
	EmergencyMultiplier *float64 `json:"emergency_multiplier,omitempty"`
	TravelMiles         float64  `json:"travel_miles"`
	TravelCost          float64  `json:"travel_cost"`
}

type Match struct {
	ID             uuid.UUID
	JobID          uuid.UUID
	WorkerID       uuid.UUID
	Score          int
	Reasoning      string
	EstimatedHours *float64
	EstimatedDays  *float64
	PricingMethod  PricingMethod
	BaseCost       float64
	TravelCost     float64
	TotalCost      float64
	Breakdown      CostBreakdown
	Status         Status
	CreatedAt      time.Time
}
