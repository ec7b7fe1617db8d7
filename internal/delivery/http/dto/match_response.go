package dto

import (
	"time"

	"trade-match/internal/domain/match"

	"github.com/google/uuid"
)

type CostBreakdownResponse struct {
	LabourCost          float64  `json:"labour_cost"`
	CalloutFee          float64  `json:"callout_fee"`
	EmergencyMultiplier *float64 `json:"emergency_multiplier,omitempty"`
	TravelMiles         float64  `json:"travel_miles"`
	TravelCost          float64  `json:"travel_cost"`
}

type MatchResponse struct {
	ID             uuid.UUID             `json:"id"`
	JobID          uuid.UUID             `json:"job_id"`
	WorkerID       uuid.UUID             `json:"worker_id"`
	MatchScore     int                   `json:"match_score"`
	Reasoning      string                `json:"reasoning"`
	EstimatedHours *float64              `json:"estimated_hours,omitempty"`
	EstimatedDays  *float64              `json:"estimated_days,omitempty"`
	PricingMethod  string                `json:"pricing_method"`
	BaseCost       float64               `json:"base_cost"`
	TravelCost     float64               `json:"travel_cost"`
	TotalCost      float64               `json:"total_cost"`
	Breakdown      CostBreakdownResponse `json:"cost_breakdown"`
	Status         string                `json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
}

func NewMatchResponse(m match.Match) MatchResponse {
	return MatchResponse{
		ID:             m.ID,
		JobID:          m.JobID,
		WorkerID:       m.WorkerID,
		MatchScore:     m.Score,
		Reasoning:      m.Reasoning,
		EstimatedHours: m.EstimatedHours,
		EstimatedDays:  m.EstimatedDays,
		PricingMethod:  string(m.PricingMethod),
		BaseCost:       m.BaseCost,
		TravelCost:     m.TravelCost,
		TotalCost:      m.TotalCost,
		Breakdown: CostBreakdownResponse{
			LabourCost:          m.Breakdown.LabourCost,
			CalloutFee:          m.Breakdown.CalloutFee,
			EmergencyMultiplier: m.Breakdown.EmergencyMultiplier,
			TravelMiles:         m.Breakdown.TravelMiles,
			TravelCost:          m.Breakdown.TravelCost,
		},
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

type MatchTriggerResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Queued bool      `json:"queued"`
}

type UpdateMatchStatusRequest struct {
	Status string `json:"status"`
}
