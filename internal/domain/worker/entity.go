package worker

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Trade string

const (
	TradeElectrician Trade = "electrician"
	TradePlumber     Trade = "plumber"
	TradeCarpenter   Trade = "carpenter"
	TradePainter     Trade = "painter"
	TradeBuilder     Trade = "builder"
	TradeGasEngineer Trade = "gas_engineer"
	TradeRoofer      Trade = "roofer"
	TradePlasterer   Trade = "plasterer"
)

// DefaultTrade is used when trade classification returns a token outside
// the known set.
const DefaultTrade = TradeBuilder

var knownTrades = map[Trade]bool{
	TradeElectrician: true,
	TradePlumber:     true,
	TradeCarpenter:   true,
	TradePainter:     true,
	TradeBuilder:     true,
	TradeGasEngineer: true,
	TradeRoofer:      true,
	TradePlasterer:   true,
}

// ParseTrade normalizes a raw classification token and reports whether it
// belongs to the known trade set.
func ParseTrade(raw string) (Trade, bool) {
	t := Trade(strings.ToLower(strings.TrimSpace(raw)))
	return t, knownTrades[t]
}

// Trades returns the closed trade set in a stable order, for prompt
// construction.
func Trades() []Trade {
	return []Trade{
		TradeElectrician,
		TradePlumber,
		TradeCarpenter,
		TradePainter,
		TradeBuilder,
		TradeGasEngineer,
		TradeRoofer,
		TradePlasterer,
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Worker struct {
	ID               uuid.UUID
	Name             string
	Trade            Trade
	HourlyRate       *float64
	DayRate          *float64
	Latitude         *float64
	Longitude        *float64
	TravelFeePerMile float64
	Status           Status
	CreatedAt        time.Time
}

func (w Worker) HasCoordinates() bool {
	return w.Latitude != nil && w.Longitude != nil
}

// EffectiveDayRate is the rate used for ranking: the day rate when set,
// otherwise eight hours at the hourly rate. The second return is false
// when the worker has neither rate.
func (w Worker) EffectiveDayRate() (float64, bool) {
	if w.DayRate != nil {
		return *w.DayRate, true
	}
	if w.HourlyRate != nil {
		return *w.HourlyRate * 8, true
	}
	return 0, false
}

// CommonJob is a job type a worker prices routinely, captured during the
// onboarding interview.
type CommonJob struct {
	JobType       string  `json:"job_type"`
	TypicalPrice  float64 `json:"typical_price"`
	TypicalHours  float64 `json:"typical_hours"`
	PricingMethod string  `json:"pricing_method"`
}

// Profile holds a worker's structured pricing preferences. At most one
// exists per worker; quote generation tolerates its absence.
type Profile struct {
	WorkerID            uuid.UUID
	CommonJobs          []CommonJob
	EmergencyMultiplier *float64
	CalloutFee          *float64
	PrefersDayRate      bool
	InterviewCompleted  bool
}
