package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"trade-match/internal/domain/job"
	"trade-match/internal/domain/match"
	"trade-match/internal/domain/worker"
)

// Fallbacks applied when the quote response omits a field.
const (
	defaultMatchScore = 75
	defaultReasoning  = "This worker is available and suited to the job based on their trade and rates."
)

// Quote is a single worker's priced quote for a job. TotalCost is not
// part of a quote; the caller always computes it from base and travel.
type Quote struct {
	PricingMethod       match.PricingMethod
	EstimatedHours      *float64
	EstimatedDays       *float64
	BaseCost            float64
	Score               int
	Reasoning           string
	CalloutFee          float64
	EmergencyMultiplier *float64
}

// Quoter asks the LLM to price one worker against one job.
type Quoter struct {
	model   textGenerator
	timeout time.Duration
	logger  *log.Logger
}

func NewQuoter(model textGenerator, timeout time.Duration, logger *log.Logger) *Quoter {
	return &Quoter{model: model, timeout: timeout, logger: logger}
}

const quoteSystemPrompt = `You are a pricing assistant for a property maintenance marketplace.
Estimate how long the job will take, choose a pricing method (hourly or daily), and compute a base cost from the worker's rates.
Apply the worker's callout fee if one is given. If the job is marked urgent, apply the worker's emergency multiplier to the labour portion.
Score how well this worker matches the job from 0 to 100.
The reasoning must not mention any monetary figures.
Respond with a single JSON object:
{"pricing_method":"hourly"|"daily","estimated_hours":number,"estimated_days":number,"base_cost":number,"match_score":number,"reasoning":"...","callout_fee":number,"emergency_multiplier":number}
Populate estimated_hours for hourly pricing and estimated_days for daily pricing, never both.`

// Generate requests a quote and parses the first JSON object in the
// response text. A call failure is returned to the caller, which drops
// the worker rather than failing the whole run.
func (q *Quoter) Generate(ctx context.Context, j job.Job, w worker.Worker, profile *worker.Profile, distanceMiles *float64) (Quote, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	raw, err := q.model.GenerateWithSystem(ctx, quoteSystemPrompt, buildQuotePrompt(j, w, profile, distanceMiles))
	if err != nil {
		return Quote{}, fmt.Errorf("quote generation: %w", err)
	}

	quote, err := parseQuote(raw)
	if err != nil {
		if q.logger != nil {
			q.logger.Printf("[Quoter] unparsable quote response | worker=%s err=%v", w.ID, err)
		}
		return Quote{}, err
	}
	return quote, nil
}

func buildQuotePrompt(j job.Job, w worker.Worker, profile *worker.Profile, distanceMiles *float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Job: %s\n", j.Title)
	fmt.Fprintf(&b, "Description: %s\n", j.Description)
	fmt.Fprintf(&b, "Urgency: %s", j.Urgency)
	if j.Urgency.IsUrgent() {
		b.WriteString(" (urgent: apply the emergency multiplier)")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Worker trade: %s\n", w.Trade)
	if w.HourlyRate != nil {
		fmt.Fprintf(&b, "Hourly rate: %.2f\n", *w.HourlyRate)
	}
	if w.DayRate != nil {
		fmt.Fprintf(&b, "Day rate: %.2f\n", *w.DayRate)
	}
	if distanceMiles != nil {
		fmt.Fprintf(&b, "Distance to job: %.1f miles\n", *distanceMiles)
	}

	if profile != nil {
		if profile.CalloutFee != nil {
			fmt.Fprintf(&b, "Callout fee: %.2f\n", *profile.CalloutFee)
		}
		if profile.EmergencyMultiplier != nil {
			fmt.Fprintf(&b, "Emergency multiplier: %.2f\n", *profile.EmergencyMultiplier)
		}
		if profile.PrefersDayRate {
			b.WriteString("The worker prefers day-rate pricing.\n")
		}
		for _, cj := range profile.CommonJobs {
			fmt.Fprintf(&b, "Common job: %s, typical price %.2f, typical hours %.1f (%s)\n",
				cj.JobType, cj.TypicalPrice, cj.TypicalHours, cj.PricingMethod)
		}
	}

	return b.String()
}

type quoteResponse struct {
	PricingMethod       *string  `json:"pricing_method"`
	EstimatedHours      *float64 `json:"estimated_hours"`
	EstimatedDays       *float64 `json:"estimated_days"`
	BaseCost            *float64 `json:"base_cost"`
	MatchScore          *int     `json:"match_score"`
	Reasoning           *string  `json:"reasoning"`
	CalloutFee          *float64 `json:"callout_fee"`
	EmergencyMultiplier *float64 `json:"emergency_multiplier"`
}

// parseQuote extracts the first JSON object from the response text and
// applies fixed defaults for absent fields. It also enforces that
// exactly one of hours/days survives, matching the pricing method.
func parseQuote(raw string) (Quote, error) {
	body, ok := firstJSONObject(raw)
	if !ok {
		return Quote{}, fmt.Errorf("no JSON object in quote response")
	}

	var resp quoteResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return Quote{}, fmt.Errorf("parse quote response: %w", err)
	}

	quote := Quote{
		PricingMethod: match.PricingHourly,
		Score:         defaultMatchScore,
		Reasoning:     defaultReasoning,
	}

	if resp.PricingMethod != nil && match.PricingMethod(strings.ToLower(strings.TrimSpace(*resp.PricingMethod))) == match.PricingDaily {
		quote.PricingMethod = match.PricingDaily
	}
	if resp.BaseCost != nil && *resp.BaseCost >= 0 {
		quote.BaseCost = *resp.BaseCost
	}
	if resp.MatchScore != nil {
		score := *resp.MatchScore
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		quote.Score = score
	}
	if resp.Reasoning != nil && strings.TrimSpace(*resp.Reasoning) != "" {
		quote.Reasoning = strings.TrimSpace(*resp.Reasoning)
	}
	if resp.CalloutFee != nil && *resp.CalloutFee > 0 {
		quote.CalloutFee = *resp.CalloutFee
	}
	if resp.EmergencyMultiplier != nil && *resp.EmergencyMultiplier > 1 {
		quote.EmergencyMultiplier = resp.EmergencyMultiplier
	}

	one := 1.0
	switch quote.PricingMethod {
	case match.PricingDaily:
		if resp.EstimatedDays != nil && *resp.EstimatedDays > 0 {
			quote.EstimatedDays = resp.EstimatedDays
		} else {
			quote.EstimatedDays = &one
		}
	default:
		if resp.EstimatedHours != nil && *resp.EstimatedHours > 0 {
			quote.EstimatedHours = resp.EstimatedHours
		} else {
			quote.EstimatedHours = &one
		}
	}

	return quote, nil
}

// firstJSONObject scans for the first balanced {...} block, tolerating
// braces inside string literals.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
