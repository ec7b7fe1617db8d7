package matching

import (
	"math"
	"sort"

	"trade-match/internal/domain/job"
	"trade-match/internal/domain/worker"
)

const (
	// MaxMatches caps how many workers one matching run may select.
	MaxMatches = 3

	// FreeTravelMiles is the distance a worker covers at no charge.
	FreeTravelMiles = 5.0

	earthRadiusMiles = 3959.0
)

// Candidate is a worker annotated with its distance from the job.
// Distance is nil when either side lacks coordinates.
type Candidate struct {
	Worker        worker.Worker
	DistanceMiles *float64
}

// HaversineMiles returns the great-circle distance between two points.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance computes the job-to-worker distance, or nil when coordinates
// are missing on either side.
func Distance(j job.Job, w worker.Worker) *float64 {
	if !j.HasCoordinates() || !w.HasCoordinates() {
		return nil
	}
	d := HaversineMiles(*j.Latitude, *j.Longitude, *w.Latitude, *w.Longitude)
	return &d
}

// TravelCost charges nothing for the first FreeTravelMiles and the
// per-mile fee beyond that. A nil distance means the job is assumed
// local and travels free.
func TravelCost(distanceMiles *float64, feePerMile float64) float64 {
	if distanceMiles == nil {
		return 0
	}
	billable := *distanceMiles - FreeTravelMiles
	if billable <= 0 {
		return 0
	}
	return billable * feePerMile
}

// Rank orders candidates by distance (known before unknown, nearer
// first), then effective day rate ascending (workers with no rate last),
// then newest worker first, and returns at most MaxMatches of them.
// Distance is never used to exclude a worker, only to order.
func Rank(j job.Job, workers []worker.Worker) []Candidate {
	candidates := make([]Candidate, 0, len(workers))
	for _, w := range workers {
		candidates = append(candidates, Candidate{
			Worker:        w,
			DistanceMiles: Distance(j, w),
		})
	}

	sort.SliceStable(candidates, func(i, k int) bool {
		a, b := candidates[i], candidates[k]

		if a.DistanceMiles != nil && b.DistanceMiles == nil {
			return true
		}
		if a.DistanceMiles == nil && b.DistanceMiles != nil {
			return false
		}
		if a.DistanceMiles != nil && b.DistanceMiles != nil && *a.DistanceMiles != *b.DistanceMiles {
			return *a.DistanceMiles < *b.DistanceMiles
		}

		aRate, aOK := a.Worker.EffectiveDayRate()
		bRate, bOK := b.Worker.EffectiveDayRate()
		if aOK && !bOK {
			return true
		}
		if !aOK && bOK {
			return false
		}
		if aOK && bOK && aRate != bRate {
			return aRate < bRate
		}

		return a.Worker.CreatedAt.After(b.Worker.CreatedAt)
	})

	if len(candidates) > MaxMatches {
		candidates = candidates[:MaxMatches]
	}
	return candidates
}
