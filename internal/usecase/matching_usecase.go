package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"trade-match/internal/domain/job"
	"trade-match/internal/domain/match"
	"trade-match/internal/domain/matching"
	"trade-match/internal/domain/worker"
	"trade-match/internal/llm"
	"trade-match/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrNoWorkersFound    = errors.New("no active workers for trade")
	ErrNoEligibleWorkers = errors.New("no eligible workers")
	ErrNoQuotesGenerated = errors.New("no quotes generated")
	ErrInternal          = errors.New("internal error")
)

const (
	// cacheWindow bounds how far back the similarity cache looks at the
	// client's own jobs.
	cacheWindow = 24 * time.Hour

	cacheReasoningSuffix = " (based on a quote for a similar recent job)"
)

// TradeClassifier decides a job's trade category.
type TradeClassifier interface {
	Classify(ctx context.Context, title, description string) (worker.Trade, error)
}

// QuoteGenerator prices one worker against one job.
type QuoteGenerator interface {
	Generate(ctx context.Context, j job.Job, w worker.Worker, profile *worker.Profile, distanceMiles *float64) (llm.Quote, error)
}

type MatchingUsecase interface {
	MatchJobToWorkers(ctx context.Context, jobID uuid.UUID) (int, error)
}

type Matching struct {
	jobs       repository.JobRepository
	workers    repository.WorkerRepository
	profiles   repository.WorkerProfileRepository
	matches    repository.MatchRepository
	classifier TradeClassifier
	quoter     QuoteGenerator
	logger     *log.Logger
	now        func() time.Time
}

func NewMatchingUsecase(
	jobs repository.JobRepository,
	workers repository.WorkerRepository,
	profiles repository.WorkerProfileRepository,
	matches repository.MatchRepository,
	classifier TradeClassifier,
	quoter QuoteGenerator,
	logger *log.Logger,
) *Matching {
	return &Matching{
		jobs:       jobs,
		workers:    workers,
		profiles:   profiles,
		matches:    matches,
		classifier: classifier,
		quoter:     quoter,
		logger:     logger,
		now:        time.Now,
	}
}

// MatchJobToWorkers runs the full matching pipeline for one job and
// returns how many matches were persisted.
func (u *Matching) MatchJobToWorkers(ctx context.Context, jobID uuid.UUID) (int, error) {
	if jobID == uuid.Nil {
		return 0, ErrJobNotFound
	}

	j, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return 0, ErrJobNotFound
		}
		return 0, ErrInternal
	}

	trade, err := u.classifier.Classify(ctx, j.Title, j.Description)
	if err != nil {
		// Classification degrades to the default trade, never aborts.
		u.logf("[Matcher] classification failed, using default trade | job=%s err=%v", j.ID, err)
		trade = worker.DefaultTrade
	}

	if count, hit, err := u.tryCache(ctx, j); err != nil {
		return 0, err
	} else if hit {
		u.logf("[Matcher] similarity cache hit | job=%s matches=%d", j.ID, count)
		return count, nil
	}

	candidates, err := u.workers.ListActiveByTrade(ctx, trade)
	if err != nil {
		return 0, ErrInternal
	}
	if len(candidates) == 0 {
		return 0, ErrNoWorkersFound
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, w := range candidates {
		ids = append(ids, w.ID)
	}
	profiles, err := u.profiles.FindByWorkerIDs(ctx, ids)
	if err != nil {
		return 0, ErrInternal
	}

	ranked := matching.Rank(j, candidates)
	if len(ranked) == 0 {
		return 0, ErrNoEligibleWorkers
	}

	rows := u.generateQuotes(ctx, j, ranked, profiles)
	if len(rows) == 0 {
		return 0, ErrNoQuotesGenerated
	}

	if err := u.matches.InsertBatch(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// tryCache scans the client's jobs from the last 24 hours, most recent
// first, for one whose text overlaps the new job's above the similarity
// threshold and which already has persisted matches. On a hit, that
// job's matches are cloned onto the new job.
func (u *Matching) tryCache(ctx context.Context, j job.Job) (int, bool, error) {
	since := u.now().Add(-cacheWindow)
	recent, err := u.jobs.ListRecentByClient(ctx, j.ClientID, since)
	if err != nil {
		return 0, false, ErrInternal
	}

	for _, candidate := range recent {
		if candidate.Job.ID == j.ID || candidate.MatchCount == 0 {
			continue
		}

		score := matching.TextSimilarity(j.Title, j.Description, candidate.Job.Title, candidate.Job.Description)
		if score <= matching.SimilarityThreshold {
			continue
		}

		prior, err := u.matches.ListByJobID(ctx, candidate.Job.ID)
		if err != nil {
			return 0, false, ErrInternal
		}
		if len(prior) == 0 {
			continue
		}

		cloned := make([]match.Match, 0, len(prior))
		for _, m := range prior {
			clone := m
			clone.ID = uuid.New()
			clone.JobID = j.ID
			clone.Reasoning = m.Reasoning + cacheReasoningSuffix
			clone.Status = match.StatusSuggested
			clone.CreatedAt = u.now().UTC()
			cloned = append(cloned, clone)
		}

		if err := u.matches.InsertBatch(ctx, cloned); err != nil {
			return 0, false, err
		}
		return len(cloned), true, nil
	}

	return 0, false, nil
}

// generateQuotes fans out one quote call per ranked worker and collects
// the successes. A failed call drops that worker only.
func (u *Matching) generateQuotes(ctx context.Context, j job.Job, ranked []matching.Candidate, profiles map[uuid.UUID]worker.Profile) []match.Match {
	results := make([]*match.Match, len(ranked))

	var wg sync.WaitGroup
	for i, candidate := range ranked {
		wg.Add(1)
		go func(i int, c matching.Candidate) {
			defer wg.Done()

			var profile *worker.Profile
			if p, ok := profiles[c.Worker.ID]; ok {
				profile = &p
			}

			quote, err := u.quoter.Generate(ctx, j, c.Worker, profile, c.DistanceMiles)
			if err != nil {
				u.logf("[Matcher] quote failed, dropping worker | job=%s worker=%s err=%v", j.ID, c.Worker.ID, err)
				return
			}

			results[i] = u.buildMatch(j, c, quote)
		}(i, candidate)
	}
	wg.Wait()

	rows := make([]match.Match, 0, len(ranked))
	for _, m := range results {
		if m != nil {
			rows = append(rows, *m)
		}
	}
	return rows
}

func (u *Matching) buildMatch(j job.Job, c matching.Candidate, quote llm.Quote) *match.Match {
	travelCost := matching.TravelCost(c.DistanceMiles, c.Worker.TravelFeePerMile)

	travelMiles := 0.0
	if c.DistanceMiles != nil {
		travelMiles = *c.DistanceMiles
	}

	labour := quote.BaseCost - quote.CalloutFee
	if labour < 0 {
		labour = 0
	}

	// Total cost is always recomputed locally, never trusted from the
	// quote response.
	return &match.Match{
		ID:             uuid.New(),
		JobID:          j.ID,
		WorkerID:       c.Worker.ID,
		Score:          quote.Score,
		Reasoning:      quote.Reasoning,
		EstimatedHours: quote.EstimatedHours,
		EstimatedDays:  quote.EstimatedDays,
		PricingMethod:  quote.PricingMethod,
		BaseCost:       quote.BaseCost,
		TravelCost:     travelCost,
		TotalCost:      quote.BaseCost + travelCost,
		Breakdown: match.CostBreakdown{
			LabourCost:          labour,
			CalloutFee:          quote.CalloutFee,
			EmergencyMultiplier: quote.EmergencyMultiplier,
			TravelMiles:         travelMiles,
			TravelCost:          travelCost,
		},
		Status:    match.StatusSuggested,
		CreatedAt: u.now().UTC(),
	}
}

func (u *Matching) logf(format string, args ...any) {
	if u.logger != nil {
		u.logger.Printf(format, args...)
	}
}
