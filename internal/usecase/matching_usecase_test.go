package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trade-match/internal/domain/job"
	"trade-match/internal/domain/match"
	"trade-match/internal/domain/worker"
	"trade-match/internal/llm"
	"trade-match/internal/repository"

	"github.com/google/uuid"
)

func fp(v float64) *float64 { return &v }

type mockJobRepo struct {
	jobs   map[uuid.UUID]job.Job
	recent []repository.RecentJob
}

func (m *mockJobRepo) FindByID(_ context.Context, jobID uuid.UUID) (job.Job, error) {
	j, ok := m.jobs[jobID]
	if !ok {
		return job.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

func (m *mockJobRepo) ListRecentByClient(context.Context, uuid.UUID, time.Time) ([]repository.RecentJob, error) {
	return m.recent, nil
}

type mockWorkerRepo struct {
	workers    []worker.Worker
	queried    worker.Trade
	queriedSet bool
}

func (m *mockWorkerRepo) ListActiveByTrade(_ context.Context, trade worker.Trade) ([]worker.Worker, error) {
	m.queried = trade
	m.queriedSet = true
	return m.workers, nil
}

type mockProfileRepo struct {
	profiles map[uuid.UUID]worker.Profile
}

func (m *mockProfileRepo) FindByWorkerIDs(context.Context, []uuid.UUID) (map[uuid.UUID]worker.Profile, error) {
	if m.profiles == nil {
		return map[uuid.UUID]worker.Profile{}, nil
	}
	return m.profiles, nil
}

type mockMatchRepo struct {
	byJob     map[uuid.UUID][]match.Match
	inserted  []match.Match
	insertErr error
}

func (m *mockMatchRepo) InsertBatch(_ context.Context, matches []match.Match) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, matches...)
	return nil
}

func (m *mockMatchRepo) FindByID(context.Context, uuid.UUID) (match.Match, error) {
	return match.Match{}, repository.ErrMatchNotFound
}

func (m *mockMatchRepo) ListByJobID(_ context.Context, jobID uuid.UUID) ([]match.Match, error) {
	return m.byJob[jobID], nil
}

func (m *mockMatchRepo) UpdateStatus(context.Context, uuid.UUID, match.Status) error {
	return nil
}

type fakeClassifier struct {
	trade worker.Trade
	err   error
}

func (f fakeClassifier) Classify(context.Context, string, string) (worker.Trade, error) {
	return f.trade, f.err
}

type fakeQuoter struct {
	mu    sync.Mutex
	calls int
	fn    func(w worker.Worker, profile *worker.Profile, distanceMiles *float64) (llm.Quote, error)
}

func (f *fakeQuoter) Generate(_ context.Context, _ job.Job, w worker.Worker, profile *worker.Profile, distanceMiles *float64) (llm.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(w, profile, distanceMiles)
}

func (f *fakeQuoter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func standardQuote(worker.Worker, *worker.Profile, *float64) (llm.Quote, error) {
	hours := 3.0
	return llm.Quote{
		PricingMethod:  match.PricingHourly,
		EstimatedHours: &hours,
		BaseCost:       150,
		Score:          80,
		Reasoning:      "Nearby and available.",
	}, nil
}

func plumberWorker(lat, lng float64, dayRate float64) worker.Worker {
	return worker.Worker{
		ID:               uuid.New(),
		Trade:            worker.TradePlumber,
		DayRate:          fp(dayRate),
		Latitude:         fp(lat),
		Longitude:        fp(lng),
		TravelFeePerMile: 2,
		Status:           worker.StatusActive,
		CreatedAt:        time.Now(),
	}
}

func newTestUsecase(jobs *mockJobRepo, workers *mockWorkerRepo, profiles *mockProfileRepo, matches *mockMatchRepo, classifier TradeClassifier, quoter QuoteGenerator) *Matching {
	return NewMatchingUsecase(jobs, workers, profiles, matches, classifier, quoter, nil)
}

func TestMatchJobToWorkers_JobNotFound(t *testing.T) {
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{}},
		&mockWorkerRepo{}, &mockProfileRepo{}, &mockMatchRepo{},
		fakeClassifier{trade: worker.TradePlumber},
		&fakeQuoter{fn: standardQuote},
	)

	_, err := uc.MatchJobToWorkers(context.Background(), uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMatchJobToWorkers_NoWorkersFound(t *testing.T) {
	j := job.Job{ID: uuid.New(), ClientID: uuid.New(), Title: "Fix leaking tap"}
	matchRepo := &mockMatchRepo{}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{}, &mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		&fakeQuoter{fn: standardQuote},
	)

	_, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if !errors.Is(err, ErrNoWorkersFound) {
		t.Fatalf("expected ErrNoWorkersFound, got %v", err)
	}
	if len(matchRepo.inserted) != 0 {
		t.Fatalf("expected no matches persisted")
	}
}

func TestMatchJobToWorkers_TopThreeNearestFirst(t *testing.T) {
	j := job.Job{
		ID: uuid.New(), ClientID: uuid.New(),
		Title: "Fix leaking tap", Description: "Dripping kitchen tap",
		Urgency:  job.UrgencyMedium,
		Latitude: fp(51.5), Longitude: fp(-0.1),
	}

	near1 := plumberWorker(51.51, -0.1, 200) // under 5 miles
	near2 := plumberWorker(51.52, -0.1, 200)
	far1 := plumberWorker(51.9, -0.1, 150)
	far2 := plumberWorker(52.0, -0.1, 150)
	far3 := plumberWorker(52.1, -0.1, 150)

	matchRepo := &mockMatchRepo{}
	quoter := &fakeQuoter{fn: standardQuote}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{workers: []worker.Worker{far1, far2, far3, near1, near2}},
		&mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	count, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 matches, got %d", count)
	}
	if quoter.callCount() != 3 {
		t.Fatalf("expected 3 quote calls, got %d", quoter.callCount())
	}

	if matchRepo.inserted[0].WorkerID != near1.ID || matchRepo.inserted[1].WorkerID != near2.ID {
		t.Fatalf("expected the two within-radius plumbers ranked first")
	}

	for _, m := range matchRepo.inserted {
		if m.TotalCost != m.BaseCost+m.TravelCost {
			t.Fatalf("total_cost invariant violated: %+v", m)
		}
		if (m.EstimatedHours == nil) == (m.EstimatedDays == nil) {
			t.Fatalf("expected exactly one of hours/days set: %+v", m)
		}
		if m.Status != match.StatusSuggested {
			t.Fatalf("expected suggested status, got %s", m.Status)
		}
	}

	// The nearby workers travel free; the distant ones pay per mile.
	if matchRepo.inserted[0].TravelCost != 0 {
		t.Fatalf("expected free travel within 5 miles, got %f", matchRepo.inserted[0].TravelCost)
	}
	if matchRepo.inserted[2].TravelCost <= 0 {
		t.Fatalf("expected positive travel cost for distant worker")
	}
}

func TestMatchJobToWorkers_CacheHitReusesMatches(t *testing.T) {
	clientID := uuid.New()
	now := time.Now().UTC()

	prior := job.Job{
		ID: uuid.New(), ClientID: clientID,
		Title: "Fix leaking tap", Description: "Kitchen tap dripping constantly",
		CreatedAt: now.Add(-time.Hour),
	}
	current := job.Job{
		ID: uuid.New(), ClientID: clientID,
		Title: "Fix leaking tap", Description: "Kitchen tap dripping constantly",
		CreatedAt: now,
	}

	workerID := uuid.New()
	hours := 2.0
	priorMatch := match.Match{
		ID: uuid.New(), JobID: prior.ID, WorkerID: workerID,
		Score: 85, Reasoning: "Good fit.",
		EstimatedHours: &hours, PricingMethod: match.PricingHourly,
		BaseCost: 120, TravelCost: 10, TotalCost: 130,
		Status: match.StatusAssigned,
	}

	matchRepo := &mockMatchRepo{byJob: map[uuid.UUID][]match.Match{prior.ID: {priorMatch}}}
	quoter := &fakeQuoter{fn: standardQuote}
	uc := newTestUsecase(
		&mockJobRepo{
			jobs: map[uuid.UUID]job.Job{current.ID: current},
			recent: []repository.RecentJob{
				{Job: current, MatchCount: 0},
				{Job: prior, MatchCount: 1},
			},
		},
		&mockWorkerRepo{}, &mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	count, err := uc.MatchJobToWorkers(context.Background(), current.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cloned match, got %d", count)
	}
	if quoter.callCount() != 0 {
		t.Fatalf("cache hit must not invoke quote generation")
	}

	cloned := matchRepo.inserted[0]
	if cloned.JobID != current.ID {
		t.Fatalf("expected clone scoped to new job")
	}
	if cloned.ID == priorMatch.ID {
		t.Fatalf("expected a fresh match id")
	}
	if cloned.WorkerID != workerID || cloned.BaseCost != 120 || cloned.TravelCost != 10 || cloned.TotalCost != 130 {
		t.Fatalf("expected worker and costs carried over: %+v", cloned)
	}
	if cloned.Status != match.StatusSuggested {
		t.Fatalf("expected cloned match reset to suggested, got %s", cloned.Status)
	}
	if cloned.Reasoning == priorMatch.Reasoning {
		t.Fatalf("expected reasoning suffix appended")
	}
}

func TestMatchJobToWorkers_DissimilarRecentJobIsNotACacheHit(t *testing.T) {
	clientID := uuid.New()
	prior := job.Job{
		ID: uuid.New(), ClientID: clientID,
		Title: "Repaint garden fence", Description: "Full repaint of wooden fence panels",
	}
	current := job.Job{
		ID: uuid.New(), ClientID: clientID,
		Title: "Fix leaking tap", Description: "Kitchen tap dripping constantly",
		Latitude: fp(51.5), Longitude: fp(-0.1),
	}

	matchRepo := &mockMatchRepo{byJob: map[uuid.UUID][]match.Match{prior.ID: {{ID: uuid.New(), JobID: prior.ID}}}}
	quoter := &fakeQuoter{fn: standardQuote}
	uc := newTestUsecase(
		&mockJobRepo{
			jobs:   map[uuid.UUID]job.Job{current.ID: current},
			recent: []repository.RecentJob{{Job: prior, MatchCount: 1}},
		},
		&mockWorkerRepo{workers: []worker.Worker{plumberWorker(51.51, -0.1, 200)}},
		&mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	count, err := uc.MatchJobToWorkers(context.Background(), current.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 fresh match, got %d", count)
	}
	if quoter.callCount() != 1 {
		t.Fatalf("expected quote generation on cache miss")
	}
}

func TestMatchJobToWorkers_PartialQuoteFailure(t *testing.T) {
	j := job.Job{ID: uuid.New(), ClientID: uuid.New(), Title: "Fix leaking tap"}

	w1 := plumberWorker(51.51, -0.1, 200)
	w2 := plumberWorker(51.52, -0.1, 200)
	w3 := plumberWorker(51.53, -0.1, 200)

	matchRepo := &mockMatchRepo{}
	quoter := &fakeQuoter{fn: func(w worker.Worker, p *worker.Profile, d *float64) (llm.Quote, error) {
		if w.ID == w2.ID {
			return llm.Quote{}, errors.New("model unavailable")
		}
		return standardQuote(w, p, d)
	}}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{workers: []worker.Worker{w1, w2, w3}},
		&mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	count, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("partial failure must not fail the run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 matches after dropping one worker, got %d", count)
	}
	for _, m := range matchRepo.inserted {
		if m.WorkerID == w2.ID {
			t.Fatalf("failed worker must be dropped")
		}
	}
}

func TestMatchJobToWorkers_AllQuotesFail(t *testing.T) {
	j := job.Job{ID: uuid.New(), ClientID: uuid.New(), Title: "Fix leaking tap"}

	matchRepo := &mockMatchRepo{}
	quoter := &fakeQuoter{fn: func(worker.Worker, *worker.Profile, *float64) (llm.Quote, error) {
		return llm.Quote{}, errors.New("model unavailable")
	}}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{workers: []worker.Worker{plumberWorker(51.51, -0.1, 200)}},
		&mockProfileRepo{}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	_, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if !errors.Is(err, ErrNoQuotesGenerated) {
		t.Fatalf("expected ErrNoQuotesGenerated, got %v", err)
	}
	if len(matchRepo.inserted) != 0 {
		t.Fatalf("expected no matches persisted")
	}
}

func TestMatchJobToWorkers_ClassifierFailureUsesDefaultTrade(t *testing.T) {
	j := job.Job{ID: uuid.New(), ClientID: uuid.New(), Title: "General repairs"}

	workerRepo := &mockWorkerRepo{}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		workerRepo, &mockProfileRepo{}, &mockMatchRepo{},
		fakeClassifier{err: errors.New("timeout")},
		&fakeQuoter{fn: standardQuote},
	)

	_, _ = uc.MatchJobToWorkers(context.Background(), j.ID)
	if !workerRepo.queriedSet || workerRepo.queried != worker.DefaultTrade {
		t.Fatalf("expected default trade query, got %q", workerRepo.queried)
	}
}

func TestMatchJobToWorkers_EmergencyMultiplierInBreakdown(t *testing.T) {
	j := job.Job{
		ID: uuid.New(), ClientID: uuid.New(),
		Title: "Burst pipe flooding kitchen", Urgency: job.UrgencyEmergency,
	}

	w := plumberWorker(51.51, -0.1, 200)
	multiplier := 1.5
	profiles := map[uuid.UUID]worker.Profile{
		w.ID: {WorkerID: w.ID, EmergencyMultiplier: &multiplier, InterviewCompleted: true},
	}

	matchRepo := &mockMatchRepo{}
	quoter := &fakeQuoter{fn: func(_ worker.Worker, p *worker.Profile, _ *float64) (llm.Quote, error) {
		hours := 2.0
		base := 100.0
		var applied *float64
		if p != nil && p.EmergencyMultiplier != nil {
			base *= *p.EmergencyMultiplier
			applied = p.EmergencyMultiplier
		}
		return llm.Quote{
			PricingMethod:       match.PricingHourly,
			EstimatedHours:      &hours,
			BaseCost:            base,
			Score:               90,
			Reasoning:           "Immediate availability.",
			EmergencyMultiplier: applied,
		}, nil
	}}
	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{workers: []worker.Worker{w}},
		&mockProfileRepo{profiles: profiles}, matchRepo,
		fakeClassifier{trade: worker.TradePlumber},
		quoter,
	)

	count, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 match, got %d", count)
	}

	m := matchRepo.inserted[0]
	if m.BaseCost != 150 {
		t.Fatalf("expected multiplied base cost 150, got %f", m.BaseCost)
	}
	if m.Breakdown.EmergencyMultiplier == nil || *m.Breakdown.EmergencyMultiplier != 1.5 {
		t.Fatalf("expected emergency multiplier in breakdown")
	}
}

func TestMatchJobToWorkers_InsertFailurePropagates(t *testing.T) {
	j := job.Job{ID: uuid.New(), ClientID: uuid.New(), Title: "Fix leaking tap"}
	insertErr := errors.New("write failed")

	uc := newTestUsecase(
		&mockJobRepo{jobs: map[uuid.UUID]job.Job{j.ID: j}},
		&mockWorkerRepo{workers: []worker.Worker{plumberWorker(51.51, -0.1, 200)}},
		&mockProfileRepo{}, &mockMatchRepo{insertErr: insertErr},
		fakeClassifier{trade: worker.TradePlumber},
		&fakeQuoter{fn: standardQuote},
	)

	_, err := uc.MatchJobToWorkers(context.Background(), j.ID)
	if !errors.Is(err, insertErr) {
		t.Fatalf("expected insert error surfaced, got %v", err)
	}
}
