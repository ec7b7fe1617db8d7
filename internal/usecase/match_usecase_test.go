package usecase

import (
	"context"
	"errors"
	"testing"

	"trade-match/internal/domain/job"
	"trade-match/internal/domain/match"
	"trade-match/internal/repository"

	"github.com/google/uuid"
)

type mockMatchStore struct {
	mockMatchRepo
	byID    map[uuid.UUID]match.Match
	updated map[uuid.UUID]match.Status
}

func (m *mockMatchStore) FindByID(_ context.Context, matchID uuid.UUID) (match.Match, error) {
	mm, ok := m.byID[matchID]
	if !ok {
		return match.Match{}, repository.ErrMatchNotFound
	}
	return mm, nil
}

func (m *mockMatchStore) UpdateStatus(_ context.Context, matchID uuid.UUID, status match.Status) error {
	if m.updated == nil {
		m.updated = make(map[uuid.UUID]match.Status)
	}
	m.updated[matchID] = status
	return nil
}

func TestMatchUsecase_ListByJob_JobNotFound(t *testing.T) {
	uc := NewMatchUsecase(&mockJobRepo{jobs: map[uuid.UUID]job.Job{}}, &mockMatchStore{})
	_, err := uc.ListByJob(context.Background(), uuid.New())
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMatchUsecase_UpdateStatus_ValidTransition(t *testing.T) {
	matchID := uuid.New()
	store := &mockMatchStore{byID: map[uuid.UUID]match.Match{
		matchID: {ID: matchID, Status: match.StatusSuggested},
	}}
	uc := NewMatchUsecase(&mockJobRepo{}, store)

	m, err := uc.UpdateStatus(context.Background(), matchID, match.StatusAssigned)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Status != match.StatusAssigned {
		t.Fatalf("expected assigned, got %s", m.Status)
	}
	if store.updated[matchID] != match.StatusAssigned {
		t.Fatalf("expected status persisted")
	}
}

func TestMatchUsecase_UpdateStatus_InvalidTransition(t *testing.T) {
	matchID := uuid.New()
	store := &mockMatchStore{byID: map[uuid.UUID]match.Match{
		matchID: {ID: matchID, Status: match.StatusCompleted},
	}}
	uc := NewMatchUsecase(&mockJobRepo{}, store)

	_, err := uc.UpdateStatus(context.Background(), matchID, match.StatusAssigned)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(store.updated) != 0 {
		t.Fatalf("invalid transition must not be persisted")
	}
}

func TestMatchUsecase_UpdateStatus_NotFound(t *testing.T) {
	uc := NewMatchUsecase(&mockJobRepo{}, &mockMatchStore{})
	_, err := uc.UpdateStatus(context.Background(), uuid.New(), match.StatusAssigned)
	if !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
}
