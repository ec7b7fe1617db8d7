package usecase

import (
	"context"
	"errors"

	"trade-match/internal/domain/match"
	"trade-match/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// MatchUsecase serves the read surface and the lifecycle mutations done
// by acceptance and decline flows. The matching pipeline itself only
// creates rows; everything after that goes through here.
type MatchUsecase interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]match.Match, error)
	UpdateStatus(ctx context.Context, matchID uuid.UUID, status match.Status) (match.Match, error)
}

type Matches struct {
	jobs    repository.JobRepository
	matches repository.MatchRepository
}

func NewMatchUsecase(jobs repository.JobRepository, matches repository.MatchRepository) *Matches {
	return &Matches{jobs: jobs, matches: matches}
}

func (u *Matches) ListByJob(ctx context.Context, jobID uuid.UUID) ([]match.Match, error) {
	if jobID == uuid.Nil {
		return nil, ErrJobNotFound
	}

	if _, err := u.jobs.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, ErrInternal
	}

	out, err := u.matches.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

func (u *Matches) UpdateStatus(ctx context.Context, matchID uuid.UUID, status match.Status) (match.Match, error) {
	if matchID == uuid.Nil {
		return match.Match{}, ErrMatchNotFound
	}

	m, err := u.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, ErrInternal
	}

	if !match.ValidTransition(m.Status, status) {
		return match.Match{}, ErrInvalidTransition
	}

	if err := u.matches.UpdateStatus(ctx, matchID, status); err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, ErrInternal
	}

	m.Status = status
	return m, nil
}
