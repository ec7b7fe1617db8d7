package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"trade-match/internal/database"
	"trade-match/internal/domain/match"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	InsertBatch(ctx context.Context, matches []match.Match) error
	FindByID(ctx context.Context, matchID uuid.UUID) (match.Match, error)
	ListByJobID(ctx context.Context, jobID uuid.UUID) ([]match.Match, error)
	UpdateStatus(ctx context.Context, matchID uuid.UUID, status match.Status) error
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

// InsertBatch writes all rows in one transaction so a failed run leaves
// no partial match set behind.
func (r *PostgresMatchRepository) InsertBatch(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range matches {
		id := m.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		createdAt := m.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		breakdown, err := json.Marshal(m.Breakdown)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO matches
			   (id, job_id, worker_id, match_score, reasoning, estimated_hours,
			    estimated_days, pricing_method, base_cost, travel_cost, total_cost,
			    cost_breakdown, status, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			id, m.JobID, m.WorkerID, m.Score, m.Reasoning, m.EstimatedHours,
			m.EstimatedDays, m.PricingMethod, m.BaseCost, m.TravelCost, m.TotalCost,
			breakdown, m.Status, createdAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresMatchRepository) FindByID(ctx context.Context, matchID uuid.UUID) (match.Match, error) {
	if matchID == uuid.Nil {
		return match.Match{}, ErrMatchNotFound
	}

	var m match.Match
	var method, status string
	var breakdownRaw []byte
	row := r.db.QueryRow(ctx,
		`SELECT id, job_id, worker_id, match_score, COALESCE(reasoning, ''),
		        estimated_hours, estimated_days, pricing_method, base_cost,
		        travel_cost, total_cost, COALESCE(cost_breakdown, '{}'::jsonb),
		        status, created_at
		 FROM matches
		 WHERE id = $1`,
		matchID,
	)
	if err := row.Scan(
		&m.ID, &m.JobID, &m.WorkerID, &m.Score, &m.Reasoning,
		&m.EstimatedHours, &m.EstimatedDays, &method, &m.BaseCost,
		&m.TravelCost, &m.TotalCost, &breakdownRaw, &status, &m.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return match.Match{}, ErrMatchNotFound
		}
		return match.Match{}, err
	}
	m.PricingMethod = match.PricingMethod(method)
	m.Status = match.Status(status)
	if len(breakdownRaw) > 0 {
		if err := json.Unmarshal(breakdownRaw, &m.Breakdown); err != nil {
			return match.Match{}, err
		}
	}
	return m, nil
}

func (r *PostgresMatchRepository) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]match.Match, error) {
	if jobID == uuid.Nil {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, job_id, worker_id, match_score, COALESCE(reasoning, ''),
		        estimated_hours, estimated_days, pricing_method, base_cost,
		        travel_cost, total_cost, COALESCE(cost_breakdown, '{}'::jsonb),
		        status, created_at
		 FROM matches
		 WHERE job_id = $1
		 ORDER BY match_score DESC, created_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Match, 0)
	for rows.Next() {
		var m match.Match
		var method, status string
		var breakdownRaw []byte
		if err := rows.Scan(
			&m.ID, &m.JobID, &m.WorkerID, &m.Score, &m.Reasoning,
			&m.EstimatedHours, &m.EstimatedDays, &method, &m.BaseCost,
			&m.TravelCost, &m.TotalCost, &breakdownRaw, &status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.PricingMethod = match.PricingMethod(method)
		m.Status = match.Status(status)
		if len(breakdownRaw) > 0 {
			if err := json.Unmarshal(breakdownRaw, &m.Breakdown); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) UpdateStatus(ctx context.Context, matchID uuid.UUID, status match.Status) error {
	if matchID == uuid.Nil {
		return ErrMatchNotFound
	}

	affected, err := r.db.Exec(ctx,
		`UPDATE matches SET status = $1 WHERE id = $2`,
		status, matchID,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMatchNotFound
	}
	return nil
}
