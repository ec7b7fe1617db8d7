package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trade-match/internal/database"
	"trade-match/internal/domain/job"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrJobNotFound = errors.New("job not found")

// RecentJob is a client's prior job together with how many matches were
// persisted for it, for similarity-cache candidacy.
type RecentJob struct {
	Job        job.Job
	MatchCount int
}

type JobRepository interface {
	FindByID(ctx context.Context, jobID uuid.UUID) (job.Job, error)
	ListRecentByClient(ctx context.Context, clientID uuid.UUID, since time.Time) ([]RecentJob, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) FindByID(ctx context.Context, jobID uuid.UUID) (job.Job, error) {
	if jobID == uuid.Nil {
		return job.Job{}, ErrJobNotFound
	}

	var j job.Job
	var urgency string
	row := r.db.QueryRow(ctx,
		`SELECT id, client_id, COALESCE(title, ''), COALESCE(description, ''),
		        COALESCE(urgency, 'medium'), latitude, longitude, created_at
		 FROM jobs
		 WHERE id = $1`,
		jobID,
	)
	if err := row.Scan(&j.ID, &j.ClientID, &j.Title, &j.Description, &urgency, &j.Latitude, &j.Longitude, &j.CreatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}
	j.Urgency = job.Urgency(urgency)
	return j, nil
}

func (r *PostgresJobRepository) ListRecentByClient(ctx context.Context, clientID uuid.UUID, since time.Time) ([]RecentJob, error) {
	if clientID == uuid.Nil {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT j.id, j.client_id, COALESCE(j.title, ''), COALESCE(j.description, ''),
		        COALESCE(j.urgency, 'medium'), j.latitude, j.longitude, j.created_at,
		        COUNT(m.id)
		 FROM jobs j
		 LEFT JOIN matches m ON m.job_id = j.id
		 WHERE j.client_id = $1 AND j.created_at >= $2
		 GROUP BY j.id
		 ORDER BY j.created_at DESC`,
		clientID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentJob, 0)
	for rows.Next() {
		var rj RecentJob
		var urgency string
		if err := rows.Scan(
			&rj.Job.ID, &rj.Job.ClientID, &rj.Job.Title, &rj.Job.Description,
			&urgency, &rj.Job.Latitude, &rj.Job.Longitude, &rj.Job.CreatedAt,
			&rj.MatchCount,
		); err != nil {
			return nil, err
		}
		rj.Job.Urgency = job.Urgency(urgency)
		out = append(out, rj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
