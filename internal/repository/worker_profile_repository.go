package repository

import (
	"context"
	"encoding/json"

	"trade-match/internal/database"
	"trade-match/internal/domain/worker"

	"github.com/google/uuid"
)

type WorkerProfileRepository interface {
	FindByWorkerIDs(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]worker.Profile, error)
}

type PostgresWorkerProfileRepository struct {
	db database.DB
}

func NewPostgresWorkerProfileRepository(db database.DB) *PostgresWorkerProfileRepository {
	return &PostgresWorkerProfileRepository{db: db}
}

// FindByWorkerIDs returns interview-completed profiles keyed by worker id.
// Workers without a profile are simply absent from the map.
func (r *PostgresWorkerProfileRepository) FindByWorkerIDs(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]worker.Profile, error) {
	if len(workerIDs) == 0 {
		return map[uuid.UUID]worker.Profile{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT worker_id, COALESCE(common_jobs, '[]'::jsonb), emergency_multiplier,
		        callout_fee, COALESCE(prefers_day_rate, FALSE), interview_completed
		 FROM worker_profiles
		 WHERE worker_id = ANY($1) AND interview_completed = TRUE`,
		workerIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]worker.Profile)
	for rows.Next() {
		var p worker.Profile
		var commonJobsRaw []byte
		if err := rows.Scan(
			&p.WorkerID, &commonJobsRaw, &p.EmergencyMultiplier,
			&p.CalloutFee, &p.PrefersDayRate, &p.InterviewCompleted,
		); err != nil {
			return nil, err
		}
		if len(commonJobsRaw) > 0 {
			if err := json.Unmarshal(commonJobsRaw, &p.CommonJobs); err != nil {
				return nil, err
			}
		}
		out[p.WorkerID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
