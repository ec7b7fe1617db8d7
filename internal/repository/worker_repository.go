package repository

import (
	"context"

	"trade-match/internal/database"
	"trade-match/internal/domain/worker"
)

type WorkerRepository interface {
	ListActiveByTrade(ctx context.Context, trade worker.Trade) ([]worker.Worker, error)
}

type PostgresWorkerRepository struct {
	db database.DB
}

func NewPostgresWorkerRepository(db database.DB) *PostgresWorkerRepository {
	return &PostgresWorkerRepository{db: db}
}

func (r *PostgresWorkerRepository) ListActiveByTrade(ctx context.Context, trade worker.Trade) ([]worker.Worker, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, COALESCE(name, ''), trade_type, hourly_rate, day_rate,
		        latitude, longitude, COALESCE(travel_fee_per_mile, 0), status, created_at
		 FROM workers
		 WHERE status = $1 AND trade_type = $2`,
		worker.StatusActive, trade,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]worker.Worker, 0)
	for rows.Next() {
		var w worker.Worker
		var tradeRaw, status string
		if err := rows.Scan(
			&w.ID, &w.Name, &tradeRaw, &w.HourlyRate, &w.DayRate,
			&w.Latitude, &w.Longitude, &w.TravelFeePerMile, &status, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		w.Trade = worker.Trade(tradeRaw)
		w.Status = worker.Status(status)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
