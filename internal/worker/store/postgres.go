package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// Postgres persists workers in the workers table. Deleting a worker cascades
// to income_records and expenses via foreign keys, so the store does one
// DELETE and the database removes the dependents.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, worker *models.Worker) error {
	query := `
		INSERT INTO workers (id, name, daily_income_amount, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(worker.ID),
		worker.Name,
		worker.DailyIncomeAmount,
		string(worker.Status),
		worker.CreatedBy,
		worker.CreatedAt,
		worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert worker: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, workerID id.WorkerID) (*models.Worker, error) {
	query := `
		SELECT id, name, daily_income_amount, status, created_by, created_at, updated_at
		FROM workers
		WHERE id = $1
	`
	worker, err := scanWorker(s.db.QueryRowContext(ctx, query, uuid.UUID(workerID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find worker: %w", err)
	}
	return worker, nil
}

func (s *Postgres) Update(ctx context.Context, worker *models.Worker) error {
	query := `
		UPDATE workers
		SET name = $2, daily_income_amount = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(worker.ID),
		worker.Name,
		worker.DailyIncomeAmount,
		string(worker.Status),
		worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, workerID id.WorkerID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workers WHERE id = $1`, uuid.UUID(workerID))
	if err != nil {
		return fmt.Errorf("delete worker: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, onlyActive bool) ([]*models.Worker, error) {
	query := `
		SELECT id, name, daily_income_amount, status, created_by, created_at, updated_at
		FROM workers
	`
	var args []any
	if onlyActive {
		query += " WHERE status = $1"
		args = append(args, string(models.StatusActive))
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return workers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*models.Worker, error) {
	var (
		worker   models.Worker
		workerID uuid.UUID
		status   string
	)
	err := row.Scan(
		&workerID,
		&worker.Name,
		&worker.DailyIncomeAmount,
		&status,
		&worker.CreatedBy,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	worker.ID = id.WorkerID(workerID)
	worker.Status = models.Status(status)
	return &worker, nil
}
