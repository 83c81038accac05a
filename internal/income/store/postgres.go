package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"opsledger/internal/income/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// Postgres persists income records. The income_records table carries a
// UNIQUE (worker_id, date) constraint matching the one-record-per-day
// invariant.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, record *models.IncomeRecord) error {
	query := `
		INSERT INTO income_records (
			id, worker_id, date, expected_amount, paid_amount, is_completed,
			notes, completed_at, completed_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.WorkerID),
		record.Date,
		record.ExpectedAmount,
		record.PaidAmount,
		record.IsCompleted,
		nullableString(record.Notes),
		record.CompletedAt,
		nullableString(record.CompletedBy),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert income record: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, record *models.IncomeRecord) error {
	query := `
		UPDATE income_records
		SET paid_amount = $2, is_completed = $3, notes = $4,
			completed_at = $5, completed_by = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		record.PaidAmount,
		record.IsCompleted,
		nullableString(record.Notes),
		record.CompletedAt,
		nullableString(record.CompletedBy),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update income record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, recordID id.IncomeRecordID) (*models.IncomeRecord, error) {
	record, err := scanIncomeRecord(s.db.QueryRowContext(ctx, selectIncome+" WHERE id = $1", uuid.UUID(recordID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find income record: %w", err)
	}
	return record, nil
}

func (s *Postgres) FindByWorkerAndDate(ctx context.Context, workerID id.WorkerID, date string) (*models.IncomeRecord, error) {
	record, err := scanIncomeRecord(s.db.QueryRowContext(ctx,
		selectIncome+" WHERE worker_id = $1 AND date = $2", uuid.UUID(workerID), date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find income record by day: %w", err)
	}
	return record, nil
}

func (s *Postgres) List(ctx context.Context, limit int) ([]*models.IncomeRecord, error) {
	query := selectIncome + " ORDER BY date DESC, created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income records: %w", err)
	}
	defer rows.Close()

	var records []*models.IncomeRecord
	for rows.Next() {
		record, err := scanIncomeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income records: %w", err)
	}
	return records, nil
}

// ListByDateRange returns records with from <= date <= to. Empty bounds are
// unbounded.
func (s *Postgres) ListByDateRange(ctx context.Context, from, to string) ([]*models.IncomeRecord, error) {
	query := selectIncome
	var (
		args  []any
		where []string
	)
	if from != "" {
		args = append(args, from)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if to != "" {
		args = append(args, to)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list income records by date: %w", err)
	}
	defer rows.Close()

	var records []*models.IncomeRecord
	for rows.Next() {
		record, err := scanIncomeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan income record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate income records: %w", err)
	}
	return records, nil
}

const selectIncome = `
	SELECT id, worker_id, date, expected_amount, paid_amount, is_completed,
		   notes, completed_at, completed_by, created_at, updated_at
	FROM income_records
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncomeRecord(row rowScanner) (*models.IncomeRecord, error) {
	var (
		record      models.IncomeRecord
		recordID    uuid.UUID
		workerID    uuid.UUID
		date        time.Time
		notes       sql.NullString
		completedBy sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(
		&recordID,
		&workerID,
		&date,
		&record.ExpectedAmount,
		&record.PaidAmount,
		&record.IsCompleted,
		&notes,
		&completedAt,
		&completedBy,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ID = id.IncomeRecordID(recordID)
	record.WorkerID = id.WorkerID(workerID)
	record.Date = date.Format(models.DateLayout)
	record.Notes = notes.String
	record.CompletedBy = completedBy.String
	if completedAt.Valid {
		at := completedAt.Time
		record.CompletedAt = &at
	}
	return &record, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
