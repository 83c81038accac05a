package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"opsledger/internal/expense/models"
	incomemodels "opsledger/internal/income/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
)

// Postgres persists expenses in the expenses table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (
			id, worker_id, amount, category, description, expense_type,
			recurrence_pattern, date, is_paid, paid_at, paid_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(expense.ID),
		uuid.UUID(expense.WorkerID),
		expense.Amount,
		expense.Category,
		nullableString(expense.Description),
		string(expense.ExpenseType),
		nullableString(string(expense.RecurrencePattern)),
		expense.Date,
		expense.IsPaid,
		expense.PaidAt,
		nullableString(expense.PaidBy),
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET is_paid = $2, paid_at = $3, paid_by = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(expense.ID),
		expense.IsPaid,
		expense.PaidAt,
		nullableString(expense.PaidBy),
		expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, expenseID id.ExpenseID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, uuid.UUID(expenseID))
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, expenseID id.ExpenseID) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx, selectExpense+" WHERE id = $1", uuid.UUID(expenseID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return expense, nil
}

func (s *Postgres) List(ctx context.Context, limit int) ([]*models.Expense, error) {
	query := selectExpense + " ORDER BY date DESC, created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// ListByDateRange returns expenses with from <= date <= to. Empty bounds are
// unbounded.
func (s *Postgres) ListByDateRange(ctx context.Context, from, to string) ([]*models.Expense, error) {
	query := selectExpense
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
		return nil, fmt.Errorf("list expenses by date: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

const selectExpense = `
	SELECT id, worker_id, amount, category, description, expense_type,
		   recurrence_pattern, date, is_paid, paid_at, paid_by, created_at, updated_at
	FROM expenses
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		expense     models.Expense
		expenseID   uuid.UUID
		workerID    uuid.UUID
		description sql.NullString
		pattern     sql.NullString
		date        time.Time
		paidAt      sql.NullTime
		paidBy      sql.NullString
	)
	err := row.Scan(
		&expenseID,
		&workerID,
		&expense.Amount,
		&expense.Category,
		&description,
		&expense.ExpenseType,
		&pattern,
		&date,
		&expense.IsPaid,
		&paidAt,
		&paidBy,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.ID = id.ExpenseID(expenseID)
	expense.WorkerID = id.WorkerID(workerID)
	expense.Description = description.String
	expense.RecurrencePattern = models.RecurrencePattern(pattern.String)
	expense.Date = date.Format(incomemodels.DateLayout)
	expense.PaidBy = paidBy.String
	if paidAt.Valid {
		at := paidAt.Time
		expense.PaidAt = &at
	}
	return &expense, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
