//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opsledger/internal/expense/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/testutil/containers"
)

type ExpenseStorePostgresSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	store    *Postgres
	workerID id.WorkerID
}

func (s *ExpenseStorePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *ExpenseStorePostgresSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *ExpenseStorePostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.TruncateTables(ctx, "workers"))

	s.workerID = id.NewWorkerID()
	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO workers (id, name, daily_income_amount, status)
		VALUES ($1, 'Ravi', 500, 'active')
	`, s.workerID.String())
	s.Require().NoError(err)
}

func TestExpenseStorePostgresSuite(t *testing.T) {
	suite.Run(t, new(ExpenseStorePostgresSuite))
}

func (s *ExpenseStorePostgresSuite) expense(date string, amount float64) *models.Expense {
	expense, err := models.NewExpense(id.NewExpenseID(), s.workerID, amount,
		"materials", "", models.TypeOneTime, "", date, time.Now().UTC())
	s.Require().NoError(err)
	return expense
}

func (s *ExpenseStorePostgresSuite) TestCreateAndFind() {
	ctx := context.Background()
	expense, err := models.NewExpense(id.NewExpenseID(), s.workerID, 120.5,
		"fuel", "generator diesel", models.TypeRecurring, models.RecurrenceWeekly,
		"2026-06-02", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, expense))

	found, findErr := s.store.FindByID(ctx, expense.ID)
	s.Require().NoError(findErr)
	s.Equal(expense.ID, found.ID)
	s.Equal(s.workerID, found.WorkerID)
	s.Equal(120.5, found.Amount)
	s.Equal("fuel", found.Category)
	s.Equal("generator diesel", found.Description)
	s.Equal(models.TypeRecurring, found.ExpenseType)
	s.Equal(models.RecurrenceWeekly, found.RecurrencePattern)
	s.Equal("2026-06-02", found.Date)
	s.False(found.IsPaid)
	s.Nil(found.PaidAt)
}

func (s *ExpenseStorePostgresSuite) TestFind_NotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewExpenseID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ExpenseStorePostgresSuite) TestUpdate_PaidFields() {
	ctx := context.Background()
	expense := s.expense("2026-06-02", 80)
	s.Require().NoError(s.store.Create(ctx, expense))

	expense.SetPaid(true, "tester", time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, expense))

	found, err := s.store.FindByID(ctx, expense.ID)
	s.Require().NoError(err)
	s.True(found.IsPaid)
	s.Equal("tester", found.PaidBy)
	s.NotNil(found.PaidAt)

	expense.SetPaid(false, "tester", time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, expense))

	found, err = s.store.FindByID(ctx, expense.ID)
	s.Require().NoError(err)
	s.False(found.IsPaid)
	s.Empty(found.PaidBy)
	s.Nil(found.PaidAt)
}

func (s *ExpenseStorePostgresSuite) TestUpdate_NotFound() {
	s.ErrorIs(s.store.Update(context.Background(), s.expense("2026-06-02", 80)), sentinel.ErrNotFound)
}

func (s *ExpenseStorePostgresSuite) TestDelete() {
	ctx := context.Background()
	expense := s.expense("2026-06-02", 80)
	s.Require().NoError(s.store.Create(ctx, expense))

	s.Require().NoError(s.store.Delete(ctx, expense.ID))
	_, err := s.store.FindByID(ctx, expense.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, expense.ID), sentinel.ErrNotFound)
}

func (s *ExpenseStorePostgresSuite) TestList() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-06-01", 10)))
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-06-03", 30)))
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-06-02", 20)))

	expenses, err := s.store.List(ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(expenses, 3)
	s.Equal("2026-06-03", expenses[0].Date, "newest date first")
	s.Equal("2026-06-01", expenses[2].Date)

	limited, err := s.store.List(ctx, 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}

func (s *ExpenseStorePostgresSuite) TestListByDateRange() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-05-31", 10)))
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-06-02", 20)))
	s.Require().NoError(s.store.Create(ctx, s.expense("2026-06-30", 30)))

	within, err := s.store.ListByDateRange(ctx, "2026-06-01", "2026-06-30")
	s.Require().NoError(err)
	s.Len(within, 2)

	all, err := s.store.ListByDateRange(ctx, "", "")
	s.Require().NoError(err)
	s.Len(all, 3)
}
