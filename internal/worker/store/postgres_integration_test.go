//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"opsledger/internal/worker/models"
	id "opsledger/pkg/domain"
	"opsledger/pkg/platform/sentinel"
	"opsledger/pkg/testutil/containers"
)

type WorkerStorePostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
}

func (s *WorkerStorePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *WorkerStorePostgresSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(context.Background())
}

func (s *WorkerStorePostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "workers"))
}

func TestWorkerStorePostgresSuite(t *testing.T) {
	suite.Run(t, new(WorkerStorePostgresSuite))
}

func (s *WorkerStorePostgresSuite) newWorker(name string, amount float64) *models.Worker {
	worker, err := models.NewWorker(id.NewWorkerID(), name, amount, "tester", time.Now().UTC())
	s.Require().NoError(err)
	return worker
}

func (s *WorkerStorePostgresSuite) TestCreateAndFind() {
	ctx := context.Background()
	worker := s.newWorker("Ravi", 500)
	s.Require().NoError(s.store.Create(ctx, worker))

	found, err := s.store.FindByID(ctx, worker.ID)
	s.Require().NoError(err)
	s.Equal(worker.ID, found.ID)
	s.Equal("Ravi", found.Name)
	s.Equal(500.0, found.DailyIncomeAmount)
	s.Equal(models.StatusActive, found.Status)
	s.Equal("tester", found.CreatedBy)
}

func (s *WorkerStorePostgresSuite) TestFind_NotFound() {
	_, err := s.store.FindByID(context.Background(), id.NewWorkerID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *WorkerStorePostgresSuite) TestUpdate() {
	ctx := context.Background()
	worker := s.newWorker("Ravi", 500)
	s.Require().NoError(s.store.Create(ctx, worker))

	worker.Name = "Ravi Kumar"
	worker.DailyIncomeAmount = 600
	worker.Toggle(time.Now().UTC())
	s.Require().NoError(s.store.Update(ctx, worker))

	found, err := s.store.FindByID(ctx, worker.ID)
	s.Require().NoError(err)
	s.Equal("Ravi Kumar", found.Name)
	s.Equal(600.0, found.DailyIncomeAmount)
	s.Equal(models.StatusInactive, found.Status)
}

func (s *WorkerStorePostgresSuite) TestUpdate_NotFound() {
	worker := s.newWorker("Ghost", 100)
	s.ErrorIs(s.store.Update(context.Background(), worker), sentinel.ErrNotFound)
}

func (s *WorkerStorePostgresSuite) TestDelete_CascadesToDependents() {
	ctx := context.Background()
	worker := s.newWorker("Ravi", 500)
	s.Require().NoError(s.store.Create(ctx, worker))

	_, err := s.pg.DB.ExecContext(ctx, `
		INSERT INTO income_records (id, worker_id, date, expected_amount, paid_amount, is_completed)
		VALUES (gen_random_uuid(), $1, '2026-06-02', 500, 200, FALSE)
	`, worker.ID.String())
	s.Require().NoError(err)

	s.Require().NoError(s.store.Delete(ctx, worker.ID))

	_, err = s.store.FindByID(ctx, worker.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	var count int
	s.Require().NoError(s.pg.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM income_records WHERE worker_id = $1`, worker.ID.String()).Scan(&count))
	s.Zero(count, "income records should cascade on worker delete")
}

func (s *WorkerStorePostgresSuite) TestDelete_NotFound() {
	s.ErrorIs(s.store.Delete(context.Background(), id.NewWorkerID()), sentinel.ErrNotFound)
}

func (s *WorkerStorePostgresSuite) TestList() {
	ctx := context.Background()
	zed := s.newWorker("Zed", 300)
	ana := s.newWorker("Ana", 400)
	ana.Toggle(time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, zed))
	s.Require().NoError(s.store.Create(ctx, ana))

	all, err := s.store.List(ctx, false)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("Ana", all[0].Name, "ordered by name")
	s.Equal("Zed", all[1].Name)

	active, err := s.store.List(ctx, true)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Zed", active[0].Name)
}
