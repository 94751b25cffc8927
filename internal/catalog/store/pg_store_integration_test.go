package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	perrors "github.com/abgdnv/shopadmin/internal/catalog/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SVC_SKIP_INTEGRATION_TESTS"

// PgStoreSuite runs the PgStore against a real PostgreSQL container.
type PgStoreSuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	store       ProductStore
	logger      *slog.Logger
	ctx         context.Context
}

func (s *PgStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	require.NoError(s.T(), Migrate(connStr), "Failed to apply migrations")
	require.NoError(s.T(), Migrate(connStr), "Re-running migrations must be a no-op")

	s.store = NewPgStore(s.dbPool)
}

func (s *PgStoreSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest truncates the products table so every test starts from id 1.
func (s *PgStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func TestPgStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgStoreSuite))
}

func (s *PgStoreSuite) createTestProduct(title string, price float64) *Product {
	s.T().Helper()
	p, err := s.store.Create(s.ctx, ProductParams{
		Title:       title,
		Description: title + " description",
		Category:    "test",
		Price:       price,
		Image:       "https://img.example.com/" + title + ".png",
	})
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return p
}

func (s *PgStoreSuite) TestCreateAndFindByID() {
	created := s.createTestProduct("Lamp", 19.99)

	require.Equal(s.T(), int64(1), created.ID)
	require.Equal(s.T(), "Lamp", created.Title)
	require.Equal(s.T(), 19.99, created.Price)
	require.False(s.T(), created.CreatedAt.IsZero(), "CreatedAt should be set")

	fetched, err := s.store.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.Title, fetched.Title)
	assert.Equal(s.T(), created.Description, fetched.Description)
	assert.Equal(s.T(), created.Category, fetched.Category)
	assert.Equal(s.T(), created.Price, fetched.Price)
	assert.Equal(s.T(), created.Image, fetched.Image)
	assert.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *PgStoreSuite) TestFindByID_NotFound() {
	_, err := s.store.FindByID(s.ctx, 42)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestFindAll_OrderedByID() {
	s.createTestProduct("A", 1)
	s.createTestProduct("B", 2)
	s.createTestProduct("C", 3)

	all, err := s.store.FindAll(s.ctx, 0, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "A", all[0].Title)
	assert.Equal(s.T(), "C", all[2].Title)

	page, err := s.store.FindAll(s.ctx, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), page, 1)
	assert.Equal(s.T(), "B", page[0].Title)
}

func (s *PgStoreSuite) TestFindAll_Empty() {
	all, err := s.store.FindAll(s.ctx, 0, 10)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), all)
}

func (s *PgStoreSuite) TestUpdate() {
	created := s.createTestProduct("Desk", 120)

	updated, err := s.store.Update(s.ctx, created.ID, ProductParams{Title: "Standing desk", Price: 300.5})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), created.ID, updated.ID)
	assert.Equal(s.T(), "Standing desk", updated.Title)
	assert.Equal(s.T(), 300.5, updated.Price)
	assert.Empty(s.T(), updated.Category, "update replaces every writable field")
	assert.False(s.T(), updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *PgStoreSuite) TestUpdate_NotFound() {
	_, err := s.store.Update(s.ctx, 42, ProductParams{Title: "Ghost"})
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteByID() {
	created := s.createTestProduct("Chair", 45)

	require.NoError(s.T(), s.store.DeleteByID(s.ctx, created.ID))

	_, err := s.store.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, perrors.ErrProductNotFound)
}

func (s *PgStoreSuite) TestDeleteByID_NotFound() {
	require.ErrorIs(s.T(), s.store.DeleteByID(s.ctx, 42), perrors.ErrProductNotFound)
}
