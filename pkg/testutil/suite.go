package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/logger"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	globalDB        *sqlx.DB
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	RawDB     *sqlx.DB
	DB        *database.DB
	Fixtures  *FixtureFactory
	Logger    *logger.Logger
}

// NewIntegrationSuite creates a new integration test suite.
// Call this in TestMain to set up shared test infrastructure.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    ctx := context.Background()
//	    var err error
//	    suite, err = testutil.NewIntegrationSuite(ctx)
//	    if err != nil {
//	        panic(err)
//	    }
//	    code := m.Run()
//	    testutil.TerminateContainer(ctx)
//	    os.Exit(code)
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, db, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New("test", "test")
	wrappedDB, err := database.NewWithDSN(container.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := container.CreateBookingSchema(ctx, db); err != nil {
		return nil, err
	}

	return &IntegrationSuite{
		Container: container,
		RawDB:     db,
		DB:        wrappedDB,
		Fixtures:  NewFixtureFactory(),
		Logger:    log,
	}, nil
}

// getOrCreateContainer returns the shared test container
func getOrCreateContainer(ctx context.Context) (*PostgresContainer, *sqlx.DB, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
		if containerErr != nil {
			return
		}
		globalDB, containerErr = globalContainer.Connect(ctx)
	})

	return globalContainer, globalDB, containerErr
}

// Truncate empties the given tables between tests. Bookings reference rooms,
// so truncate cascades.
func (s *IntegrationSuite) Truncate(t *testing.T, ctx context.Context, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := s.RawDB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}

// UnitTestSuite provides a base for unit tests with mocked dependencies
type UnitTestSuite struct {
	MockDB   *MockDB
	Fixtures *FixtureFactory
	t        *testing.T
}

// NewUnitTestSuite creates a new unit test suite
func NewUnitTestSuite(t *testing.T) *UnitTestSuite {
	return &UnitTestSuite{
		MockDB:   NewMockDB(t),
		Fixtures: NewFixtureFactory(),
		t:        t,
	}
}

// Cleanup verifies expectations and cleans up
func (s *UnitTestSuite) Cleanup() {
	s.MockDB.ExpectationsWereMet(s.t)
	s.MockDB.Close()
}
