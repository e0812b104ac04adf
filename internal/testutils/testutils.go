package testutils

import (
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/brigadehq/roster/internal/database"
)

var (
	testDB     *sqlx.DB
	dbInitOnce sync.Once
)

const truncateAll = `TRUNCATE TABLE
	public_holidays, extended_leave_requests, leave_requests,
	event_exceptions, events, members, brigades CASCADE`

// TestDB returns a shared test database connection with a clean schema.
func TestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	var initErr error
	dbInitOnce.Do(func() {
		cfg := database.Config{
			Host:     getEnv("TEST_DB_HOST", "localhost"),
			Port:     5433,
			User:     getEnv("TEST_DB_USER", "postgres"),
			Password: getEnv("TEST_DB_PASSWORD", "postgres"),
			DBName:   getEnv("TEST_DB_NAME", "roster_test"),
			SSLMode:  getEnv("TEST_DB_SSL_MODE", "disable"),
		}

		testDB, initErr = database.NewPostgresDB(cfg)
		if initErr != nil {
			return
		}

		initErr = database.RunMigrations(cfg)
		if initErr != nil {
			return
		}

		_, initErr = testDB.Exec(truncateAll)
	})

	if initErr != nil {
		t.Fatalf("Failed to initialize test database: %v", initErr)
	}

	t.Cleanup(func() {
		_, err := testDB.Exec(truncateAll)
		if err != nil {
			t.Errorf("Failed to clean up test data: %v", err)
		}
	})

	return testDB
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// RandomUUID returns a new random UUID for testing
func RandomUUID() uuid.UUID {
	return uuid.New()
}
