package pgtest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-backend-go/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations once. Tests are
// skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	testDBOnce.Do(func() {
		ctx := context.Background()
		testDB, testDBErr = database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 10})
		if testDBErr != nil {
			return
		}
		testDBErr = postgresql.Migrate(ctx, testDB, migrations.FS)
	})
	require.NoError(t, testDBErr)

	return testDB
}

// TruncateAllTables removes attendance data while keeping the seeded settings row.
func TruncateAllTables(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	for _, table := range []string{"attendance_sessions", "employees"} {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	_, err := db.Exec(ctx, "DELETE FROM settings WHERE key <> 'work_hours_start'")
	require.NoError(t, err)
	_, err = db.Exec(ctx, "UPDATE settings SET value = '09:00', updated_by = NULL WHERE key = 'work_hours_start'")
	require.NoError(t, err)
}

// CreateTestEmployee inserts an active employee and returns its id.
func CreateTestEmployee(t *testing.T, db *database.DB, name string) string {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, employee_code, full_name)
		VALUES ($1, $2, $3)
	`, id, "EMP-"+id[len(id)-6:], name)
	require.NoError(t, err)
	return id
}
