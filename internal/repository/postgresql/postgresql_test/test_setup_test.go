package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

var migrationPaths = []string{
	"../../../../migrations/0001_security.up.sql",
	"../../../../migrations/0002_mess_tokens.up.sql",
}

// TestDatabaseSetup holds a connection to the test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL, applies the schema and empties
// every table. It skips the test when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	for _, path := range migrationPaths {
		schema, err := os.ReadFile(path)
		require.NoError(t, err)
		_, err = db.Exec(ctx, string(schema))
		require.NoError(t, err)
	}

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables removes all rows from the service's tables.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"mess_tokens",
		"leaves",
		"residents",
		"system_config",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
