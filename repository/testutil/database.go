package testutil

import (
	"context"
	"testing"
	"time"

	"wagerhub/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// TestDatabase is a migrated and seeded Postgres container owned by one test
type TestDatabase struct {
	Container *postgres.PostgresContainer
	DB        *database.DB
	URL       string
}

// testPool leaves room for the concurrency tests, which hold one
// connection per in-flight unit of work
var testPool = database.PoolConfig{
	MaxConns:        16,
	MaxConnIdleTime: time.Minute,
}

// SetupTestDatabase starts Postgres, applies the schema and seed migrations
// and checks the seeded defaults before handing the pool to the test
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("wagerhub_test"),
		postgres.WithUsername("wagerhub"),
		postgres.WithPassword("wagerhub"),
		postgres.BasicWaitStrategies(),
		testcontainers.WithLabels(map[string]string{
			"project":   "wagerhub",
			"test-name": t.Name(),
			"cleanup":   "auto",
		}),
	)
	require.NoError(t, err)

	td := &TestDatabase{Container: container}
	t.Cleanup(func() { td.cleanup(t) })

	td.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.RunMigrationsWithURL(td.URL), "schema and seed migrations")

	td.DB, err = database.NewConnection(ctx, td.URL, testPool)
	require.NoError(t, err)

	td.requireSeeded(t)
	return td
}

// requireSeeded fails fast when the seed migration did not leave the
// singleton compliance settings and the starter games behind
func (td *TestDatabase) requireSeeded(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	var settings int
	require.NoError(t, td.DB.QueryRow(ctx, `SELECT COUNT(*) FROM compliance_settings`).Scan(&settings))
	require.Equal(t, 1, settings, "compliance settings seed")

	var games int
	require.NoError(t, td.DB.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE status = 'active'`).Scan(&games))
	require.Positive(t, games, "game seed")
}

// SetDailyDepositLimit lowers the seeded limit for limit tests
func (td *TestDatabase) SetDailyDepositLimit(t *testing.T, limit string) {
	t.Helper()
	_, err := td.DB.Exec(context.Background(),
		`UPDATE compliance_settings SET daily_deposit_limit = $1::numeric WHERE id = 1`, limit)
	require.NoError(t, err)
}

func (td *TestDatabase) cleanup(t *testing.T) {
	if td.DB != nil {
		td.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := td.Container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate test container: %v", err)
	}
}
