package application_test

import (
	"os"
	"testing"
	"time"

	"wagerhub/application"
	"wagerhub/config"
	"wagerhub/domain/services"
	"wagerhub/repository"
	"wagerhub/repository/testutil"
)

func TestMain(m *testing.M) {
	// Set up test config once for all tests
	config.SetTestConfig(config.NewTestConfig())
	_ = config.Get()

	os.Exit(m.Run())
}

// setupRunner starts a migrated database and a runner over plain repository units of work
func setupRunner(t *testing.T) (*testutil.TestDatabase, *application.ServiceRunner) {
	t.Helper()
	testDB := testutil.SetupTestDatabase(t)
	tokens := services.NewTokenManager("application-test-secret", time.Hour)
	return testDB, application.NewServiceRunner(repository.NewUnitOfWorkFactory(testDB.DB), tokens, nil)
}
