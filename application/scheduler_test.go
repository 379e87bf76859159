package application_test

import (
	"context"
	"testing"
	"time"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_AdvanceTournaments(t *testing.T) {
	testDB, runner := setupRunner(t)
	ctx := context.Background()
	tournaments := repository.NewTournamentRepository(testDB.DB)
	gameID := testDB.CreateGame(t, "Sweep Cup")

	started := &entities.Tournament{
		Name:            "Already started",
		GameID:          gameID,
		StartDate:       time.Now().Add(-time.Hour),
		EndDate:         time.Now().Add(time.Hour),
		Status:          entities.TournamentStatusUpcoming,
		MaxParticipants: 8,
	}
	later := &entities.Tournament{
		Name:            "Next week",
		GameID:          gameID,
		StartDate:       time.Now().Add(7 * 24 * time.Hour),
		EndDate:         time.Now().Add(8 * 24 * time.Hour),
		Status:          entities.TournamentStatusUpcoming,
		MaxParticipants: 8,
	}
	require.NoError(t, tournaments.Create(ctx, started))
	require.NoError(t, tournaments.Create(ctx, later))

	scheduler, err := application.NewScheduler(runner, "UTC")
	require.NoError(t, err)
	require.NoError(t, scheduler.AdvanceTournaments(ctx))

	got, err := tournaments.GetByID(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TournamentStatusActive, got.Status)

	got, err = tournaments.GetByID(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.TournamentStatusUpcoming, got.Status)
}

func TestScheduler_PurgeRevokedTokens(t *testing.T) {
	testDB, runner := setupRunner(t)
	ctx := context.Background()
	revoked := repository.NewRevokedTokenRepository(testDB.DB)
	userID := testDB.CreateUser(t, "logout")

	require.NoError(t, revoked.Revoke(ctx, "expired-jti", userID, time.Now().Add(-time.Minute)))
	require.NoError(t, revoked.Revoke(ctx, "live-jti", userID, time.Now().Add(time.Hour)))

	scheduler, err := application.NewScheduler(runner, "UTC")
	require.NoError(t, err)
	require.NoError(t, scheduler.PurgeRevokedTokens(ctx))

	isRevoked, err := revoked.IsRevoked(ctx, "expired-jti")
	require.NoError(t, err)
	assert.False(t, isRevoked)

	isRevoked, err = revoked.IsRevoked(ctx, "live-jti")
	require.NoError(t, err)
	assert.True(t, isRevoked)
}

func TestScheduler_RenewSubscriptionsWithNothingDue(t *testing.T) {
	_, runner := setupRunner(t)
	scheduler, err := application.NewScheduler(runner, "UTC")
	require.NoError(t, err)
	assert.NoError(t, scheduler.RenewSubscriptions(context.Background()))
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := application.NewScheduler(nil, "Mars/Olympus_Mons")
	assert.ErrorContains(t, err, "Mars/Olympus_Mons")
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler, err := application.NewScheduler(nil, "Europe/Berlin")
	require.NoError(t, err)
	require.NoError(t, scheduler.Start(context.Background()))
	scheduler.Stop()
}
