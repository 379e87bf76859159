package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"wagerhub/application"
	"wagerhub/domain/entities"
	"wagerhub/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// race runs every fn at once and returns their errors in order
func race(fns ...func() error) []error {
	errs := make([]error, len(fns))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

// splitErrors counts successes and checks every failure is the expected one
func splitErrors(t *testing.T, errs []error, expected error) int {
	t.Helper()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, expected)
	}
	return succeeded
}

func createWager(t *testing.T, runner *application.ServiceRunner, creator, opponent, gameID, amount int64) *entities.Wager {
	t.Helper()
	var wager *entities.Wager
	require.NoError(t, runner.Run(context.Background(), func(s *application.Services) error {
		var err error
		wager, err = s.Wagers.CreateWager(context.Background(), creator, opponent, gameID, amount, "best of three")
		return err
	}))
	return wager
}

func acceptWager(runner *application.ServiceRunner, wagerID, opponent int64) error {
	return runner.Run(context.Background(), func(s *application.Services) error {
		_, err := s.Wagers.AcceptWager(context.Background(), wagerID, opponent)
		return err
	})
}

func requireNotOverstaked(t *testing.T, runner *application.ServiceRunner, userIDs ...int64) {
	t.Helper()
	for _, userID := range userIDs {
		require.NoError(t, runner.Run(context.Background(), func(s *application.Services) error {
			wallet, err := s.UoW.WalletRepository().GetByUserID(context.Background(), userID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, wallet.AvailableTokens, int64(0), "user %d staked more than they hold", userID)
			return nil
		}))
	}
}

func TestConcurrentAcceptsCannotOverstake(t *testing.T) {
	testDB, runner := setupRunner(t)
	gameID := testDB.CreateGame(t, "Race Chess")
	opponent := testDB.CreateUser(t, "popular")
	testDB.FundWallet(t, opponent, "0", 100)

	var fns []func() error
	for i := 0; i < 4; i++ {
		creator := testDB.CreateUser(t, fmt.Sprintf("challenger%d", i))
		testDB.FundWallet(t, creator, "0", 100)
		wager := createWager(t, runner, creator, opponent, gameID, 100)
		fns = append(fns, func() error { return acceptWager(runner, wager.ID, opponent) })
	}

	errs := race(fns...)
	assert.Equal(t, 1, splitErrors(t, errs, entities.ErrInsufficientTokens), "only one 100 token stake fits")
	requireNotOverstaked(t, runner, opponent)
}

func TestConcurrentCreatesCannotOverstake(t *testing.T) {
	testDB, runner := setupRunner(t)
	gameID := testDB.CreateGame(t, "Race Poker")
	creator := testDB.CreateUser(t, "eager")
	testDB.FundWallet(t, creator, "0", 100)

	var fns []func() error
	for i := 0; i < 4; i++ {
		opponent := testDB.CreateUser(t, fmt.Sprintf("target%d", i))
		fns = append(fns, func() error {
			return runner.Run(context.Background(), func(s *application.Services) error {
				_, err := s.Wagers.CreateWager(context.Background(), creator, opponent, gameID, 60, "")
				return err
			})
		})
	}

	errs := race(fns...)
	assert.Equal(t, 1, splitErrors(t, errs, entities.ErrInsufficientTokens))
	requireNotOverstaked(t, runner, creator)
}

func TestConcurrentConvertAndAccept(t *testing.T) {
	testDB, runner := setupRunner(t)
	gameID := testDB.CreateGame(t, "Race FIFA")
	creator := testDB.CreateUser(t, "host")
	opponent := testDB.CreateUser(t, "cashing-out")
	testDB.FundWallet(t, creator, "0", 100)
	testDB.FundWallet(t, opponent, "0", 100)
	wager := createWager(t, runner, creator, opponent, gameID, 100)

	errs := race(
		func() error { return acceptWager(runner, wager.ID, opponent) },
		func() error {
			return runner.Run(context.Background(), func(s *application.Services) error {
				_, err := s.Wallet.ConvertToCurrency(context.Background(), opponent, 100)
				return err
			})
		},
	)
	assert.Equal(t, 1, splitErrors(t, errs, entities.ErrInsufficientTokens))
	requireNotOverstaked(t, runner, opponent)
}

func TestConcurrentDepositsRespectDailyLimit(t *testing.T) {
	testDB, runner := setupRunner(t)
	testDB.SetDailyDepositLimit(t, "100.00")
	workflow := newWorkflow(runner)
	userID := testDB.CreateUser(t, "rapid")

	fns := make([]func() error, 5)
	for i := range fns {
		fns[i] = func() error {
			_, err := workflow.Deposit(context.Background(), userID, "stripe", decimal.RequireFromString("60.00"))
			return err
		}
	}

	errs := race(fns...)
	assert.Equal(t, 1, splitErrors(t, errs, entities.ErrLimitExceeded))

	wallet, err := repository.NewWalletRepository(testDB.DB).GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("60.00")), "balance %s", wallet.Balance)
}

func TestConcurrentOppositeSettlementsDoNotDeadlock(t *testing.T) {
	testDB, runner := setupRunner(t)
	gameID := testDB.CreateGame(t, "Race Street Fighter")
	alice := testDB.CreateUser(t, "alice")
	bob := testDB.CreateUser(t, "bob")
	testDB.FundWallet(t, alice, "0", 1000)
	testDB.FundWallet(t, bob, "0", 1000)

	var fns []func() error
	for i := 0; i < 10; i++ {
		creator, opponent := alice, bob
		if i%2 == 1 {
			creator, opponent = bob, alice
		}
		wager := createWager(t, runner, creator, opponent, gameID, 50)
		require.NoError(t, acceptWager(runner, wager.ID, opponent))

		// Even wagers go to alice, odd ones to bob
		winner := alice
		if i%2 == 1 {
			winner = bob
		}
		fns = append(fns, func() error {
			return runner.Run(context.Background(), func(s *application.Services) error {
				_, err := s.Wagers.CompleteWager(context.Background(), wager.ID, creator, winner)
				return err
			})
		})
	}

	for i, err := range race(fns...) {
		require.NoError(t, err, "settling wager %d", i)
	}

	wallets := repository.NewWalletRepository(testDB.DB)
	for _, userID := range []int64{alice, bob} {
		wallet, err := wallets.GetByUserID(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), wallet.TokenBalance, "five wins and five losses of 50")
		assert.Equal(t, int64(1000), wallet.AvailableTokens)
	}
}
