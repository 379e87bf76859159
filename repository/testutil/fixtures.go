package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateUser inserts a player with an empty wallet and returns the user ID
func (td *TestDatabase) CreateUser(t *testing.T, name string) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := td.DB.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, 'x')
		RETURNING id
	`, name, fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano())).Scan(&id)
	require.NoError(t, err)

	_, err = td.DB.Exec(ctx, `INSERT INTO wallets (user_id) VALUES ($1)`, id)
	require.NoError(t, err)
	return id
}

// FundWallet sets a wallet's currency and token balances directly
func (td *TestDatabase) FundWallet(t *testing.T, userID int64, balance string, tokens int64) {
	t.Helper()
	_, err := td.DB.Exec(context.Background(),
		`UPDATE wallets SET balance = $2, token_balance = $3 WHERE user_id = $1`,
		userID, decimal.RequireFromString(balance), tokens)
	require.NoError(t, err)
}

// CreateGame inserts an active game and returns its ID
func (td *TestDatabase) CreateGame(t *testing.T, name string) int64 {
	t.Helper()
	var id int64
	err := td.DB.QueryRow(context.Background(),
		`INSERT INTO games (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}
