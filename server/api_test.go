package server_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthEndpoints(t *testing.T) {
	api := setupAPI(t, 10)

	_, token := api.register("Ada", "ada@example.com")

	status, env := api.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ada again", "email": "ADA@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = api.call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Message)

	status, env = api.call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Message)

	status, env = api.call(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "player", me.Role)

	status, _ = api.call(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = api.call(http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", env.Message)

	status, _ = api.call(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = api.call(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestLoginRateLimit(t *testing.T) {
	api := setupAPI(t, 2)
	api.register("Limited", "limited@example.com")

	body := map[string]string{"email": "limited@example.com", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		status, _ := api.call(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	status, env := api.call(http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.False(t, env.Success)
}

func TestLoginRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	api := setupAPI(t, 1)
	api.register("Spoofer", "spoofer@example.com")

	body := map[string]string{"email": "spoofer@example.com", "password": "wrong-password"}
	status, _ := api.callWithHeaders(http.MethodPost, "/api/auth/login", "", body,
		map[string]string{"X-Forwarded-For": "203.0.113.1"})
	assert.Equal(t, http.StatusUnauthorized, status)

	for _, ip := range []string{"203.0.113.2", "198.51.100.7", "192.0.2.200"} {
		status, env := api.callWithHeaders(http.MethodPost, "/api/auth/login", "", body,
			map[string]string{"X-Forwarded-For": ip, "X-Real-IP": ip})
		assert.Equal(t, http.StatusTooManyRequests, status, "forwarded for %s", ip)
		assert.False(t, env.Success)
	}
}

func TestWalletAndTokenEndpoints(t *testing.T) {
	api := setupAPI(t, 10)
	_, token := api.register("Saver", "saver@example.com")

	status, env := api.call(http.MethodGet, "/api/token-management/value", token, nil)
	require.Equal(t, http.StatusOK, status)
	var rate struct {
		Rate decimal.Decimal `json:"rate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &rate))
	assert.True(t, rate.Rate.Equal(decimal.NewFromInt(100)))

	status, env = api.call(http.MethodPost, "/api/payments/deposit", token, map[string]any{
		"processor": "cashApp", "amount": "50.00",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = api.call(http.MethodPost, "/api/payments/convert-to-tokens", token, map[string]any{"amount": "12.345"})
	assert.Equal(t, http.StatusBadRequest, status, "sub-cent amounts are rejected")

	status, env = api.call(http.MethodPost, "/api/payments/convert-to-tokens", token, map[string]any{"amount": "20.00"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var conversion struct {
		Tokens int64 `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conversion))
	assert.Equal(t, int64(2000), conversion.Tokens)

	status, env = api.call(http.MethodPost, "/api/payments/convert-to-currency", token, map[string]any{"tokens": 500})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = api.call(http.MethodGet, "/api/payments/wallet", token, nil)
	require.Equal(t, http.StatusOK, status)
	var view struct {
		Wallet struct {
			Balance         decimal.Decimal `json:"balance"`
			TokenBalance    int64           `json:"tokenBalance"`
			AvailableTokens int64           `json:"availableTokens"`
		} `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.Wallet.Balance.Equal(decimal.RequireFromString("35.00")), view.Wallet.Balance.String())
	assert.Equal(t, int64(1500), view.Wallet.TokenBalance)
	assert.Equal(t, int64(1500), view.Wallet.AvailableTokens)

	status, env = api.call(http.MethodPost, "/api/payments/withdraw", token, map[string]any{
		"processor": "venmo", "amount": "5.00",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.call(http.MethodGet, "/api/payments/transactions", token, nil)
	require.Equal(t, http.StatusOK, status)
	var txs []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &txs))
	assert.Len(t, txs, 3)

	status, env = api.call(http.MethodGet, "/api/payments/providers", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["cashapp","paypal","strike","stripe"]`, string(env.Data))
}

func TestWagerEndpoints(t *testing.T) {
	api := setupAPI(t, 10)
	creatorID, creatorToken := api.register("Creator", "creator@example.com")
	opponentID, opponentToken := api.register("Opponent", "opponent@example.com")
	api.db.FundWallet(t, creatorID, "0", 1000)
	api.db.FundWallet(t, opponentID, "0", 1000)
	gameID := api.db.CreateGame(t, "Duel Masters")

	status, env := api.call(http.MethodPost, "/api/p2p/wager", creatorToken, map[string]any{
		"opponentId": creatorID, "gameId": gameID, "amount": 100,
	})
	assert.Equal(t, http.StatusBadRequest, status, "self wagers are rejected")

	status, env = api.call(http.MethodPost, "/api/p2p/wager", creatorToken, map[string]any{
		"opponentId": opponentID, "gameId": gameID, "amount": 5000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "stake above available tokens")

	status, env = api.call(http.MethodPost, "/api/p2p/wager", creatorToken, map[string]any{
		"opponentId": opponentID, "gameId": gameID, "amount": 300, "terms": "best of three",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var wager struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &wager))
	assert.Equal(t, "pending", wager.Status)

	path := fmt.Sprintf("/api/p2p/wager/%d", wager.ID)

	status, _ = api.call(http.MethodPost, path+"/accept", creatorToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "creator cannot accept their own wager")

	status, env = api.call(http.MethodPost, path+"/complete", creatorToken, map[string]any{"winnerId": creatorID})
	assert.Equal(t, http.StatusConflict, status, "pending wagers cannot be completed")

	status, env = api.call(http.MethodPost, path+"/accept", opponentToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = api.call(http.MethodPost, path+"/complete", creatorToken, map[string]any{"winnerId": opponentID})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, &wager))
	assert.Equal(t, "completed", wager.Status)

	status, _ = api.call(http.MethodPost, path+"/complete", opponentToken, map[string]any{"winnerId": opponentID})
	assert.Equal(t, http.StatusConflict, status, "a wager settles once")

	status, env = api.call(http.MethodGet, "/api/payments/wallet", opponentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var view struct {
		Wallet struct {
			TokenBalance int64 `json:"tokenBalance"`
		} `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, int64(1300), view.Wallet.TokenBalance)

	status, env = api.call(http.MethodGet, "/api/p2p/wagers?active=true", creatorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, _ = api.call(http.MethodGet, "/api/p2p/wager/abc", creatorToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStaffAndAdminGuards(t *testing.T) {
	api := setupAPI(t, 10)
	_, playerToken := api.register("Player", "player@example.com")
	adminID, _ := api.register("Admin", "admin@example.com")
	adminToken := api.promote(adminID, "admin@example.com", "admin")
	modID, _ := api.register("Mod", "mod@example.com")
	modToken := api.promote(modID, "mod@example.com", "moderator")

	tournament := map[string]any{
		"name":            "Friday Cup",
		"gameId":          api.db.CreateGame(t, "Cup Game"),
		"startDate":       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"endDate":         time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"maxParticipants": 8,
		"entryFee":        50,
	}

	status, _ := api.call(http.MethodPost, "/api/tournaments", playerToken, tournament)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := api.call(http.MethodPost, "/api/tournaments", modToken, tournament)
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, _ = api.call(http.MethodPut, "/api/token-management/value", modToken, map[string]any{"rate": "150"})
	assert.Equal(t, http.StatusForbidden, status, "moderators are staff but not admins")

	status, env = api.call(http.MethodPut, "/api/token-management/value", adminToken, map[string]any{"rate": "150"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = api.call(http.MethodGet, "/api/token-management/history", playerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)

	status, _ = api.call(http.MethodGet, "/api/dashboard/metrics", playerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.call(http.MethodGet, "/api/dashboard/metrics", modToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)

	status, _ = api.call(http.MethodGet, "/api/admin/users", modToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = api.call(http.MethodGet, "/api/admin/users?limit=2", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Users []map[string]any `json:"users"`
		Total int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(3), page.Total)

	status, _ = api.call(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", modID), adminToken, map[string]any{"role": "emperor"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRoleChangeAppliesToIssuedTokens(t *testing.T) {
	api := setupAPI(t, 10)
	adminID, _ := api.register("Root", "root@example.com")
	adminToken := api.promote(adminID, "root@example.com", "admin")
	deputyID, _ := api.register("Deputy", "deputy@example.com")
	deputyToken := api.promote(deputyID, "deputy@example.com", "admin")
	playerID, playerToken := api.register("Climber", "climber@example.com")

	status, _ := api.call(http.MethodGet, "/api/admin/users", deputyToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := api.call(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", deputyID), adminToken, map[string]any{"role": "player"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = api.call(http.MethodGet, "/api/admin/users", deputyToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "demoted admin keeps an admin token")
	assert.Equal(t, "Admin access required", env.Message)

	status, _ = api.call(http.MethodGet, "/api/dashboard/metrics", deputyToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.call(http.MethodGet, "/api/dashboard/metrics", playerToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	status, env = api.call(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", playerID), adminToken, map[string]any{"role": "moderator"})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = api.call(http.MethodGet, "/api/dashboard/metrics", playerToken, nil)
	assert.Equal(t, http.StatusOK, status, env.Message)
}

func TestDeletedAccountTokenRejected(t *testing.T) {
	api := setupAPI(t, 10)
	userID, token := api.register("Ghost", "ghost@example.com")

	_, err := api.db.DB.Exec(t.Context(), `DELETE FROM wallets WHERE user_id = $1`, userID)
	require.NoError(t, err)
	_, err = api.db.DB.Exec(t.Context(), `DELETE FROM users WHERE id = $1`, userID)
	require.NoError(t, err)

	status, env := api.call(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestHealth(t *testing.T) {
	api := setupAPI(t, 10)
	status, env := api.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}
