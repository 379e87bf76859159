package entities

import "github.com/shopspring/decimal"

// DashboardMetrics are platform-wide aggregates for staff
type DashboardMetrics struct {
	TotalUsers          int64           `json:"totalUsers"`
	ActiveTournaments   int64           `json:"activeTournaments"`
	UpcomingTournaments int64           `json:"upcomingTournaments"`
	PendingWagers       int64           `json:"pendingWagers"`
	AcceptedWagers      int64           `json:"acceptedWagers"`
	CompletedWagers     int64           `json:"completedWagers"`
	TotalDeposits       decimal.Decimal `json:"totalDeposits"`
	TotalWithdrawals    decimal.Decimal `json:"totalWithdrawals"`
	TokensInCirculation int64           `json:"tokensInCirculation"`
	PendingReviews      int64           `json:"pendingReviews"`
	ActiveSubscriptions int64           `json:"activeSubscriptions"`
	TopGames            []*Game         `json:"topGames"`
	CurrentTokenRate    decimal.Decimal `json:"currentTokenRate"`
}

// UserDashboard is the per-user landing view
type UserDashboard struct {
	Wallet              *Wallet         `json:"wallet"`
	ActiveWagers        []*Wager        `json:"activeWagers"`
	Tournaments         []*Tournament   `json:"tournaments"`
	UnreadNotifications int64           `json:"unreadNotifications"`
	Subscription        *Subscription   `json:"subscription,omitempty"`
	TokenRate           decimal.Decimal `json:"tokenRate"`
}
