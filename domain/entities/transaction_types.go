package entities

// TransactionType represents the kind of wallet movement
type TransactionType string

// All transaction types supported by the system
const (
	// Payment provider transactions (currency)
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	// Conversions between currency and tokens
	TransactionTypeTokenPurchase   TransactionType = "token_purchase"
	TransactionTypeTokenRedemption TransactionType = "token_redemption"

	// Wager settlement (tokens)
	TransactionTypeWagerWin  TransactionType = "wager_win"
	TransactionTypeWagerLoss TransactionType = "wager_loss"

	// Tournament transactions (tokens)
	TransactionTypeTournamentEntry  TransactionType = "tournament_entry"
	TransactionTypeTournamentPrize  TransactionType = "tournament_prize"
	TransactionTypeTournamentRefund TransactionType = "tournament_refund"

	// Subscription billing (currency)
	TransactionTypeSubscriptionCharge TransactionType = "subscription_charge"
)

// IsProviderType returns true if the transaction goes through a payment provider
func (tt TransactionType) IsProviderType() bool {
	return tt == TransactionTypeDeposit || tt == TransactionTypeWithdrawal
}

// IsWagerType returns true if the transaction settles a wager
func (tt TransactionType) IsWagerType() bool {
	return tt == TransactionTypeWagerWin || tt == TransactionTypeWagerLoss
}

// IsTournamentType returns true for entry fees, prizes and refunds
func (tt TransactionType) IsTournamentType() bool {
	return tt == TransactionTypeTournamentEntry ||
		tt == TransactionTypeTournamentPrize ||
		tt == TransactionTypeTournamentRefund
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// TransactionStatus tracks provider-backed transactions; internal movements are created completed
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsFinal reports whether the status can no longer change
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// RelatedType identifies what a transaction's RelatedID points at
type RelatedType string

const (
	RelatedTypeWager        RelatedType = "wager"
	RelatedTypeTournament   RelatedType = "tournament"
	RelatedTypeSubscription RelatedType = "subscription"
	RelatedTypeReview       RelatedType = "compliance_review"
)
