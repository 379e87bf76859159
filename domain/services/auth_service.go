package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"wagerhub/config"
	"wagerhub/domain/entities"
	"wagerhub/domain/events"
	"wagerhub/domain/interfaces"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	userRepo       interfaces.UserRepository
	walletRepo     interfaces.WalletRepository
	revokedRepo    interfaces.RevokedTokenRepository
	tokens         *TokenManager
	eventPublisher interfaces.EventPublisher
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, walletRepo interfaces.WalletRepository, revokedRepo interfaces.RevokedTokenRepository, tokens *TokenManager, eventPublisher interfaces.EventPublisher) interfaces.AuthService {
	return &authService{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		revokedRepo:    revokedRepo,
		tokens:         tokens,
		eventPublisher: eventPublisher,
	}
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a player account with an empty wallet
func (s *authService) Register(ctx context.Context, name, email, password string) (*interfaces.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", entities.ErrInvalidInput)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email address", entities.ErrInvalidInput)
	}
	if minChars := config.Get().MinPasswordChars; len(password) < minChars {
		return nil, fmt.Errorf("%w: password must be at least %d characters", entities.ErrInvalidInput, minChars)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         entities.RolePlayer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	wallet, err := s.walletRepo.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if err := s.eventPublisher.Publish(events.UserRegisteredEvent{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   string(user.Role),
	}); err != nil {
		log.WithError(err).WithField("event_type", events.EventTypeUserRegistered).Error("Failed to publish user registered event")
	}

	log.WithFields(log.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.issue(user, wallet)
}

// Login verifies credentials and issues a bearer token
func (s *authService) Login(ctx context.Context, email, password string) (*interfaces.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return s.issue(user, wallet)
}

// Logout revokes the presented token until it would have expired anyway
func (s *authService) Logout(ctx context.Context, claims *entities.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return fmt.Errorf("%w: token cannot be revoked", entities.ErrUnauthorized)
	}
	if err := s.revokedRepo.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser returns the account behind a user ID
func (s *authService) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrNotFound)
	}
	return user, nil
}

// ChangeRole assigns a new role to a user
func (s *authService) ChangeRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", entities.ErrInvalidInput, role)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = role
	return user, nil
}

func (s *authService) issue(user *entities.User, wallet *entities.Wallet) (*interfaces.AuthResult, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &interfaces.AuthResult{
		User:      user,
		Wallet:    wallet,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type authenticator struct {
	tokens      *TokenManager
	revokedRepo interfaces.RevokedTokenRepository
}

// NewAuthenticator creates the per-request token validator
func NewAuthenticator(tokens *TokenManager, revokedRepo interfaces.RevokedTokenRepository) interfaces.Authenticator {
	return &authenticator{tokens: tokens, revokedRepo: revokedRepo}
}

// Authenticate verifies a bearer token and rejects revoked ones
func (a *authenticator) Authenticate(ctx context.Context, token string) (*entities.Claims, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := a.revokedRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, entities.ErrTokenRevoked
	}
	return claims, nil
}
