package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wision/internal/models"
	"wision/internal/repository"
	"wision/internal/security"
	"wision/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is an issued bearer token
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService handles registration, login and token verification
type AuthService struct {
	accounts *repository.AccountRepository
	ledger   *LedgerService
	tokens   *security.TokenManager
	email    *EmailService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service. email may be nil.
func NewAuthService(accounts *repository.AccountRepository, ledger *LedgerService, tokens *security.TokenManager, email *EmailService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts: accounts,
		ledger:   ledger,
		tokens:   tokens,
		email:    email,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account and its profile and issues a token
func (s *AuthService) Register(ctx context.Context, email, password string, profile models.UserProfile) (*models.Account, *Session, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateName(profile.Name); err != nil {
		return nil, nil, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           security.GenerateID(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	inserted, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	if !inserted {
		return nil, nil, ErrEmailTaken
	}

	if _, err := s.ledger.CreateProfile(ctx, account.ID, profile); err != nil {
		if derr := s.accounts.DeleteAccount(context.WithoutCancel(ctx), account.Email); derr != nil {
			s.logger.Error("failed to remove account after profile error",
				zap.String("user_id", account.ID),
				zap.Error(derr))
		}
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}

	session, err := s.issue(account.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(ctx, account.Email, profile.Name); err != nil {
			s.logger.Warn("failed to send welcome email",
				zap.String("user_id", account.ID),
				zap.Error(err))
		}
	}

	return account, session, nil
}

// Login checks credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, *models.Account, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, account.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issue(account.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.ledger.Touch(ctx, account.ID); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("failed to update last active",
			zap.String("user_id", account.ID),
			zap.Error(err))
	}

	return session, account, nil
}

// VerifyToken returns the user id a bearer token was issued for
func (s *AuthService) VerifyToken(token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return userID, nil
}

func (s *AuthService) issue(userID string) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{AccessToken: token, ExpiresAt: expiresAt}, nil
}
