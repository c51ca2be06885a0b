package repository

import (
	"context"
	"fmt"

	"wision/internal/kvstore"
	"wision/internal/models"
)

// AccountRepository handles login accounts keyed by email
type AccountRepository struct {
	store kvstore.Store
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(store kvstore.Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// CreateAccount inserts an account and reports false if the email is taken
func (r *AccountRepository) CreateAccount(ctx context.Context, account *models.Account) (bool, error) {
	inserted, err := kvstore.SetIfAbsentJSON(ctx, r.store, kvstore.AccountKey(account.Email), account, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create account: %w", err)
	}
	return inserted, nil
}

// GetAccountByEmail retrieves an account by email address, or nil
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	_, err := kvstore.GetJSON(ctx, r.store, kvstore.AccountKey(email), account)
	if absent(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// DeleteAccount removes the account registered under email
func (r *AccountRepository) DeleteAccount(ctx context.Context, email string) error {
	if err := r.store.Delete(ctx, kvstore.AccountKey(email)); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
