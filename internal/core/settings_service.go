package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpeningDifferenceSetting is the settings row naming the account that absorbs the
// difference of an opening-balance voucher.
const OpeningDifferenceSetting = "Difference of Opening"

// SettingsService resolves configurable account mappings from the settings table.
type SettingsService interface {
	ResolveAccount(ctx context.Context, companyID int, name string) (int, error)
}

type settingsService struct {
	pool *pgxpool.Pool
}

// NewSettingsService constructs a SettingsService backed by the settings table.
func NewSettingsService(pool *pgxpool.Pool) SettingsService {
	return &settingsService{pool: pool}
}

// ResolveAccount returns the account id stored under name for companyID.
func (s *settingsService) ResolveAccount(ctx context.Context, companyID int, name string) (int, error) {
	var accountID int
	err := s.pool.QueryRow(ctx, `
		SELECT account_id
		FROM settings
		WHERE company_id = $1
		  AND name = $2
		  AND account_id IS NOT NULL
		LIMIT 1
	`, companyID, name).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("no setting %q for company_id %d: %w", name, companyID, ErrSettingNotFound)
		}
		return 0, fmt.Errorf("failed to resolve setting (company_id=%d, name=%q): %w", companyID, name, err)
	}
	return accountID, nil
}
