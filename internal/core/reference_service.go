package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceService loads the lookup tables a voucher form resolves against.
type ReferenceService interface {
	Load(ctx context.Context, companyID int) (*ReferenceData, error)
}

type referenceService struct {
	pool *pgxpool.Pool
}

// NewReferenceService constructs a ReferenceService backed by the master-data tables.
func NewReferenceService(pool *pgxpool.Pool) ReferenceService {
	return &referenceService{pool: pool}
}

// Load reads every table in id order, so first-match-wins name resolution is stable.
func (s *referenceService) Load(ctx context.Context, companyID int) (*ReferenceData, error) {
	ref := &ReferenceData{}

	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, is_group
		FROM accounts
		WHERE company_id = $1
		ORDER BY id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	ref.Accounts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Account, error) {
		var a Account
		err := row.Scan(&a.ID, &a.Code, &a.Name, &a.IsGroup)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan accounts: %w", err)
	}

	tables := []struct {
		name string
		dst  *[]RefItem
	}{
		{"cost_centers", &ref.CostCenters},
		{"departments", &ref.Departments},
		{"partners", &ref.Partners},
		{"employees", &ref.Employees},
	}
	for _, t := range tables {
		items, err := s.loadItems(ctx, t.name, companyID)
		if err != nil {
			return nil, err
		}
		*t.dst = items
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, name, COALESCE(gl_account_id, 0)
		FROM bank_accounts
		WHERE company_id = $1
		ORDER BY id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	ref.BankAccounts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (BankAccount, error) {
		var b BankAccount
		err := row.Scan(&b.ID, &b.Name, &b.GLAccountID)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank accounts: %w", err)
	}

	return ref, nil
}

// loadItems reads an id/name table. table is always one of the fixed names in Load.
func (s *referenceService) loadItems(ctx context.Context, table string, companyID int) ([]RefItem, error) {
	query := fmt.Sprintf("SELECT id, name FROM %s WHERE company_id = $1 ORDER BY id", pgx.Identifier{table}.Sanitize())
	rows, err := s.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (RefItem, error) {
		var it RefItem
		err := row.Scan(&it.ID, &it.Name)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}
	return items, nil
}
