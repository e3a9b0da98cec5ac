package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VoucherQueryService reads stored vouchers in the flat, display-name shape the ledger
// API returns them in.
type VoucherQueryService interface {
	GetVoucherLines(ctx context.Context, voucherID int) ([]PersistedLine, error)
}

type voucherQueryService struct {
	pool *pgxpool.Pool
}

func NewVoucherQueryService(pool *pgxpool.Pool) VoucherQueryService {
	return &voucherQueryService{pool: pool}
}

func (s *voucherQueryService) GetVoucherLines(ctx context.Context, voucherID int) ([]PersistedLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, vl.id, v.company_id, v.location_id, v.currency_id, v.exchange_rate,
		       v.voucher_date, v.notes, v.paid_to, v.reference, v.state,
		       COALESCE(a.name, ''), COALESCE(cc.name, ''), COALESCE(d.name, ''),
		       COALESCE(p.name, ''), COALESCE(e.name, ''), COALESCE(ba.name, ''),
		       vl.is_bank_leg, vl.cheque_no, vl.note, vl.debit, vl.credit
		FROM vouchers v
		INNER JOIN voucher_lines vl ON vl.voucher_id = v.id
		LEFT JOIN accounts a ON a.id = vl.account_id
		LEFT JOIN cost_centers cc ON cc.id = vl.cost_center_id
		LEFT JOIN departments d ON d.id = vl.department_id
		LEFT JOIN partners p ON p.id = vl.partner_id
		LEFT JOIN employees e ON e.id = vl.employee_id
		LEFT JOIN bank_accounts ba ON ba.id = vl.bank_account_id
		WHERE v.id = $1
		ORDER BY vl.id
	`, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lines for voucher %d: %w", voucherID, err)
	}

	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PersistedLine, error) {
		var l PersistedLine
		var state int
		err := row.Scan(
			&l.VoucherID, &l.LineID, &l.CompanyID, &l.LocationID, &l.CurrencyID, &l.ExchangeRate,
			&l.Date, &l.Notes, &l.PaidTo, &l.Reference, &state,
			&l.AccountName, &l.CostCenterName, &l.DepartmentName,
			&l.PartnerName, &l.EmployeeName, &l.BankAccountName,
			&l.IsBankLeg, &l.ChequeNo, &l.Note, &l.Debit, &l.Credit,
		)
		l.State = VoucherState(state)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan lines for voucher %d: %w", voucherID, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("voucher %d not found: %w", voucherID, ErrVoucherNotFound)
	}
	return lines, nil
}
