package app

import (
	"context"
)

// Session identifies who is acting and for which company. Adapters build it from their
// own credentials (JWT claims, CLI flags) and pass it explicitly on every call.
type Session struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username,omitempty"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role,omitempty"`
}

// VoucherService is the single interface all adapters (CLI, Web) call.
// It decouples presentation from the balancing engine. Implementations must contain
// no fmt.Println and no display logic of any kind.
type VoucherService interface {
	// PrepareBankVoucher reconciles a bank/cash voucher against its fixed header total and
	// returns the balanced submission payload.
	PrepareBankVoucher(ctx context.Context, s Session, req BankVoucherRequest) (*PayloadResult, error)

	// ValidateBankVoucher runs the totals check without building a payload. A mismatch is
	// reported in the result, not as an error.
	ValidateBankVoucher(ctx context.Context, s Session, req BankVoucherRequest) (*ValidationResult, error)

	// PrepareOpeningBalance builds an opening-balance payload whose header total follows
	// the lines. The company's opening-difference account balances it when no bank account
	// is given.
	PrepareOpeningBalance(ctx context.Context, s Session, req OpeningBalanceRequest) (*PayloadResult, error)

	// AppendLine adds one line to an in-progress voucher under the requested total policy.
	AppendLine(ctx context.Context, s Session, req AppendLineRequest) (*LinesResult, error)

	// ReverseLines swaps debit and credit on a line set.
	ReverseLines(ctx context.Context, s Session, req ReverseLinesRequest) (*LinesResult, error)

	// LoadVoucherForEdit fetches a stored voucher and maps it back to an editable form.
	LoadVoucherForEdit(ctx context.Context, s Session, voucherID int) (*EditFormResult, error)

	// PrepareReversal builds the payload of a new voucher that reverses a stored one.
	PrepareReversal(ctx context.Context, s Session, req ReversalRequest) (*PayloadResult, error)
}
