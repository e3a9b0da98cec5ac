package app

import "voucher-engine/internal/core"

// BankVoucherRequest is a bank/cash voucher as entered: header, user lines and the
// selected bank account.
type BankVoucherRequest struct {
	Header        core.VoucherHeader `json:"header"`
	Lines         []core.VoucherLine `json:"lines"`
	BankAccountID int                `json:"bank_account_id"`
	Status        string             `json:"status"` // "Draft" (default) or "Posted"
	// BankLegID is the stored balancing line when Header.ID names a voucher being edited.
	BankLegID     int                `json:"bank_leg_id,omitempty"`
}

// OpeningBalanceRequest is an opening-balance voucher. BankAccountID is optional.
type OpeningBalanceRequest struct {
	Header        core.VoucherHeader `json:"header"`
	Lines         []core.VoucherLine `json:"lines"`
	BankAccountID int                `json:"bank_account_id,omitempty"`
	Status        string             `json:"status"`
	BankLegID     int                `json:"bank_leg_id,omitempty"`
}

// AppendLineRequest carries the current form state and the line to add.
type AppendLineRequest struct {
	Header core.VoucherHeader `json:"header"`
	Lines  []core.VoucherLine `json:"lines"`
	Line   core.VoucherLine   `json:"line"`
	// Policy is "fixed" (bank vouchers, default) or "track" (opening balances).
	Policy string `json:"policy"`
}

// ReverseLinesRequest is a line set to reverse in place.
type ReverseLinesRequest struct {
	Lines []core.VoucherLine `json:"lines"`
	Note  string             `json:"note"`
}

// ReversalRequest identifies the stored voucher to reverse.
type ReversalRequest struct {
	VoucherID int    `json:"voucher_id"`
	Note      string `json:"note"`
	Status    string `json:"status"`
}
