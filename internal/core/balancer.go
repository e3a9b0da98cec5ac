package core

import (
	"fmt"
	"strings"
)

// Balancer builds and repairs double-entry voucher line sets. It holds only configuration,
// so one value can serve any number of independent vouchers.
type Balancer struct {
	// DefaultGLAccountID is posted against when the selected bank account has no GL code.
	DefaultGLAccountID int
}

// NewBalancer returns a Balancer that falls back to defaultGLAccountID for the balancing leg.
func NewBalancer(defaultGLAccountID int) *Balancer {
	return &Balancer{DefaultGLAccountID: defaultGLAccountID}
}

// SumSide adds up side s over lines. Blank amounts decode as zero, so nothing is skipped.
func SumSide(lines []VoucherLine, s Side) Amount {
	total := Zero
	for _, l := range lines {
		total = total.Add(l.Amount(s))
	}
	return total
}

// RecomputeHeaderTotal returns the line sum on side s, rounded to two places.
func (b *Balancer) RecomputeHeaderTotal(lines []VoucherLine, s Side) Amount {
	return SumSide(lines, s).Round2()
}

// RemainingAmount is the part of the header total not yet allocated on side s.
// It is not clamped; over-allocation yields a negative value.
func (b *Balancer) RemainingAmount(header VoucherHeader, lines []VoucherLine, s Side) Amount {
	return header.AmountTotal.Sub(SumSide(lines, s))
}

// NewLine returns the line to append next under the fixed-header policy: the remaining
// amount on the active side and zero on the other.
func (b *Balancer) NewLine(header VoucherHeader, lines []VoucherLine) VoucherLine {
	side := header.FormType.ActiveSide()
	var l VoucherLine
	l.SetAmount(side, b.RemainingAmount(header, lines, side))
	return l
}

// ReconcileAndValidateTotals compares the user-entered lines against the header total.
// The balancing leg must not be included in lines.
func (b *Balancer) ReconcileAndValidateTotals(header VoucherHeader, lines []VoucherLine) error {
	actual := SumSide(lines, header.FormType.ActiveSide())
	if !actual.ApproxEqual(header.AmountTotal) {
		return &MismatchError{Expected: header.AmountTotal, Actual: actual}
	}
	return nil
}

// SubmitOptions carries the per-submission values that are not part of the voucher.
type SubmitOptions struct {
	UserID int
	State  VoucherState
	// BankLegID is the line id of the persisted balancing leg when an edit is resubmitted.
	BankLegID int
}

// BuildSubmissionPayload stamps the user lines, appends the balancing leg against bank and
// returns the payload for the create/edit API. It does not check the header total against
// the lines; call ReconcileAndValidateTotals first. The leg carries the line sum rather
// than the header total, so debits equal credits even when the two differ within Tolerance.
func (b *Balancer) BuildSubmissionPayload(header VoucherHeader, lines []VoucherLine, bank *BankAccountSelection, opts SubmitOptions) (*SubmissionPayload, error) {
	if bank == nil {
		return nil, errNoBankAccount()
	}
	if !header.AmountTotal.IsPositive() {
		return nil, errInvalidAmount()
	}
	if !header.FormType.Valid() {
		return nil, &ValidationError{Field: "form_type", Msg: fmt.Sprintf("unknown transaction direction %q", header.FormType)}
	}

	accountID := bank.GLCode
	if accountID == 0 {
		accountID = b.DefaultGLAccountID
	}
	amount := SumSide(lines, header.FormType.ActiveSide())
	return b.assemble(header, lines, accountID, bank.ID, amount, opts), nil
}

// BuildOpeningBalancePayload builds an opening-balance submission. The header total is
// recomputed from the lines, and the difference account is used for the balancing leg
// when no bank account is selected.
func (b *Balancer) BuildOpeningBalancePayload(header VoucherHeader, lines []VoucherLine, bank *BankAccountSelection, differenceAccountID int, opts SubmitOptions) (*SubmissionPayload, error) {
	if !header.FormType.Valid() {
		return nil, &ValidationError{Field: "form_type", Msg: fmt.Sprintf("unknown transaction direction %q", header.FormType)}
	}
	header.AmountTotal = b.RecomputeHeaderTotal(lines, header.FormType.ActiveSide())
	if !header.AmountTotal.IsPositive() {
		return nil, errInvalidAmount()
	}

	accountID, bankID := differenceAccountID, 0
	if bank != nil {
		bankID = bank.ID
		if bank.GLCode != 0 {
			accountID = bank.GLCode
		}
	}
	if accountID == 0 {
		accountID = b.DefaultGLAccountID
	}
	if accountID == 0 {
		return nil, &ValidationError{Field: "bank_account", Msg: "no balancing account configured"}
	}
	return b.assemble(header, lines, accountID, bankID, header.AmountTotal, opts), nil
}

func (b *Balancer) assemble(header VoucherHeader, lines []VoucherLine, accountID, bankID int, amount Amount, opts SubmitOptions) *SubmissionPayload {
	header.State = opts.State
	header.CreatedBy = opts.UserID

	out := make([]VoucherLine, 0, len(lines)+1)
	for _, l := range lines {
		l.CreatedBy = opts.UserID
		l.Note = strings.TrimSpace(l.Note)
		l.ChequeNo = strings.TrimSpace(l.ChequeNo)
		out = append(out, l)
	}

	leg := VoucherLine{
		ID:            opts.BankLegID,
		AccountID:     accountID,
		BankAccountID: bankID,
		Note:          header.Notes,
		CreatedBy:     opts.UserID,
	}
	leg.SetAmount(header.FormType.BalancingSide(), amount)
	out = append(out, leg)

	return &SubmissionPayload{Header: header, Lines: out}
}

// ReverseVoucher swaps debit and credit on every line and tags each with note. All other
// fields, including the persisted bank leg, are kept as they are. Applying it twice
// restores the original amounts.
func ReverseVoucher(lines []VoucherLine, note string) []VoucherLine {
	out := make([]VoucherLine, len(lines))
	for i, l := range lines {
		l.Debit, l.Credit = l.Credit, l.Debit
		if note != "" {
			l.ReversalNote = note
		}
		out[i] = l
	}
	return out
}

// BuildReversalPayload derives a new voucher that negates the original. The header is
// linked back through ReversalOf and its notes.
func BuildReversalPayload(original VoucherHeader, voucherID int, lines []VoucherLine, note string, opts SubmitOptions) (*SubmissionPayload, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyVoucher
	}
	header := original
	header.ID = 0
	header.ReversalOf = voucherID
	header.FormType = original.FormType.Opposite()
	header.State = opts.State
	header.CreatedBy = opts.UserID
	header.Notes = fmt.Sprintf("Reversal of voucher %d", voucherID)
	if note != "" {
		header.Notes += ": " + note
	}

	reversed := ReverseVoucher(lines, note)
	for i := range reversed {
		reversed[i].ID = 0
		reversed[i].CreatedBy = opts.UserID
	}
	return &SubmissionPayload{Header: header, Lines: reversed}, nil
}
