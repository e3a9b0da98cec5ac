package app

import "voucher-engine/internal/core"

// PayloadResult is a ready-to-submit voucher with its column totals.
type PayloadResult struct {
	Payload     *core.SubmissionPayload `json:"payload"`
	TotalDebit  core.Amount             `json:"total_debit"`
	TotalCredit core.Amount             `json:"total_credit"`
}

// ValidationResult reports whether the user lines partition the header total.
type ValidationResult struct {
	Balanced   bool        `json:"balanced"`
	Expected   core.Amount `json:"expected"`
	Actual     core.Amount `json:"actual"`
	Difference core.Amount `json:"difference"`
}

// LinesResult is the form state after a line operation.
type LinesResult struct {
	Header    *core.VoucherHeader `json:"header,omitempty"`
	Lines     []core.VoucherLine  `json:"lines"`
	Remaining core.Amount         `json:"remaining"`
}

// EditFormResult is a stored voucher ready for editing. Warnings lists reference names
// that no longer resolve; their ids are 0 and must be re-picked before saving.
type EditFormResult struct {
	Form      *core.EditableForm `json:"form"`
	Remaining core.Amount        `json:"remaining"`
	Warnings  []string           `json:"warnings,omitempty"`
}

func newPayloadResult(p *core.SubmissionPayload) *PayloadResult {
	debit, credit := p.Totals()
	return &PayloadResult{Payload: p, TotalDebit: debit, TotalCredit: credit}
}
