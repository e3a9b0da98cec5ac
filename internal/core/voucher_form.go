package core

import "fmt"

// VoucherForm is one editing session over a header and its growing line list. It applies
// the chosen TotalPolicy after every mutation. A form is owned by a single caller.
type VoucherForm struct {
	Header      VoucherHeader
	Lines       []VoucherLine
	BankAccount *BankAccountSelection
	Policy      TotalPolicy
	// DifferenceAccountID balances opening-balance forms that have no bank account.
	DifferenceAccountID int
	// BankLegID is the persisted balancing line of an edited voucher.
	BankLegID int

	balancer *Balancer
}

// NewVoucherForm starts a session with no lines.
func NewVoucherForm(b *Balancer, header VoucherHeader, policy TotalPolicy) *VoucherForm {
	f := &VoucherForm{Header: header, Policy: policy, balancer: b}
	f.track()
	return f
}

// NewVoucherFormFromEdit resumes a session from a persisted voucher.
func NewVoucherFormFromEdit(b *Balancer, ef *EditableForm, policy TotalPolicy) *VoucherForm {
	f := &VoucherForm{
		Header:      ef.Header,
		Lines:       append([]VoucherLine(nil), ef.Lines...),
		BankAccount: ef.BankAccount,
		Policy:      policy,
		balancer:    b,
	}
	if ef.BankLeg != nil {
		f.BankLegID = ef.BankLeg.ID
	}
	f.track()
	return f
}

// ActiveSide is the side user amounts are entered on.
func (f *VoucherForm) ActiveSide() Side {
	return f.Header.FormType.ActiveSide()
}

// AppendLine adds a line. Under PolicyFixedHeader it is pre-filled with the remaining
// amount, so the line sum equals the header total right after the append.
func (f *VoucherForm) AppendLine(l VoucherLine) int {
	if f.Policy == PolicyFixedHeader {
		l.SetAmount(f.ActiveSide(), f.Remaining())
	}
	f.Lines = append(f.Lines, l)
	f.track()
	return len(f.Lines) - 1
}

// SetLines replaces every line, keeping only each line's active-side amount.
func (f *VoucherForm) SetLines(lines []VoucherLine) {
	side := f.ActiveSide()
	f.Lines = make([]VoucherLine, len(lines))
	for i, l := range lines {
		l.SetAmount(side, l.Amount(side))
		f.Lines[i] = l
	}
	f.track()
}

// SetAmount sets line i's active-side amount.
func (f *VoucherForm) SetAmount(i int, a Amount) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	f.Lines[i].SetAmount(f.ActiveSide(), a)
	f.track()
	return nil
}

// UpdateLine replaces line i, keeping only its active-side amount.
func (f *VoucherForm) UpdateLine(i int, l VoucherLine) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	l.SetAmount(f.ActiveSide(), l.Amount(f.ActiveSide()))
	f.Lines[i] = l
	f.track()
	return nil
}

// RemoveLine deletes line i.
func (f *VoucherForm) RemoveLine(i int) error {
	if err := f.checkIndex(i); err != nil {
		return err
	}
	f.Lines = append(f.Lines[:i], f.Lines[i+1:]...)
	f.track()
	return nil
}

// Reset clears the lines and keeps the header, for repeated entry after a submit. The
// next submission is a new voucher, so the edit ids are dropped.
func (f *VoucherForm) Reset() {
	f.Lines = nil
	f.Header.ID = 0
	f.BankLegID = 0
	f.track()
}

// SetDirection switches the transaction direction. Existing amounts move to the new
// active side.
func (f *VoucherForm) SetDirection(d Direction) {
	old := f.ActiveSide()
	f.Header.FormType = d
	for i := range f.Lines {
		f.Lines[i].SetAmount(f.ActiveSide(), f.Lines[i].Amount(old))
	}
	f.track()
}

// Remaining is the header total not yet allocated to lines.
func (f *VoucherForm) Remaining() Amount {
	return f.balancer.RemainingAmount(f.Header, f.Lines, f.ActiveSide())
}

// Validate runs the totals check on the user lines.
func (f *VoucherForm) Validate() error {
	return f.balancer.ReconcileAndValidateTotals(f.Header, f.Lines)
}

// Payload reconciles the totals and builds the submission for the requested state.
func (f *VoucherForm) Payload(opts SubmitOptions) (*SubmissionPayload, error) {
	if opts.BankLegID == 0 {
		opts.BankLegID = f.BankLegID
	}
	if f.Policy == PolicyTrackLines {
		return f.balancer.BuildOpeningBalancePayload(f.Header, f.Lines, f.BankAccount, f.DifferenceAccountID, opts)
	}
	if f.BankAccount == nil {
		return nil, errNoBankAccount()
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.balancer.BuildSubmissionPayload(f.Header, f.Lines, f.BankAccount, opts)
}

func (f *VoucherForm) track() {
	if f.Policy == PolicyTrackLines {
		f.Header.AmountTotal = f.balancer.RecomputeHeaderTotal(f.Lines, f.ActiveSide())
	}
}

func (f *VoucherForm) checkIndex(i int) error {
	if i < 0 || i >= len(f.Lines) {
		return fmt.Errorf("line %d out of range (have %d)", i, len(f.Lines))
	}
	return nil
}
