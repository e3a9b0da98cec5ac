package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the voucher's transaction direction relative to the selected bank/cash
// account: a Credit voucher pays out of it, a Debit voucher receives into it.
type Direction string

const (
	DirectionCredit Direction = "Credit"
	DirectionDebit  Direction = "Debit"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// ActiveSide is the side the user enters amounts on. It is the other side of the ledger
// from the bank/cash leg: a Credit voucher collects debit lines.
func (d Direction) ActiveSide() Side {
	if d == DirectionDebit {
		return SideCredit
	}
	return SideDebit
}

// BalancingSide is the side the synthesized bank/cash leg is posted on.
func (d Direction) BalancingSide() Side {
	return d.ActiveSide().Opposite()
}

func (d Direction) Opposite() Direction {
	if d == DirectionDebit {
		return DirectionCredit
	}
	return DirectionDebit
}

// Side selects the debit or credit column of a line.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// VoucherState is the lifecycle state sent to the ledger API.
type VoucherState int

const (
	StateDraft  VoucherState = 0
	StatePosted VoucherState = 1
)

// ParseVoucherState maps the requested status name to its wire value.
func ParseVoucherState(status string) (VoucherState, error) {
	switch status {
	case "", "Draft", "draft", "DRAFT":
		return StateDraft, nil
	case "Posted", "posted", "POSTED":
		return StatePosted, nil
	}
	return StateDraft, &ValidationError{Field: "status", Msg: fmt.Sprintf("unknown voucher status %q", status)}
}

func (s VoucherState) String() string {
	if s == StatePosted {
		return "Posted"
	}
	return "Draft"
}

// TotalPolicy decides which of header total and line sum is authoritative.
type TotalPolicy int

const (
	// PolicyFixedHeader keeps the header total fixed; lines must partition it (bank vouchers).
	PolicyFixedHeader TotalPolicy = iota
	// PolicyTrackLines recomputes the header total from the lines (opening balances).
	PolicyTrackLines
)

// VoucherHeader identifies one financial transaction.
type VoucherHeader struct {
	ID           int             `json:"id,omitempty" jsonschema_description:"Id of the stored voucher being edited. 0 for a new voucher."`
	CompanyID    int             `json:"company_id" validate:"required,gt=0"`
	LocationID   int             `json:"location_id" validate:"required,gt=0"`
	CurrencyID   int             `json:"currency_id" validate:"required,gt=0"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Date         time.Time       `json:"date" validate:"required"`
	Notes        string          `json:"notes" validate:"max=500"`
	PaidTo       string          `json:"paid_to" validate:"max=255"`
	Reference    string          `json:"reference" validate:"max=255"`
	AmountTotal  Amount          `json:"amount_total" jsonschema_description:"Header total the user lines must add up to. Recomputed from the lines for opening balances."`
	FormType     Direction       `json:"form_type" validate:"required,oneof=Credit Debit" jsonschema:"enum=Credit,enum=Debit" jsonschema_description:"Credit pays out of the bank account, Debit receives into it"`
	State        VoucherState    `json:"state" jsonschema_description:"0 = Draft, 1 = Posted"`
	CreatedBy    int             `json:"created_by,omitempty"`
	ReversalOf   int             `json:"reversal_of,omitempty" jsonschema_description:"Id of the voucher this one reverses"`
}

// VoucherLine is one allocation of the voucher to a ledger account.
type VoucherLine struct {
	ID            int    `json:"id,omitempty"`
	AccountID     int    `json:"account_id"`
	CostCenterID  int    `json:"cost_center_id,omitempty"`
	DepartmentID  int    `json:"department_id,omitempty"`
	PartnerID     int    `json:"partner_id,omitempty"`
	EmployeeID    int    `json:"employee_id,omitempty"`
	BankAccountID int    `json:"bank_account_id,omitempty"`
	ChequeNo      string `json:"cheque_no"`
	Note          string `json:"note"`
	ReversalNote  string `json:"reversal_note,omitempty"`
	Debit         Amount `json:"debit"`
	Credit        Amount `json:"credit"`
	CreatedBy     int    `json:"created_by,omitempty"`
}

// Amount returns the line's value on side s.
func (l VoucherLine) Amount(s Side) Amount {
	if s == SideCredit {
		return l.Credit
	}
	return l.Debit
}

// SetAmount puts a on side s and zeroes the other side.
func (l *VoucherLine) SetAmount(s Side, a Amount) {
	if s == SideCredit {
		l.Credit, l.Debit = a, Zero
		return
	}
	l.Debit, l.Credit = a, Zero
}

// BankAccountSelection is the bank/cash account the voucher posts against.
type BankAccountSelection struct {
	ID     int    `json:"id"`
	Name   string `json:"name,omitempty"`
	GLCode int    `json:"gl_code"`
}

// SubmissionPayload is the header and full line set sent to the create/edit API.
type SubmissionPayload struct {
	Header VoucherHeader `json:"header"`
	Lines  []VoucherLine `json:"lines"`
}

// Totals returns the debit and credit sums over every line of the payload.
func (p SubmissionPayload) Totals() (debit, credit Amount) {
	return SumSide(p.Lines, SideDebit), SumSide(p.Lines, SideCredit)
}

// PersistedLine is one row of a stored voucher as returned by the single-voucher query.
// Dimensions are denormalized display names rather than ids.
type PersistedLine struct {
	VoucherID    int             `json:"voucher_id"`
	LineID       int             `json:"line_id"`
	CompanyID    int             `json:"company_id"`
	LocationID   int             `json:"location_id"`
	CurrencyID   int             `json:"currency_id"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Date         time.Time       `json:"date"`
	Notes        string          `json:"notes"`
	PaidTo       string          `json:"paid_to"`
	Reference    string          `json:"reference"`
	State        VoucherState    `json:"state"`

	AccountName     string `json:"account_name"`
	CostCenterName  string `json:"cost_center_name"`
	DepartmentName  string `json:"department_name"`
	PartnerName     string `json:"partner_name"`
	EmployeeName    string `json:"employee_name"`
	BankAccountName string `json:"bank_account_name"`
	IsBankLeg       bool   `json:"is_bank_leg"`
	ChequeNo        string `json:"cheque_no"`
	Note            string `json:"note"`
	Debit           Amount `json:"debit"`
	Credit          Amount `json:"credit"`
}
