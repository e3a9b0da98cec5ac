package core

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVoucher is returned when a persisted voucher has no lines.
	ErrEmptyVoucher = errors.New("voucher has no lines")
	// ErrVoucherNotFound is wrapped when a voucher id has no stored lines.
	ErrVoucherNotFound = errors.New("voucher not found")
	// ErrSettingNotFound is wrapped when a settings row is missing.
	ErrSettingNotFound = errors.New("setting not found")
)

// ValidationError reports a precondition the caller must fix before submitting.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func errNoBankAccount() error {
	return &ValidationError{Field: "bank_account", Msg: "no bank account selected"}
}

func errInvalidAmount() error {
	return &ValidationError{Field: "amount_total", Msg: "invalid amount"}
}

// MismatchError reports that the line sum disagrees with the header total.
type MismatchError struct {
	Expected Amount
	Actual   Amount
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("voucher total mismatch: header %s != lines %s", e.Expected, e.Actual)
}

// Difference is header total minus line sum.
func (e *MismatchError) Difference() Amount {
	return e.Expected.Sub(e.Actual)
}

// UnresolvedReferenceError is a soft failure: a display name on a persisted line had no
// match in the reference tables and its id was left at 0.
type UnresolvedReferenceError struct {
	Line int    `json:"line"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (e UnresolvedReferenceError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("bank leg: %s %q not found", e.Kind, e.Name)
	}
	return fmt.Sprintf("line %d: %s %q not found", e.Line+1, e.Kind, e.Name)
}
