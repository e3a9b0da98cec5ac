package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize cleans header input: trims free text and defaults a blank exchange rate to 1.
func (h *VoucherHeader) Normalize() {
	h.Notes = strings.TrimSpace(h.Notes)
	h.PaidTo = strings.TrimSpace(h.PaidTo)
	h.Reference = strings.TrimSpace(h.Reference)
	if h.ExchangeRate.IsZero() {
		h.ExchangeRate = decimal.NewFromInt(1)
	}
}

// Validate checks the header's structural fields. Amount preconditions are checked by
// the balancer when the payload is built.
func (h VoucherHeader) Validate() error {
	if err := validate.Struct(h); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{Field: fe.Field(), Msg: describeTag(fe)}
		}
		return err
	}
	if h.ExchangeRate.IsNegative() {
		return &ValidationError{Field: "exchange_rate", Msg: "exchange rate must be > 0"}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag() + " check"
}

// ValidateLines checks each user-entered line: an account is required and at most one
// of debit or credit may carry a value. Rows left at 0 by an unresolved edit-flow name
// are caught here.
func ValidateLines(lines []VoucherLine) error {
	for i, l := range lines {
		if l.AccountID <= 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].account_id", i), Msg: "account is required"}
		}
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			return &ValidationError{Field: fmt.Sprintf("lines[%d]", i), Msg: "a line cannot carry both debit and credit"}
		}
	}
	return nil
}
