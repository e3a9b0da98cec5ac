package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money value that tolerates blank form input. JSON null, "", "null"
// and a missing field all decode to zero instead of failing.
type Amount struct {
	decimal.Decimal
}

// Zero is the zero Amount.
var Zero = Amount{decimal.Zero}

// Tolerance is the absolute difference under which two totals are treated as equal.
var Tolerance = decimal.New(1, -2)

// Scale is the number of fractional digits an Amount carries.
const Scale = 2

// NewAmount rounds d to Scale places.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d.Round(Scale)}
}

// AmountFromString parses s, treating blank input as zero. Values with more than Scale
// significant fractional digits are rejected; "10.500" is accepted.
func AmountFromString(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.Equal(d.Round(Scale)) {
		return Zero, fmt.Errorf("invalid amount %q: more than %d decimal places", s, Scale)
	}
	return Amount{d.Round(Scale)}, nil
}

// MustAmount parses s and panics on error. Intended for tests and constants.
func MustAmount(s string) Amount {
	a, err := AmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Add(b Amount) Amount { return Amount{a.Decimal.Add(b.Decimal)} }
func (a Amount) Sub(b Amount) Amount { return Amount{a.Decimal.Sub(b.Decimal)} }

// Round2 rounds to the two fractional digits vouchers are kept in.
func (a Amount) Round2() Amount { return Amount{a.Decimal.Round(Scale)} }

// ApproxEqual reports whether a and b are within Tolerance of each other.
func (a Amount) ApproxEqual(b Amount) bool {
	return a.Decimal.Sub(b.Decimal).Abs().LessThanOrEqual(Tolerance)
}

func (a Amount) String() string { return a.Decimal.StringFixed(Scale) }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.Decimal.StringFixed(Scale) + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	parsed, err := AmountFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
