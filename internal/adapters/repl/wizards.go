package repl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"voucher-engine/internal/core"
)

// newVoucher runs the header prompts and opens a fresh form.
//
//	/new <credit|debit> <total>   bank voucher, total fixed
//	/new <credit|debit> opening   opening balance, total follows the lines
func (e *entry) newVoucher(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(e.out, "Usage: /new <credit|debit> <total>  or  /new <credit|debit> opening")
		return nil
	}
	dir, err := parseDirection(args[0])
	if err != nil {
		return err
	}

	header := core.VoucherHeader{CompanyID: e.user.CompanyID, FormType: dir}
	policy := core.PolicyFixedHeader
	if strings.EqualFold(args[1], "opening") {
		policy = core.PolicyTrackLines
	} else {
		header.AmountTotal, err = core.AmountFromString(args[1])
		if err != nil {
			return err
		}
		if !header.AmountTotal.IsPositive() {
			return fmt.Errorf("total must be greater than 0")
		}
	}

	if header.LocationID, err = e.promptID("Location id"); err != nil {
		return err
	}
	if header.CurrencyID, err = e.promptID("Currency id"); err != nil {
		return err
	}

	fmt.Fprint(e.out, "Date (YYYY-MM-DD, leave blank for today): ")
	raw, _ := e.readLine()
	if raw == "" {
		header.Date = time.Now().UTC().Truncate(24 * time.Hour)
	} else if header.Date, err = time.Parse("2006-01-02", raw); err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}

	fmt.Fprint(e.out, "Paid to (optional): ")
	header.PaidTo, _ = e.readLine()
	fmt.Fprint(e.out, "Notes (optional): ")
	header.Notes, _ = e.readLine()

	header.Normalize()
	if err := header.Validate(); err != nil {
		return err
	}

	e.form = core.NewVoucherForm(e.balancer, header, policy)
	e.bankID = 0
	fmt.Fprintf(e.out, "%s voucher opened. Add lines with /add, pick the bank with /bank.\n", dir)
	printForm(e.out, e.form, e.bankID)
	return nil
}

func (e *entry) promptID(label string) (int, error) {
	fmt.Fprintf(e.out, "%s: ", label)
	raw, _ := e.readLine()
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", strings.ToLower(label), raw)
	}
	return id, nil
}
