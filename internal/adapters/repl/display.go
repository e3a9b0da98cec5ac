package repl

import (
	"fmt"
	"io"
	"strings"

	"voucher-engine/internal/app"
	"voucher-engine/internal/core"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `Commands:
  /new <credit|debit> <total>     open a bank voucher with a fixed total
  /new <credit|debit> opening     open an opening-balance voucher
  /add <account-id> [amount] [note]
  /set <line-no> <amount>
  /rm <line-no>
  /dir <credit|debit>             switch direction, amounts move with it
  /bank <bank-account-id>
  /show                           print the open voucher
  /check                          compare lines with the header total
  /submit [Draft|Posted]          build the payload and clear the lines
  /reset                          clear the lines, keep the header
  /edit <voucher-id>              load a stored voucher
  /reverse <voucher-id> [note]    build a reversal payload
  /exit`)
}

func printForm(out io.Writer, f *core.VoucherForm, bankID int) {
	side := f.ActiveSide()
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintf(out, "  %s VOUCHER  (lines on %s)\n", strings.ToUpper(string(f.Header.FormType)), side)
	fmt.Fprintf(out, "  Date     : %s\n", f.Header.Date.Format("2006-01-02"))
	if bankID != 0 {
		fmt.Fprintf(out, "  Bank     : %d\n", bankID)
	}
	if f.Header.PaidTo != "" {
		fmt.Fprintf(out, "  Paid to  : %s\n", f.Header.PaidTo)
	}
	fmt.Fprintf(out, "  %-4s %-10s %15s %15s  %s\n", "#", "ACCOUNT", "DEBIT", "CREDIT", "NOTE")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for i, l := range f.Lines {
		fmt.Fprintf(out, "  %-4d %-10d %15s %15s  %s\n", i+1, l.AccountID, l.Debit, l.Credit, l.Note)
	}
	fmt.Fprintln(out, strings.Repeat("-", 70))
	fmt.Fprintf(out, "  Total %s   Remaining %s\n", f.Header.AmountTotal, f.Remaining())
	fmt.Fprintln(out, strings.Repeat("=", 70))
}

func printPayload(out io.Writer, r *app.PayloadResult) {
	p := r.Payload
	fmt.Fprintln(out)
	fmt.Fprintf(out, "PAYLOAD:   %s voucher, state %s\n", p.Header.FormType, p.Header.State)
	if p.Header.ReversalOf != 0 {
		fmt.Fprintf(out, "REVERSES:  voucher %d\n", p.Header.ReversalOf)
	}
	if p.Header.Notes != "" {
		fmt.Fprintf(out, "NOTES:     %s\n", p.Header.Notes)
	}
	fmt.Fprintln(out, "ENTRIES:")
	for _, l := range p.Lines {
		dOrC, a := "DR", l.Debit
		if !l.Credit.IsZero() {
			dOrC, a = "CR", l.Credit
		}
		bank := ""
		if l.BankAccountID != 0 {
			bank = fmt.Sprintf("  (bank %d)", l.BankAccountID)
		}
		fmt.Fprintf(out, "  [%s] Account %-8d %15s%s\n", dOrC, l.AccountID, a, bank)
	}
	fmt.Fprintf(out, "TOTALS:    DR %s / CR %s\n", r.TotalDebit, r.TotalCredit)
}
