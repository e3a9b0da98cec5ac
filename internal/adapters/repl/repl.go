package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"voucher-engine/internal/app"
	"voucher-engine/internal/core"
)

var (
	errExit   = errors.New("exit")
	errNoForm = errors.New("no voucher open, start one with /new or /edit")
)

// entry is the state of one REPL session: the open form and the bank account it will
// be balanced against.
type entry struct {
	ctx      context.Context
	svc      app.VoucherService
	balancer *core.Balancer
	user     app.Session
	reader   *bufio.Reader
	out      io.Writer

	form   *core.VoucherForm
	bankID int
}

// Run starts the interactive voucher entry loop. It reads slash commands from in until
// /exit or end of input, keeping one VoucherForm open at a time.
func Run(ctx context.Context, svc app.VoucherService, balancer *core.Balancer, user app.Session, in io.Reader, out io.Writer) {
	e := &entry{
		ctx:      ctx,
		svc:      svc,
		balancer: balancer,
		user:     user,
		reader:   bufio.NewReader(in),
		out:      out,
	}

	fmt.Fprintln(out, "Voucher Entry")
	fmt.Fprintf(out, "User %d, company %d. Type /help for commands.\n", user.UserID, user.CompanyID)
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "> ")
		input, ok := e.readLine()
		if !ok {
			fmt.Fprintln(out)
			return
		}
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Fprintln(out, "Commands start with '/'. Type /help.")
			continue
		}
		if err := e.dispatch(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func (e *entry) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "new":
		return e.newVoucher(args)

	case "add":
		if err := e.requireForm(); err != nil {
			return err
		}
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /add <account-id> [amount] [note...]")
			return nil
		}
		accountID, err := strconv.Atoi(args[0])
		if err != nil || accountID <= 0 {
			return fmt.Errorf("invalid account id %q", args[0])
		}
		line := core.VoucherLine{AccountID: accountID}
		if len(args) > 2 {
			line.Note = strings.Join(args[2:], " ")
		}
		i := e.form.AppendLine(line)
		if len(args) > 1 {
			a, err := core.AmountFromString(args[1])
			if err != nil {
				_ = e.form.RemoveLine(i)
				return err
			}
			_ = e.form.SetAmount(i, a)
		}
		printForm(e.out, e.form, e.bankID)

	case "set":
		if err := e.requireForm(); err != nil {
			return err
		}
		if len(args) < 2 {
			fmt.Fprintln(e.out, "Usage: /set <line-no> <amount>")
			return nil
		}
		i, err := lineIndex(args[0])
		if err != nil {
			return err
		}
		a, err := core.AmountFromString(args[1])
		if err != nil {
			return err
		}
		if err := e.form.SetAmount(i, a); err != nil {
			return err
		}
		printForm(e.out, e.form, e.bankID)

	case "rm", "remove":
		if err := e.requireForm(); err != nil {
			return err
		}
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /rm <line-no>")
			return nil
		}
		i, err := lineIndex(args[0])
		if err != nil {
			return err
		}
		if err := e.form.RemoveLine(i); err != nil {
			return err
		}
		printForm(e.out, e.form, e.bankID)

	case "dir", "direction":
		if err := e.requireForm(); err != nil {
			return err
		}
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /dir <credit|debit>")
			return nil
		}
		d, err := parseDirection(args[0])
		if err != nil {
			return err
		}
		e.form.SetDirection(d)
		printForm(e.out, e.form, e.bankID)

	case "bank":
		if err := e.requireForm(); err != nil {
			return err
		}
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /bank <bank-account-id>")
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id < 0 {
			return fmt.Errorf("invalid bank account id %q", args[0])
		}
		e.bankID = id
		fmt.Fprintf(e.out, "Bank account set to %d.\n", id)

	case "show":
		if err := e.requireForm(); err != nil {
			return err
		}
		printForm(e.out, e.form, e.bankID)

	case "check":
		if err := e.requireForm(); err != nil {
			return err
		}
		if err := e.form.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "Balanced.")

	case "submit":
		status := "Draft"
		if len(args) > 0 {
			status = args[0]
		}
		return e.submit(status)

	case "reset":
		if err := e.requireForm(); err != nil {
			return err
		}
		e.form.Reset()
		fmt.Fprintln(e.out, "Lines cleared, header kept.")

	case "edit":
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /edit <voucher-id>")
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid voucher id %q", args[0])
		}
		return e.edit(id)

	case "reverse":
		if len(args) < 1 {
			fmt.Fprintln(e.out, "Usage: /reverse <voucher-id> [note...]")
			return nil
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid voucher id %q", args[0])
		}
		result, err := e.svc.PrepareReversal(e.ctx, e.user, app.ReversalRequest{
			VoucherID: id,
			Note:      strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}
		printPayload(e.out, result)

	case "help", "h":
		printHelp(e.out)

	case "exit", "quit", "q":
		return errExit

	default:
		fmt.Fprintf(e.out, "Unknown command: /%s. Type /help.\n", cmd)
	}
	return nil
}

func (e *entry) submit(status string) error {
	if err := e.requireForm(); err != nil {
		return err
	}

	var result *app.PayloadResult
	var err error
	if e.form.Policy == core.PolicyTrackLines {
		result, err = e.svc.PrepareOpeningBalance(e.ctx, e.user, app.OpeningBalanceRequest{
			Header:        e.form.Header,
			Lines:         e.form.Lines,
			BankAccountID: e.bankID,
			Status:        status,
			BankLegID:     e.form.BankLegID,
		})
	} else {
		result, err = e.svc.PrepareBankVoucher(e.ctx, e.user, app.BankVoucherRequest{
			Header:        e.form.Header,
			Lines:         e.form.Lines,
			BankAccountID: e.bankID,
			Status:        status,
			BankLegID:     e.form.BankLegID,
		})
	}
	if err != nil {
		return err
	}

	printPayload(e.out, result)
	e.form.Reset()
	fmt.Fprintln(e.out, "Payload ready. Lines cleared for the next voucher.")
	return nil
}

func (e *entry) edit(voucherID int) error {
	result, err := e.svc.LoadVoucherForEdit(e.ctx, e.user, voucherID)
	if err != nil {
		return err
	}
	e.form = core.NewVoucherFormFromEdit(e.balancer, result.Form, core.PolicyFixedHeader)
	e.bankID = 0
	if result.Form.BankAccount != nil {
		e.bankID = result.Form.BankAccount.ID
	}

	fmt.Fprintf(e.out, "Loaded voucher %d.\n", voucherID)
	for _, w := range result.Warnings {
		fmt.Fprintf(e.out, "WARNING: %s\n", w)
	}
	printForm(e.out, e.form, e.bankID)
	return nil
}

func (e *entry) requireForm() error {
	if e.form == nil {
		return errNoForm
	}
	return nil
}

func (e *entry) readLine() (string, bool) {
	raw, err := e.reader.ReadString('\n')
	if err != nil && raw == "" {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// lineIndex converts a 1-based line number to a slice index.
func lineIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line number %q", s)
	}
	return n - 1, nil
}

func parseDirection(s string) (core.Direction, error) {
	switch strings.ToLower(s) {
	case "credit", "cr", "payment":
		return core.DirectionCredit, nil
	case "debit", "dr", "receipt":
		return core.DirectionDebit, nil
	}
	return "", fmt.Errorf("unknown direction %q (want credit or debit)", s)
}
