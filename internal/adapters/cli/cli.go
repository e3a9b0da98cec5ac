package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"voucher-engine/internal/app"
	"voucher-engine/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// Usage lists the available subcommands.
const Usage = `Usage: app [command] [args]

  (none)               start the interactive voucher entry session

  payload              build a bank voucher payload from a JSON request on stdin
  opening              build an opening-balance payload from a JSON request on stdin
  validate             check a bank voucher's totals (stdin)
  append               append a line to a form (stdin)
  reverse              swap debit and credit on a line set (stdin)
  edit <id>            load a stored voucher as an editable form
  reversal <id> [note] build the reversal payload of a stored voucher
  schema [name]        print the JSON Schema of payload (default), bank, opening or edit`

// ErrUnbalanced is returned by validate when the lines do not match the header total.
var ErrUnbalanced = errors.New("voucher is not balanced")

// Run executes a one-shot CLI command. args is os.Args[1:]; the first element is the
// subcommand name. Request bodies are read from in, results are written to out as JSON.
func Run(ctx context.Context, svc app.VoucherService, sess app.Session, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", Usage)
	}

	switch args[0] {
	case "payload", "p":
		var req app.BankVoucherRequest
		if err := decode(in, &req); err != nil {
			return err
		}
		result, err := svc.PrepareBankVoucher(ctx, sess, req)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "opening", "o":
		var req app.OpeningBalanceRequest
		if err := decode(in, &req); err != nil {
			return err
		}
		result, err := svc.PrepareOpeningBalance(ctx, sess, req)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "validate", "val", "v":
		var req app.BankVoucherRequest
		if err := decode(in, &req); err != nil {
			return err
		}
		result, err := svc.ValidateBankVoucher(ctx, sess, req)
		if err != nil {
			return err
		}
		if err := encode(out, result); err != nil {
			return err
		}
		if !result.Balanced {
			return fmt.Errorf("%w: difference %s", ErrUnbalanced, result.Difference)
		}
		return nil

	case "append", "a":
		var req app.AppendLineRequest
		if err := decode(in, &req); err != nil {
			return err
		}
		result, err := svc.AppendLine(ctx, sess, req)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "reverse", "r":
		var req app.ReverseLinesRequest
		if err := decode(in, &req); err != nil {
			return err
		}
		result, err := svc.ReverseLines(ctx, sess, req)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "edit", "e":
		id, err := idArg(args, "edit <id>")
		if err != nil {
			return err
		}
		result, err := svc.LoadVoucherForEdit(ctx, sess, id)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "reversal":
		id, err := idArg(args, "reversal <id> [note]")
		if err != nil {
			return err
		}
		req := app.ReversalRequest{VoucherID: id}
		if len(args) > 2 {
			req.Note = strings.Join(args[2:], " ")
		}
		result, err := svc.PrepareReversal(ctx, sess, req)
		if err != nil {
			return err
		}
		return encode(out, result)

	case "schema":
		name := "payload"
		if len(args) > 1 {
			name = args[1]
		}
		return PrintSchema(out, name)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], Usage)
	}
}

// PrintSchema writes the JSON Schema of the named document. It needs no service.
func PrintSchema(out io.Writer, name string) error {
	var v any
	switch name {
	case "payload":
		v = &core.SubmissionPayload{}
	case "bank":
		v = &app.BankVoucherRequest{}
	case "opening":
		v = &app.OpeningBalanceRequest{}
	case "edit":
		v = &core.EditableForm{}
	default:
		return fmt.Errorf("unknown schema %q (want payload, bank, opening or edit)", name)
	}
	return encode(out, generateSchema(v))
}

var (
	amountType  = reflect.TypeOf(core.Amount{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

func generateSchema(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == amountType || t == decimalType {
				return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
			}
			return nil
		},
	}
	return reflector.Reflect(v)
}

func idArg(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: app %s", usage)
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid voucher id %q", args[1])
	}
	return id, nil
}

func decode(in io.Reader, v any) error {
	if err := json.NewDecoder(in).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func encode(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
