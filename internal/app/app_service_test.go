package app_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"voucher-engine/internal/app"
	"voucher-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReference struct {
	data  *core.ReferenceData
	err   error
	calls int
}

func (f *fakeReference) Load(ctx context.Context, companyID int) (*core.ReferenceData, error) {
	f.calls++
	return f.data, f.err
}

type fakeSettings struct {
	accounts map[string]int
	err      error
}

func (f *fakeSettings) ResolveAccount(ctx context.Context, companyID int, name string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	id, ok := f.accounts[name]
	if !ok {
		return 0, core.ErrSettingNotFound
	}
	return id, nil
}

type fakeVouchers struct {
	lines map[int][]core.PersistedLine
}

func (f *fakeVouchers) GetVoucherLines(ctx context.Context, voucherID int) ([]core.PersistedLine, error) {
	lines, ok := f.lines[voucherID]
	if !ok {
		return nil, core.ErrVoucherNotFound
	}
	return lines, nil
}

func amt(s string) core.Amount { return core.MustAmount(s) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func reference() *core.ReferenceData {
	return &core.ReferenceData{
		Accounts: []core.Account{
			{ID: 7, Name: "Office Rent"},
			{ID: 9, Name: "Cash at Bank"},
		},
		BankAccounts: []core.BankAccount{
			{ID: 6, Name: "Main Current Account", GLAccountID: 9},
			{ID: 10, Name: "Petty Cash"},
		},
	}
}

func storedVoucher() []core.PersistedLine {
	base := core.PersistedLine{
		VoucherID:    42,
		CompanyID:    1,
		LocationID:   2,
		CurrencyID:   3,
		ExchangeRate: decimal.NewFromInt(1),
		Date:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Notes:        "January rent",
	}
	rent := base
	rent.LineID, rent.AccountName, rent.Debit = 100, "Office Rent", amt("1000")
	bank := base
	bank.LineID, bank.AccountName, bank.BankAccountName, bank.IsBankLeg, bank.Credit = 101, "Cash at Bank", "Main Current Account", true, amt("1000")
	return []core.PersistedLine{rent, bank}
}

type fixture struct {
	svc       app.VoucherService
	reference *fakeReference
	settings  *fakeSettings
}

func newFixture(defaultGL int) *fixture {
	f := &fixture{
		reference: &fakeReference{data: reference()},
		settings:  &fakeSettings{accounts: map[string]int{core.OpeningDifferenceSetting: 30}},
	}
	vouchers := &fakeVouchers{lines: map[int][]core.PersistedLine{42: storedVoucher()}}
	f.svc = app.NewVoucherService(core.NewBalancer(defaultGL), f.reference, f.settings, vouchers, "", quietLogger())
	return f
}

var session = app.Session{UserID: 5, Username: "clerk", CompanyID: 1}

func header(total string, dir core.Direction) core.VoucherHeader {
	return core.VoucherHeader{
		LocationID:  2,
		CurrencyID:  3,
		Date:        time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		AmountTotal: amt(total),
		FormType:    dir,
	}
}

func TestPrepareBankVoucher(t *testing.T) {
	f := newFixture(0)
	res, err := f.svc.PrepareBankVoucher(context.Background(), session, app.BankVoucherRequest{
		Header:        header("1000", core.DirectionCredit),
		Lines:         []core.VoucherLine{{AccountID: 7, Debit: amt("600")}, {AccountID: 8, Debit: amt("400")}},
		BankAccountID: 6,
		Status:        "Posted",
	})
	require.NoError(t, err)

	p := res.Payload
	assert.Equal(t, 1, p.Header.CompanyID, "company comes from the session")
	assert.Equal(t, core.StatePosted, p.Header.State)
	assert.Equal(t, 5, p.Header.CreatedBy)
	require.Len(t, p.Lines, 3)
	assert.Equal(t, 9, p.Lines[2].AccountID)
	assert.Equal(t, 6, p.Lines[2].BankAccountID)
	assert.True(t, res.TotalDebit.Equal(res.TotalCredit.Decimal))
}

func TestPrepareBankVoucher_ResubmitsEdit(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()
	loaded, err := f.svc.LoadVoucherForEdit(ctx, session, 42)
	require.NoError(t, err)
	require.NotNil(t, loaded.Form.BankLeg)

	res, err := f.svc.PrepareBankVoucher(ctx, session, app.BankVoucherRequest{
		Header:        loaded.Form.Header,
		Lines:         loaded.Form.Lines,
		BankAccountID: loaded.Form.BankAccount.ID,
		BankLegID:     loaded.Form.BankLeg.ID,
	})
	require.NoError(t, err)

	p := res.Payload
	assert.Equal(t, 42, p.Header.ID)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, 100, p.Lines[0].ID)
	assert.Equal(t, 101, p.Lines[1].ID)
	assert.Equal(t, 6, p.Lines[1].BankAccountID)
}

func TestPrepareBankVoucher_Errors(t *testing.T) {
	tests := []struct {
		name  string
		req   app.BankVoucherRequest
		field string
	}{
		{
			name:  "no bank",
			req:   app.BankVoucherRequest{Header: header("100", core.DirectionCredit), Lines: []core.VoucherLine{{AccountID: 7, Debit: amt("100")}}},
			field: "bank_account",
		},
		{
			name:  "unknown bank",
			req:   app.BankVoucherRequest{Header: header("100", core.DirectionCredit), Lines: []core.VoucherLine{{AccountID: 7, Debit: amt("100")}}, BankAccountID: 99},
			field: "bank_account_id",
		},
		{
			name:  "line without account",
			req:   app.BankVoucherRequest{Header: header("100", core.DirectionCredit), Lines: []core.VoucherLine{{Debit: amt("100")}}, BankAccountID: 6},
			field: "lines[0].account_id",
		},
		{
			name:  "bad status",
			req:   app.BankVoucherRequest{Header: header("100", core.DirectionCredit), Lines: []core.VoucherLine{{AccountID: 7, Debit: amt("100")}}, BankAccountID: 6, Status: "Void"},
			field: "status",
		},
		{
			name: "foreign company",
			req: func() app.BankVoucherRequest {
				h := header("100", core.DirectionCredit)
				h.CompanyID = 2
				return app.BankVoucherRequest{Header: h, BankAccountID: 6}
			}(),
			field: "company_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture(0).svc.PrepareBankVoucher(context.Background(), session, tt.req)
			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("mismatch", func(t *testing.T) {
		_, err := newFixture(0).svc.PrepareBankVoucher(context.Background(), session, app.BankVoucherRequest{
			Header:        header("500", core.DirectionCredit),
			Lines:         []core.VoucherLine{{AccountID: 7, Debit: amt("450")}},
			BankAccountID: 6,
		})
		var mm *core.MismatchError
		require.True(t, errors.As(err, &mm), "got %v", err)
		assert.Equal(t, "50.00", mm.Difference().String())
	})
}

func TestValidateBankVoucher_ReportsMismatch(t *testing.T) {
	f := newFixture(0)
	res, err := f.svc.ValidateBankVoucher(context.Background(), session, app.BankVoucherRequest{
		Header: header("500", core.DirectionCredit),
		Lines:  []core.VoucherLine{{AccountID: 7, Debit: amt("450")}},
	})
	require.NoError(t, err)
	assert.False(t, res.Balanced)
	assert.Equal(t, "50.00", res.Difference.String())
	assert.Zero(t, f.reference.calls, "validation needs no reference data")
}

func TestPrepareOpeningBalance(t *testing.T) {
	lines := []core.VoucherLine{{AccountID: 7, Debit: amt("250")}, {AccountID: 8, Debit: amt("50")}}

	t.Run("difference account when no bank", func(t *testing.T) {
		res, err := newFixture(0).svc.PrepareOpeningBalance(context.Background(), session, app.OpeningBalanceRequest{
			Header: header("0", core.DirectionCredit),
			Lines:  lines,
		})
		require.NoError(t, err)
		leg := res.Payload.Lines[len(res.Payload.Lines)-1]
		assert.Equal(t, 30, leg.AccountID)
		assert.Equal(t, "300.00", leg.Credit.String())
		assert.Equal(t, "300.00", res.Payload.Header.AmountTotal.String())
	})

	t.Run("bank GL code wins", func(t *testing.T) {
		res, err := newFixture(0).svc.PrepareOpeningBalance(context.Background(), session, app.OpeningBalanceRequest{
			Header:        header("0", core.DirectionCredit),
			Lines:         lines,
			BankAccountID: 6,
		})
		require.NoError(t, err)
		assert.Equal(t, 9, res.Payload.Lines[2].AccountID)
	})

	t.Run("missing setting falls back to default", func(t *testing.T) {
		f := newFixture(77)
		f.settings.accounts = nil
		res, err := f.svc.PrepareOpeningBalance(context.Background(), session, app.OpeningBalanceRequest{
			Header:        header("0", core.DirectionCredit),
			Lines:         lines,
			BankAccountID: 10,
		})
		require.NoError(t, err)
		leg := res.Payload.Lines[2]
		assert.Equal(t, 77, leg.AccountID)
		assert.Equal(t, 10, leg.BankAccountID)
	})

	t.Run("settings failure surfaces", func(t *testing.T) {
		f := newFixture(0)
		f.settings.err = errors.New("connection refused")
		_, err := f.svc.PrepareOpeningBalance(context.Background(), session, app.OpeningBalanceRequest{
			Header: header("0", core.DirectionCredit),
			Lines:  lines,
		})
		assert.ErrorContains(t, err, "connection refused")
	})
}

func TestAppendLine(t *testing.T) {
	svc := newFixture(0).svc
	res, err := svc.AppendLine(context.Background(), session, app.AppendLineRequest{
		Header: header("1000", core.DirectionCredit),
		Lines:  []core.VoucherLine{{AccountID: 7, Debit: amt("1000")}},
		Line:   core.VoucherLine{AccountID: 8},
	})
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.True(t, res.Lines[1].Debit.IsZero())
	assert.True(t, res.Remaining.IsZero())

	res, err = svc.AppendLine(context.Background(), session, app.AppendLineRequest{
		Header: header("0", core.DirectionDebit),
		Lines:  []core.VoucherLine{{AccountID: 7, Credit: amt("20")}},
		Line:   core.VoucherLine{AccountID: 8, Credit: amt("5")},
		Policy: "track",
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", res.Header.AmountTotal.String())

	_, err = svc.AppendLine(context.Background(), session, app.AppendLineRequest{Header: header("0", core.DirectionDebit), Policy: "loose"})
	assert.Error(t, err)
}

func TestReverseLines(t *testing.T) {
	res, err := newFixture(0).svc.ReverseLines(context.Background(), session, app.ReverseLinesRequest{
		Lines: []core.VoucherLine{{ID: 1, AccountID: 7, Debit: amt("10")}},
		Note:  "typo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Lines[0].ID)
	assert.Equal(t, "10.00", res.Lines[0].Credit.String())
	assert.Equal(t, "typo", res.Lines[0].ReversalNote)

	_, err = newFixture(0).svc.ReverseLines(context.Background(), session, app.ReverseLinesRequest{})
	assert.ErrorIs(t, err, core.ErrEmptyVoucher)
}

func TestLoadVoucherForEdit(t *testing.T) {
	f := newFixture(0)
	res, err := f.svc.LoadVoucherForEdit(context.Background(), session, 42)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 7, res.Form.Lines[0].AccountID)
	assert.Equal(t, 6, res.Form.BankAccount.ID)
	assert.True(t, res.Remaining.IsZero())

	_, err = f.svc.LoadVoucherForEdit(context.Background(), session, 7)
	assert.ErrorIs(t, err, core.ErrVoucherNotFound)

	other := app.Session{UserID: 5, CompanyID: 2}
	_, err = f.svc.LoadVoucherForEdit(context.Background(), other, 42)
	assert.ErrorIs(t, err, core.ErrVoucherNotFound, "vouchers of other companies are hidden")
}

func TestLoadVoucherForEdit_Warnings(t *testing.T) {
	f := newFixture(0)
	f.reference.data = &core.ReferenceData{BankAccounts: reference().BankAccounts}
	res, err := f.svc.LoadVoucherForEdit(context.Background(), session, 42)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)
	assert.Zero(t, res.Form.Lines[0].AccountID)
}

func TestPrepareReversal(t *testing.T) {
	f := newFixture(0)
	res, err := f.svc.PrepareReversal(context.Background(), session, app.ReversalRequest{VoucherID: 42, Note: "duplicate"})
	require.NoError(t, err)

	p := res.Payload
	assert.Equal(t, 42, p.Header.ReversalOf)
	assert.Equal(t, core.DirectionDebit, p.Header.FormType)
	assert.Equal(t, "Reversal of voucher 42: duplicate", p.Header.Notes)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, "1000.00", p.Lines[0].Credit.String())
	assert.Equal(t, "1000.00", p.Lines[1].Debit.String())
	assert.Zero(t, p.Lines[0].ID)
	assert.Equal(t, 5, p.Lines[0].CreatedBy)

	f.reference.data = &core.ReferenceData{}
	_, err = f.svc.PrepareReversal(context.Background(), session, app.ReversalRequest{VoucherID: 42})
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve), "unresolved references block a reversal")

	_, err = f.svc.PrepareReversal(context.Background(), session, app.ReversalRequest{})
	assert.True(t, errors.As(err, &ve))
}
