package core_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"voucher-engine/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoucherForm_FixedHeaderPrefillsRemaining(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("1000", core.DirectionCredit), core.PolicyFixedHeader)

	i := f.AppendLine(core.VoucherLine{AccountID: 1})
	assertAmount(t, "1000", f.Lines[i].Debit)
	assertAmount(t, "0", f.Lines[i].Credit)
	require.NoError(t, f.Validate())

	require.NoError(t, f.SetAmount(i, amt("600")))
	j := f.AppendLine(core.VoucherLine{AccountID: 2})
	assertAmount(t, "400", f.Lines[j].Debit)
	require.NoError(t, f.Validate())

	k := f.AppendLine(core.VoucherLine{AccountID: 3})
	assertAmount(t, "0", f.Lines[k].Debit)
	assertAmount(t, "1000", f.Header.AmountTotal, "header total is fixed")

	require.NoError(t, f.SetAmount(k, amt("50")))
	var mm *core.MismatchError
	require.True(t, errors.As(f.Validate(), &mm))
	assertAmount(t, "1050", mm.Actual)
	assertAmount(t, "-50", f.Remaining())

	require.NoError(t, f.RemoveLine(k))
	assert.NoError(t, f.Validate())
	assert.Error(t, f.RemoveLine(5))
}

func TestVoucherForm_TrackLinesRecomputesHeader(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("999", core.DirectionCredit), core.PolicyTrackLines)
	assertAmount(t, "0", f.Header.AmountTotal)

	i := f.AppendLine(core.VoucherLine{AccountID: 1})
	assertAmount(t, "0", f.Lines[i].Debit)

	require.NoError(t, f.SetAmount(i, amt("120.40")))
	f.AppendLine(core.VoucherLine{AccountID: 2, Debit: amt("79.60")})
	assertAmount(t, "200", f.Header.AmountTotal)

	require.NoError(t, f.UpdateLine(1, core.VoucherLine{AccountID: 2, Debit: amt("10"), Credit: amt("3")}))
	assertAmount(t, "130.40", f.Header.AmountTotal)
	assertAmount(t, "0", f.Lines[1].Credit, "only the active side is kept")

	f.DifferenceAccountID = 77
	p, err := f.Payload(core.SubmitOptions{State: core.StateDraft})
	require.NoError(t, err)
	leg := p.Lines[len(p.Lines)-1]
	assert.Equal(t, 77, leg.AccountID)
	assertAmount(t, "130.40", leg.Credit)
}

func TestVoucherForm_ResetKeepsHeader(t *testing.T) {
	h := bankHeader("300", core.DirectionDebit)
	h.PaidTo = "Supplier"
	f := core.NewVoucherForm(core.NewBalancer(0), h, core.PolicyFixedHeader)
	f.AppendLine(core.VoucherLine{AccountID: 1})
	f.Reset()
	assert.Empty(t, f.Lines)
	assert.Equal(t, "Supplier", f.Header.PaidTo)
	assertAmount(t, "300", f.Header.AmountTotal)
}

func TestVoucherForm_SetDirectionMovesAmounts(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("50", core.DirectionCredit), core.PolicyFixedHeader)
	f.AppendLine(core.VoucherLine{AccountID: 1})
	f.SetDirection(core.DirectionDebit)
	assertAmount(t, "0", f.Lines[0].Debit)
	assertAmount(t, "50", f.Lines[0].Credit)
	assert.NoError(t, f.Validate())
}

func TestVoucherForm_PayloadRequiresBank(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("50", core.DirectionCredit), core.PolicyFixedHeader)
	f.AppendLine(core.VoucherLine{AccountID: 1})
	_, err := f.Payload(core.SubmitOptions{})
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "no bank account selected", ve.Msg)

	ve.Msg = "changed by caller"
	_, err = f.Payload(core.SubmitOptions{})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "no bank account selected", ve.Msg, "each call returns its own error value")
}

func TestAmount_JSON(t *testing.T) {
	var l core.VoucherLine
	require.NoError(t, json.Unmarshal([]byte(`{"account_id":1,"debit":"","credit":null}`), &l))
	assertAmount(t, "0", l.Debit)
	assertAmount(t, "0", l.Credit)

	require.NoError(t, json.Unmarshal([]byte(`{"debit":12.5,"credit":"null"}`), &l))
	assertAmount(t, "12.5", l.Debit)
	assertAmount(t, "0", l.Credit)

	assert.Error(t, json.Unmarshal([]byte(`{"debit":"abc"}`), &l))

	out, err := json.Marshal(core.VoucherLine{AccountID: 1, Debit: amt("12.5")})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"debit":"12.50"`)
	assert.Contains(t, string(out), `"credit":"0.00"`)
}

func TestAmountFromString_Precision(t *testing.T) {
	a, err := core.AmountFromString("10.500")
	require.NoError(t, err)
	assertAmount(t, "10.5", a)

	_, err = core.AmountFromString("33.333")
	assert.ErrorContains(t, err, "more than 2 decimal places")

	var l core.VoucherLine
	assert.Error(t, json.Unmarshal([]byte(`{"debit":"33.333"}`), &l))
	assert.Error(t, json.Unmarshal([]byte(`{"debit":0.001}`), &l))

	assertAmount(t, "0.67", core.NewAmount(decimal.RequireFromString("0.666")))
}

func TestPayload_BalancedOnTheWire(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("100", core.DirectionCredit), core.PolicyFixedHeader)
	f.BankAccount = &core.BankAccountSelection{ID: 3, GLCode: 99}
	for _, v := range []string{"33.33", "33.33", "33.33"} {
		i := f.AppendLine(core.VoucherLine{AccountID: 7})
		require.NoError(t, f.SetAmount(i, amt(v)))
	}

	p, err := f.Payload(core.SubmitOptions{})
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var wire core.SubmissionPayload
	require.NoError(t, json.Unmarshal(raw, &wire))
	debit, credit := wire.Totals()
	assertAmount(t, "99.99", debit)
	assertAmount(t, "99.99", credit)
}

func TestHeaderValidate(t *testing.T) {
	h := bankHeader("10", core.DirectionCredit)
	h.Normalize()
	require.NoError(t, h.Validate())
	assert.Equal(t, "1", h.ExchangeRate.String())

	tests := []struct {
		name  string
		mut   func(*core.VoucherHeader)
		field string
	}{
		{"missing company", func(h *core.VoucherHeader) { h.CompanyID = 0 }, "company_id"},
		{"missing location", func(h *core.VoucherHeader) { h.LocationID = 0 }, "location_id"},
		{"bad direction", func(h *core.VoucherHeader) { h.FormType = "Both" }, "form_type"},
		{"missing date", func(h *core.VoucherHeader) { h.Date = time.Time{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := bankHeader("10", core.DirectionCredit)
			tt.mut(&bad)
			var ve *core.ValidationError
			require.True(t, errors.As(bad.Validate(), &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParseVoucherState(t *testing.T) {
	s, err := core.ParseVoucherState("Posted")
	require.NoError(t, err)
	assert.Equal(t, core.StatePosted, s)
	s, err = core.ParseVoucherState("")
	require.NoError(t, err)
	assert.Equal(t, core.StateDraft, s)
	_, err = core.ParseVoucherState("Void")
	assert.Error(t, err)
}

func TestVoucherForm_SetLinesDropsInactiveSide(t *testing.T) {
	f := core.NewVoucherForm(core.NewBalancer(0), bankHeader("0", core.DirectionDebit), core.PolicyTrackLines)
	f.SetLines([]core.VoucherLine{
		{AccountID: 1, Credit: amt("40")},
		{AccountID: 2, Debit: amt("15"), Credit: amt("10")},
	})
	assertAmount(t, "50", f.Header.AmountTotal)
	assertAmount(t, "0", f.Lines[1].Debit)
}
