package app

import (
	"context"
	"errors"
	"fmt"

	"voucher-engine/internal/config"
	"voucher-engine/internal/core"

	"github.com/sirupsen/logrus"
)

const moduleName = "app"

type voucherService struct {
	balancer       *core.Balancer
	reference      core.ReferenceService
	settings       core.SettingsService
	vouchers       core.VoucherQueryService
	openingSetting string
	logger         *logrus.Logger
}

// NewVoucherService constructs a voucherService that satisfies VoucherService.
// openingSetting is the settings row name holding the opening-difference account.
func NewVoucherService(
	balancer *core.Balancer,
	reference core.ReferenceService,
	settings core.SettingsService,
	vouchers core.VoucherQueryService,
	openingSetting string,
	logger *logrus.Logger,
) VoucherService {
	if openingSetting == "" {
		openingSetting = core.OpeningDifferenceSetting
	}
	return &voucherService{
		balancer:       balancer,
		reference:      reference,
		settings:       settings,
		vouchers:       vouchers,
		openingSetting: openingSetting,
		logger:         logger,
	}
}

// PrepareBankVoucher reconciles the lines against the header total and builds the payload.
func (s *voucherService) PrepareBankVoucher(ctx context.Context, sess Session, req BankVoucherRequest) (*PayloadResult, error) {
	header, err := scopeHeader(sess, req.Header)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateLines(req.Lines); err != nil {
		return nil, err
	}
	state, err := core.ParseVoucherState(req.Status)
	if err != nil {
		return nil, err
	}
	bank, err := s.bankSelection(ctx, header.CompanyID, req.BankAccountID)
	if err != nil {
		return nil, err
	}

	form := core.NewVoucherForm(s.balancer, header, core.PolicyFixedHeader)
	form.SetLines(req.Lines)
	form.BankAccount = bank
	form.BankLegID = req.BankLegID
	payload, err := form.Payload(core.SubmitOptions{UserID: sess.UserID, State: state})
	if err != nil {
		return nil, err
	}
	return newPayloadResult(payload), nil
}

// ValidateBankVoucher checks the totals only.
func (s *voucherService) ValidateBankVoucher(ctx context.Context, sess Session, req BankVoucherRequest) (*ValidationResult, error) {
	header, err := scopeHeader(sess, req.Header)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateLines(req.Lines); err != nil {
		return nil, err
	}

	actual := core.SumSide(req.Lines, header.FormType.ActiveSide())
	result := &ValidationResult{
		Balanced:   true,
		Expected:   header.AmountTotal,
		Actual:     actual,
		Difference: header.AmountTotal.Sub(actual),
	}
	err = s.balancer.ReconcileAndValidateTotals(header, req.Lines)
	var mismatch *core.MismatchError
	switch {
	case errors.As(err, &mismatch):
		result.Balanced = false
	case err != nil:
		return nil, err
	}
	return result, nil
}

// PrepareOpeningBalance builds an opening-balance payload. The difference account is only
// looked up when the bank account cannot balance the voucher itself.
func (s *voucherService) PrepareOpeningBalance(ctx context.Context, sess Session, req OpeningBalanceRequest) (*PayloadResult, error) {
	header, err := scopeHeader(sess, req.Header)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateLines(req.Lines); err != nil {
		return nil, err
	}
	state, err := core.ParseVoucherState(req.Status)
	if err != nil {
		return nil, err
	}
	bank, err := s.bankSelection(ctx, header.CompanyID, req.BankAccountID)
	if err != nil {
		return nil, err
	}

	form := core.NewVoucherForm(s.balancer, header, core.PolicyTrackLines)
	form.SetLines(req.Lines)
	form.BankAccount = bank
	form.BankLegID = req.BankLegID
	if bank == nil || bank.GLCode == 0 {
		form.DifferenceAccountID, err = s.differenceAccount(ctx, header.CompanyID)
		if err != nil {
			return nil, err
		}
	}

	payload, err := form.Payload(core.SubmitOptions{UserID: sess.UserID, State: state})
	if err != nil {
		return nil, err
	}
	return newPayloadResult(payload), nil
}

// AppendLine adds req.Line to the form. Under the fixed policy the new line is pre-filled
// with the remaining amount.
func (s *voucherService) AppendLine(ctx context.Context, sess Session, req AppendLineRequest) (*LinesResult, error) {
	policy, err := parsePolicy(req.Policy)
	if err != nil {
		return nil, err
	}
	if !req.Header.FormType.Valid() {
		return nil, &core.ValidationError{Field: "form_type", Msg: "must be one of Credit Debit"}
	}

	form := core.NewVoucherForm(s.balancer, req.Header, policy)
	form.SetLines(req.Lines)
	form.AppendLine(req.Line)
	return &LinesResult{Header: &form.Header, Lines: form.Lines, Remaining: form.Remaining()}, nil
}

// ReverseLines swaps debit and credit on every line.
func (s *voucherService) ReverseLines(ctx context.Context, sess Session, req ReverseLinesRequest) (*LinesResult, error) {
	if len(req.Lines) == 0 {
		return nil, core.ErrEmptyVoucher
	}
	return &LinesResult{Lines: core.ReverseVoucher(req.Lines, req.Note)}, nil
}

// LoadVoucherForEdit maps a stored voucher back to an editable form. Names that no longer
// resolve are returned as warnings.
func (s *voucherService) LoadVoucherForEdit(ctx context.Context, sess Session, voucherID int) (*EditFormResult, error) {
	form, err := s.loadEditable(ctx, sess, voucherID)
	if err != nil {
		return nil, err
	}

	result := &EditFormResult{
		Form:      form,
		Remaining: s.balancer.RemainingAmount(form.Header, form.Lines, form.Header.FormType.ActiveSide()),
	}
	for _, u := range form.Unresolved {
		result.Warnings = append(result.Warnings, u.Error())
	}
	if !form.Complete() {
		s.logger.WithFields(logrus.Fields{
			"module":     moduleName,
			"voucher_id": voucherID,
			"unresolved": len(form.Unresolved),
		}).Warn("voucher loaded with unresolved references")
	}
	return result, nil
}

// PrepareReversal reverses a stored voucher. Every reference must still resolve, since a
// reversal has to post against the same accounts as the original.
func (s *voucherService) PrepareReversal(ctx context.Context, sess Session, req ReversalRequest) (*PayloadResult, error) {
	if req.VoucherID <= 0 {
		return nil, &core.ValidationError{Field: "voucher_id", Msg: "is required"}
	}
	state, err := core.ParseVoucherState(req.Status)
	if err != nil {
		return nil, err
	}
	form, err := s.loadEditable(ctx, sess, req.VoucherID)
	if err != nil {
		return nil, err
	}
	if !form.Complete() {
		return nil, &core.ValidationError{Field: "lines", Msg: form.Unresolved[0].Error()}
	}

	payload, err := core.BuildReversalPayload(form.Header, req.VoucherID, form.FlatLines(), req.Note,
		core.SubmitOptions{UserID: sess.UserID, State: state})
	if err != nil {
		return nil, err
	}
	return newPayloadResult(payload), nil
}

func (s *voucherService) loadEditable(ctx context.Context, sess Session, voucherID int) (*core.EditableForm, error) {
	lines, err := s.vouchers.GetVoucherLines(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, core.ErrVoucherNotFound) {
			config.LogError(s.logger, moduleName, "loadEditable", "fetch voucher lines", voucherID, err)
		}
		return nil, err
	}
	if len(lines) == 0 {
		return nil, core.ErrEmptyVoucher
	}
	companyID := lines[0].CompanyID
	if sess.CompanyID != 0 && companyID != sess.CompanyID {
		return nil, fmt.Errorf("voucher %d not found: %w", voucherID, core.ErrVoucherNotFound)
	}

	ref, err := s.reference.Load(ctx, companyID)
	if err != nil {
		config.LogError(s.logger, moduleName, "loadEditable", "load reference data", companyID, err)
		return nil, err
	}
	return core.MapPersistedLinesToEditableForm(lines, ref)
}

// bankSelection resolves bankAccountID against the company's bank accounts. 0 means none
// selected.
func (s *voucherService) bankSelection(ctx context.Context, companyID, bankAccountID int) (*core.BankAccountSelection, error) {
	if bankAccountID == 0 {
		return nil, nil
	}
	ref, err := s.reference.Load(ctx, companyID)
	if err != nil {
		config.LogError(s.logger, moduleName, "bankSelection", "load reference data", companyID, err)
		return nil, err
	}
	bank := ref.BankAccountByID(bankAccountID)
	if bank == nil {
		return nil, &core.ValidationError{Field: "bank_account_id", Msg: fmt.Sprintf("unknown bank account %d", bankAccountID)}
	}
	return bank.Selection(), nil
}

// differenceAccount returns the company's opening-difference account, or 0 when none is
// configured so the balancer falls back to its default GL account.
func (s *voucherService) differenceAccount(ctx context.Context, companyID int) (int, error) {
	id, err := s.settings.ResolveAccount(ctx, companyID, s.openingSetting)
	if err == nil {
		return id, nil
	}
	if errors.Is(err, core.ErrSettingNotFound) {
		s.logger.WithFields(logrus.Fields{
			"module":     moduleName,
			"company_id": companyID,
			"setting":    s.openingSetting,
		}).Warn("opening difference setting missing, using default GL account")
		return 0, nil
	}
	config.LogError(s.logger, moduleName, "differenceAccount", "resolve setting", companyID, err)
	return 0, err
}

// scopeHeader binds the header to the session company and runs structural validation.
func scopeHeader(sess Session, h core.VoucherHeader) (core.VoucherHeader, error) {
	if h.CompanyID == 0 {
		h.CompanyID = sess.CompanyID
	}
	if sess.CompanyID != 0 && h.CompanyID != sess.CompanyID {
		return h, &core.ValidationError{Field: "company_id", Msg: "does not match the session company"}
	}
	h.Normalize()
	if err := h.Validate(); err != nil {
		return h, err
	}
	return h, nil
}

func parsePolicy(p string) (core.TotalPolicy, error) {
	switch p {
	case "", "fixed":
		return core.PolicyFixedHeader, nil
	case "track":
		return core.PolicyTrackLines, nil
	}
	return core.PolicyFixedHeader, &core.ValidationError{Field: "policy", Msg: fmt.Sprintf("unknown total policy %q", p)}
}
