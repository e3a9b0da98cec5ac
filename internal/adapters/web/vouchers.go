package web

import (
	"net/http"

	"voucher-engine/internal/app"
)

// apiBankPayload handles POST /api/vouchers/bank/payload.
func (h *Handler) apiBankPayload(w http.ResponseWriter, r *http.Request) {
	var req app.BankVoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.PrepareBankVoucher(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiBankValidate handles POST /api/vouchers/bank/validate.
func (h *Handler) apiBankValidate(w http.ResponseWriter, r *http.Request) {
	var req app.BankVoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ValidateBankVoucher(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiOpeningBalancePayload handles POST /api/vouchers/opening-balance/payload.
func (h *Handler) apiOpeningBalancePayload(w http.ResponseWriter, r *http.Request) {
	var req app.OpeningBalanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.PrepareOpeningBalance(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiAppendLine handles POST /api/vouchers/lines/append.
func (h *Handler) apiAppendLine(w http.ResponseWriter, r *http.Request) {
	var req app.AppendLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.AppendLine(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReverseLines handles POST /api/vouchers/lines/reverse.
func (h *Handler) apiReverseLines(w http.ResponseWriter, r *http.Request) {
	var req app.ReverseLinesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.ReverseLines(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiEditForm handles GET /api/vouchers/{id}/edit-form.
func (h *Handler) apiEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := voucherID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.LoadVoucherForEdit(r.Context(), *sessionFromContext(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReversal handles POST /api/vouchers/{id}/reversal. The body is optional and may
// carry a note and the requested status.
func (h *Handler) apiReversal(w http.ResponseWriter, r *http.Request) {
	id, ok := voucherID(w, r)
	if !ok {
		return
	}
	var req app.ReversalRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	req.VoucherID = id
	result, err := h.svc.PrepareReversal(r.Context(), *sessionFromContext(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
