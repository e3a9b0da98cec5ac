package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"voucher-engine/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Field     string `json:"field,omitempty"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp.RequestID = requestIDFromContext(r.Context())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps a VoucherService error to its HTTP status.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *core.ValidationError
	var mm *core.MismatchError
	switch {
	case errors.As(err, &ve):
		writeErrorResponse(w, r, errorResponse{Error: ve.Error(), Code: "VALIDATION_FAILED", Field: ve.Field}, http.StatusUnprocessableEntity)
	case errors.As(err, &mm):
		writeErrorResponse(w, r, errorResponse{
			Error:    mm.Error(),
			Code:     "TOTAL_MISMATCH",
			Expected: mm.Expected.String(),
			Actual:   mm.Actual.String(),
		}, http.StatusConflict)
	case errors.Is(err, core.ErrVoucherNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrEmptyVoucher):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	default:
		h.logger.WithField("request_id", requestIDFromContext(r.Context())).WithError(err).Error("voucher request failed")
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
