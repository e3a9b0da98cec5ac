package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"voucher-engine/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handler holds the VoucherService and the settings its routes need.
type Handler struct {
	svc       app.VoucherService
	jwtSecret string
	logger    *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.VoucherService, allowedOrigins, jwtSecret string, logger *logrus.Logger) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// ── Vouchers ──────────────────────────────────────────────────────────
		r.Post("/api/vouchers/bank/payload", h.apiBankPayload)
		r.Post("/api/vouchers/bank/validate", h.apiBankValidate)
		r.Post("/api/vouchers/opening-balance/payload", h.apiOpeningBalancePayload)
		r.Post("/api/vouchers/lines/append", h.apiAppendLine)
		r.Post("/api/vouchers/lines/reverse", h.apiReverseLines)
		r.Get("/api/vouchers/{id}/edit-form", h.apiEditForm)
		r.Post("/api/vouchers/{id}/reversal", h.apiReversal)
	})

	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// voucherID extracts the numeric {id} URL parameter, writing 400 on failure.
func voucherID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid voucher id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted. An empty
// body leaves v untouched, whatever the Content-Length header says.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
