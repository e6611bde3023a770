package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-verification-api/internal/application/verification"
	"github.com/go-verification-api/internal/domain"
	"github.com/go-verification-api/internal/pkg/validate"
	"github.com/go-verification-api/internal/transport/http/middleware"
)

const maxBodyBytes = 1 << 20

const (
	errEmailRequired        = "Email address is required"
	errEmailAndCodeRequired = "Email address and verification code are required"
)

// VerificationHandler exposes code issuance and confirmation.
type VerificationHandler struct {
	svc verification.Service
}

func NewVerificationHandler(svc verification.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// Send handles POST /api/verification/send.
func (h *VerificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendCodeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errEmailRequired)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, errEmailRequired)
		return
	}
	out := h.svc.RequestCode(r.Context(), req)
	logCall(r, "send", out)
	writeJSON(w, statusFor(out), out)
}

// Verify handles POST /api/verification/verify.
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyCodeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errEmailAndCodeRequired)
		return
	}
	h.confirm(w, r, req)
}

// VerifyLink handles GET /api/verification/verify?email=..&code=.., the target
// of the link embedded in verification emails.
func (h *VerificationHandler) VerifyLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.confirm(w, r, domain.VerifyCodeRequest{Email: q.Get("email"), Code: q.Get("code")})
}

func (h *VerificationHandler) confirm(w http.ResponseWriter, r *http.Request, req domain.VerifyCodeRequest) {
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, errEmailAndCodeRequired)
		return
	}
	out := h.svc.Confirm(r.Context(), req)
	logCall(r, "verify", out)
	writeJSON(w, statusFor(out), out)
}

// caller names the authenticated service behind r, or "anonymous" when the
// routes run without bearer auth.
func caller(r *http.Request) (subject, scope string) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok || c == nil {
		return "anonymous", ""
	}
	return c.Subject, c.Scope
}

func logCall(r *http.Request, op string, out domain.Outcome) {
	subject, scope := caller(r)
	slog.Info("verification call",
		"op", op,
		"caller", subject,
		"scope", scope,
		"succeeded", out.Succeeded,
		"failure", out.Kind.String(),
	)
}

// statusFor maps an outcome to a response status. Delivery and no-match
// failures are both reported as server errors.
func statusFor(out domain.Outcome) int {
	if out.Succeeded {
		return http.StatusOK
	}
	if out.Kind == domain.FailureInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
