package http

import (
	"net/http"

	"github.com/forgecloud/identity-service/internal/application"
)

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyEmailRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_email", err)
		return
	}

	res, err := h.service.VerifyEmail(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_email", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) setPassword(w http.ResponseWriter, r *http.Request) {
	var req application.SetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_password", err)
		return
	}

	res, err := h.service.SetPassword(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_password", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) verifyLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyLoginOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_login_otp", err)
		return
	}
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.VerifyLoginOTP(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_login_otp", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	res, err := h.service.Refresh(r.Context(), identity.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// logout is deliberately a no-op: tokens are stateless bearer credentials
// and stay valid until natural expiry. Clients discard theirs here.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	account, err := h.service.Account(r.Context(), identity.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "me", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"user": account.Summary()})
}
