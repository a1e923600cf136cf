package http

import (
	"net/http"

	"github.com/forgecloud/identity-service/internal/application"
)

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req application.ForgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "forgot_password", err)
		return
	}
	req.IPAddress = readIP(r)

	res, err := h.service.ForgotPassword(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "forgot_password", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) verifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req application.VerifyResetOTPRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "verify_reset_otp", err)
		return
	}

	res, err := h.service.VerifyResetOTP(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "verify_reset_otp", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) setNewPassword(w http.ResponseWriter, r *http.Request) {
	var req application.SetNewPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_new_password", err)
		return
	}

	res, err := h.service.SetNewPassword(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_new_password", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
