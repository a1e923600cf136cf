package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/forgecloud/identity-service/internal/domain"
)

// plans lists the subscription tiers. Authenticated callers additionally see
// which tier is theirs; anonymous callers get the bare list.
func (h *Handler) plans(w http.ResponseWriter, r *http.Request) {
	tiers := []domain.Plan{
		domain.PlanFree,
		domain.PlanDeveloper,
		domain.PlanProfessional,
		domain.PlanEnterprise,
	}
	data := map[string]any{"plans": tiers}
	if identity, ok := identityFromContext(r.Context()); ok {
		data["currentPlan"] = identity.Plan
	}
	writeSuccess(w, http.StatusOK, data)
}

func (h *Handler) loginHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	h.writeLoginHistory(w, r, identity.AccountID)
}

func (h *Handler) accountLoginHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "account_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	h.writeLoginHistory(w, r, accountID)
}

func (h *Handler) writeLoginHistory(w http.ResponseWriter, r *http.Request, accountID uuid.UUID) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
	offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

	attempts, err := h.service.LoginHistory(r.Context(), accountID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "login_history", err)
		return
	}

	items := make([]map[string]any, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, map[string]any{
			"attemptAt":     a.AttemptAt,
			"status":        a.Status,
			"failureReason": a.FailureReason,
			"ipAddress":     a.IPAddress,
			"userAgent":     a.UserAgent,
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"attempts": items})
}
