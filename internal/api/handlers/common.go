package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/propdesk/propdesk/internal/api/dto"
	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/tenant"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// base carries what every handler needs for failure reporting. Unexpected
// errors are logged with detail and answered with a generic body; the detail
// is echoed to the client only in development mode.
type base struct {
	logger *slog.Logger
	dev    bool
}

func (b base) internalError(w http.ResponseWriter, public string, err error) {
	b.logger.Error(public, "error", err)

	resp := dto.ErrorResponse{Error: public}
	if b.dev && err != nil {
		resp.Details = map[string]string{"detail": err.Error()}
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// companyScope resolves the row-filter for company-scoped resources. Callers
// without a company affiliation are rejected before any query runs.
func companyScope(w http.ResponseWriter, r *http.Request, resolver *tenant.Resolver) (string, bool) {
	caller := middleware.GetUser(r.Context())
	if caller == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return "", false
	}

	scope, err := resolver.Scope(caller)
	if err != nil {
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "No company assigned"})
		return "", false
	}

	return scope, true
}
