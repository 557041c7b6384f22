package api

import (
	"net/http"
	"strconv"

	"github.com/alkubo/SafeVault/internal/audit"
)

// handleListAuditEvents returns the security audit trail, most recent first.
// Supports ?action=, ?username=, ?limit=, and ?offset= query parameters.
func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:   q.Get("action"),
		Username: q.Get("username"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("list audit events failed", "error", err)
		writeInternalError(w, "failed to list audit events")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
