package handlers

import (
	"net/http"
	"strconv"

	"askly/internal/engine/organizations"
	"askly/internal/pkg/errors"
)

type AuditHandler struct {
	registry *organizations.Registry
}

func NewAuditHandler(registry *organizations.Registry) *AuditHandler {
	return &AuditHandler{registry: registry}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "limit must be an integer", nil)
			return
		}
		limit = n
	}

	logs, err := h.registry.AuditTrail(r.Context(), principalFrom(r), param(r, "url"), limit)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
