package handlers

import (
	"net/http"
	"strconv"

	"askly/internal/engine/organizations"
	"askly/internal/pkg/errors"
)

type OrgHandler struct {
	registry *organizations.Registry
}

func NewOrgHandler(registry *organizations.Registry) *OrgHandler {
	return &OrgHandler{registry: registry}
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req organizations.CreateInput
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.registry.Create(r.Context(), principalFrom(r), req)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

type JoinRequest struct {
	UniqueURL string `json:"uniqueUrl"`
}

func (h *OrgHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.registry.Join(r.Context(), principalFrom(r), req.UniqueURL)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Joined organization successfully",
		"organization": org,
	})
}

func (h *OrgHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.registry.ListMine(r.Context(), principalFrom(r))
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, orgs)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.registry.GetBySlug(r.Context(), param(r, "url"))
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) ToggleMessages(w http.ResponseWriter, r *http.Request) {
	org, err := h.registry.ToggleMessaging(r.Context(), principalFrom(r), param(r, "id"))
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req organizations.SettingsInput
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.registry.UpdateSettings(r.Context(), principalFrom(r), param(r, "id"), req)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, org)
}

// QRCode serves a PNG linking to the organization's public page. ?size= sets
// the edge length in pixels.
func (h *OrgHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "size must be an integer", nil)
			return
		}
		size = n
	}

	png, err := h.registry.ShareQR(r.Context(), param(r, "url"), size)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
