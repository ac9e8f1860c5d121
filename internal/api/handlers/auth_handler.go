package handlers

import (
	"net/http"

	"askly/internal/engine/identity"
	"askly/internal/pkg/errors"
)

type AuthHandler struct {
	identity *identity.Service
}

func NewAuthHandler(identitySvc *identity.Service) *AuthHandler {
	return &AuthHandler{identity: identitySvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req identity.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	session, err := h.identity.Register(r.Context(), req)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	session, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// User returns the authenticated user without credentials.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.GetByID(r.Context(), principalFrom(r).ID)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
