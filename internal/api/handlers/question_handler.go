package handlers

import (
	"net/http"

	"askly/internal/engine/admission"
	"askly/internal/engine/organizations"
	"askly/internal/engine/questions"
	"askly/internal/pkg/errors"
)

type QuestionHandler struct {
	admission *admission.Controller
	ledger    *questions.Ledger
	registry  *organizations.Registry
}

func NewQuestionHandler(controller *admission.Controller, ledger *questions.Ledger, registry *organizations.Registry) *QuestionHandler {
	return &QuestionHandler{admission: controller, ledger: ledger, registry: registry}
}

func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req admission.SubmitInput
	if err := decodeJSON(w, r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	question, err := h.admission.Submit(r.Context(), principalFrom(r), req)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// List is public. Anonymous questions never reveal their author.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	org, err := h.registry.GetBySlug(r.Context(), param(r, "orgUrl"))
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	views, err := h.ledger.ListForOrganization(r.Context(), org.ID)
	if err != nil {
		errors.WriteDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}
