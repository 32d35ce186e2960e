package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/application"
)

func eventIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "event_id")
	eventID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("event_id must be a valid UUID")
	}
	return eventID, nil
}

func (h *Handler) listEventRoles(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "list_event_roles")
		return
	}
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_event_roles", err)
		return
	}
	res, err := h.service.ListEventRoles(r.Context(), token, eventID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_event_roles", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) setRoles(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "set_roles")
		return
	}
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeValidationError(r.Context(), w, "set_roles", err)
		return
	}
	var req application.SetRolesRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_roles", err)
		return
	}
	res, err := h.service.SetRoles(r.Context(), token, eventID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_roles", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) swapExclusiveRole(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "swap_exclusive_role")
		return
	}
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeValidationError(r.Context(), w, "swap_exclusive_role", err)
		return
	}
	var req application.SwapExclusiveRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "swap_exclusive_role", err)
		return
	}
	res, err := h.service.SwapExclusiveRole(r.Context(), token, eventID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "swap_exclusive_role", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r)
	if !ok {
		writeMissingBearerError(r.Context(), w, "get_payment")
		return
	}
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_payment", err)
		return
	}
	res, err := h.service.GetPayment(r.Context(), token, eventID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_payment", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
