package ticketapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type assignRequest struct {
	Email string `json:"email"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type logRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

func (a *API) handleAllTickets(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.AllTickets(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err, "list tickets failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": list})
}

func (a *API) handleUnassigned(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.UnassignedOpen(r.Context())
	if err != nil {
		a.writeServiceError(w, r, err, "list unassigned tickets failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": list})
}

func (a *API) handleAssign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("resolve.ticket.id", id))

	t, err := a.svc.Assign(r.Context(), id, req.Email)
	if err != nil {
		a.writeServiceError(w, r, err, "assign failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("resolve.ticket.id", id),
		attribute.String("resolve.ticket.target_status", req.Status),
	)

	t, err := a.svc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		a.writeServiceError(w, r, err, "status change failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleLogWork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	entry, err := a.svc.LogWork(r.Context(), id, req.Email, req.Action, req.Notes)
	if err != nil {
		a.writeServiceError(w, r, err, "log work failed")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) handleChecklist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := a.svc.Checklist(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, err, "list checklist failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checklist": items})
}

func (a *API) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	completed, err := a.svc.ToggleItem(r.Context(), itemID)
	if err != nil {
		a.writeServiceError(w, r, err, "toggle checklist item failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        itemID,
		"completed": completed,
	})
}
