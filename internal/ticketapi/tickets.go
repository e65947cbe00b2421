package ticketapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type predictRequest struct {
	Text string `json:"text"`
}

type submitRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ComplaintText string `json:"complaint_text"`
}

// handlePredict runs the triage decision without creating anything. Useful
// for previewing what a submission would do.
func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	v, err := a.svc.Evaluate(r.Context(), req.Text)
	if err != nil {
		a.writeServiceError(w, r, err, "predict failed")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if strings.TrimSpace(req.ComplaintText) == "" {
		writeError(w, http.StatusBadRequest, "complaint_text is required")
		return
	}

	t, v, err := a.svc.Submit(r.Context(), req.Name, req.Email, req.ComplaintText)
	if err != nil {
		a.writeServiceError(w, r, err, "submit failed")
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("resolve.ticket.id", t.ID),
		attribute.String("resolve.ticket.status", string(t.Status)),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"ticket":  t,
		"verdict": v,
	})
}

func (a *API) handleStudentTickets(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	list, err := a.svc.TicketsForStudent(r.Context(), email)
	if err != nil {
		a.writeServiceError(w, r, err, "list student tickets failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": list})
}
