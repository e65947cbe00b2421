// Package ticketapi exposes the complaint triage and ticket lifecycle over HTTP.
package ticketapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/resolve/internal/ticket"
	"github.com/linnemanlabs/resolve/internal/triage"
)

// TicketService defines the business operations ticketapi needs.
type TicketService interface {
	Evaluate(ctx context.Context, complaint string) (*triage.Verdict, error)
	Submit(ctx context.Context, studentName, studentEmail, complaint string) (*ticket.Ticket, *triage.Verdict, error)
	Assign(ctx context.Context, ticketID, maintainerEmail string) (*ticket.Ticket, error)
	SetStatus(ctx context.Context, ticketID, status string) (*ticket.Ticket, error)
	LogWork(ctx context.Context, ticketID, maintainerEmail, action, notes string) (*ticket.LogEntry, error)
	Checklist(ctx context.Context, ticketID string) ([]*ticket.ChecklistItem, error)
	ToggleItem(ctx context.Context, itemID string) (bool, error)
	TicketsForStudent(ctx context.Context, email string) ([]*ticket.Ticket, error)
	UnassignedOpen(ctx context.Context) ([]*ticket.Ticket, error)
	AllTickets(ctx context.Context) ([]*ticket.Ticket, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TicketService
	auth   func(http.Handler) http.Handler
}

// New creates a new API handler. auth protects the maintainer routes and may
// be nil to leave them open (dev mode).
func New(logger log.Logger, svc TicketService, auth func(http.Handler) http.Handler) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("ticket service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		auth:   auth,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", a.handlePredict)
		r.Post("/tickets", a.handleSubmit)
		r.Get("/student/tickets", a.handleStudentTickets)

		r.Route("/maintainer", func(r chi.Router) {
			if a.auth != nil {
				r.Use(a.auth)
			}
			r.Get("/tickets", a.handleAllTickets)
			r.Get("/tickets/unassigned", a.handleUnassigned)
			r.Post("/tickets/{id}/assign", a.handleAssign)
			r.Post("/tickets/{id}/status", a.handleSetStatus)
			r.Post("/tickets/{id}/log", a.handleLogWork)
			r.Get("/tickets/{id}/checklist", a.handleChecklist)
			r.Post("/checklist/{itemID}/toggle", a.handleToggleItem)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain sentinels to client status codes; anything
// unrecognized is a server error with the detail kept out of the response.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, ticket.ErrTicketNotFound),
		errors.Is(err, ticket.ErrMaintainerNotFound),
		errors.Is(err, ticket.ErrChecklistItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, ticket.ErrUnknownStatus),
		errors.Is(err, ticket.ErrInvalidTransition),
		errors.Is(err, ticket.ErrTicketClosed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		a.logger.Error(r.Context(), err, msg)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
