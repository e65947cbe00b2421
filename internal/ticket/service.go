package ticket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/resolve/internal/triage"
)

// Client-visible failures. The HTTP layer maps these to status codes;
// everything else is a server error.
var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrMaintainerNotFound    = errors.New("maintainer not found")
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	ErrUnknownStatus         = errors.New("unknown status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrTicketClosed          = errors.New("ticket is closed")
)

// Notifier announces newly accepted tickets (e.g. to a Slack channel).
type Notifier interface {
	Send(ctx context.Context, t *Ticket) error
}

// resolvePolicy controls whether a referenced user may be created on the fly.
// Submission and assignment upsert; work-logging requires the maintainer to
// already exist.
type resolvePolicy int

const (
	resolveUpsert resolvePolicy = iota
	resolveLookup
)

// Service is the business boundary for the ticket lifecycle.
type Service struct {
	store    Store
	engine   *triage.Engine
	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
}

// NewService creates a ticket service. metrics and notifier may be nil.
func NewService(store Store, engine *triage.Engine, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:    store,
		engine:   engine,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
	}
}

// Evaluate runs the triage engine without persisting anything.
func (s *Service) Evaluate(ctx context.Context, complaint string) (*triage.Verdict, error) {
	return s.engine.Evaluate(ctx, complaint)
}

// Submit triages a complaint and persists the resulting ticket. The student
// is upserted by email; an accepted ticket starts Open with a checklist
// materialized from its category template, a rejected one is stored Rejected
// with no category, priority, or checklist. Rejection is a normal outcome,
// not an error.
func (s *Service) Submit(ctx context.Context, studentName, studentEmail, complaint string) (*Ticket, *triage.Verdict, error) {
	v, err := s.engine.Evaluate(ctx, complaint)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate complaint: %w", err)
	}

	student, err := s.resolveUser(ctx, studentEmail, studentName, RoleStudent, resolveUpsert)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve student: %w", err)
	}

	now := time.Now()
	t := &Ticket{
		ID:            ulid.Make().String(),
		ComplaintText: complaint,
		Category:      v.Category,
		Priority:      v.Priority,
		Confidence:    v.Confidence,
		Status:        StatusOpen,
		Valid:         v.Valid,
		StudentID:     student.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !v.Valid {
		t.Status = StatusRejected
	}

	var items []ChecklistItem
	if v.Valid {
		if tasks, ok := ChecklistTemplate(v.Category); ok {
			items = make([]ChecklistItem, 0, len(tasks))
			for _, task := range tasks {
				items = append(items, ChecklistItem{
					ID:       ulid.Make().String(),
					TicketID: t.ID,
					Task:     task,
				})
			}
		}
	}

	if err := s.store.CreateTicket(ctx, t, items); err != nil {
		return nil, nil, fmt.Errorf("create ticket: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TicketsTotal.WithLabelValues(string(t.Status), categoryLabel(t.Category)).Inc()
	}

	s.logger.Info(ctx, "ticket created",
		"ticket_id", t.ID,
		"status", t.Status,
		"category", t.Category,
		"priority", t.Priority,
		"confidence", t.Confidence,
		"checklist_items", len(items),
	)

	// Announce urgent accepted tickets. Fire-and-forget: notification failure
	// must not fail the submission.
	if s.notifier != nil && t.Valid && t.Priority == "Critical" {
		go s.notify(context.WithoutCancel(ctx), t)
	}

	return t, v, nil
}

// Assign binds a maintainer to a ticket and moves it to In Progress. The
// maintainer is upserted by email, defaulting the name to the email's local
// part. Assignment is legal from Open (first assignment) and In Progress
// (reassignment).
func (s *Service) Assign(ctx context.Context, ticketID, maintainerEmail string) (*Ticket, error) {
	t, ok, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if !ok {
		return nil, ErrTicketNotFound
	}

	if t.Status != StatusOpen && t.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: cannot assign ticket in status %q", ErrTicketClosed, t.Status)
	}

	name := maintainerEmail
	if i := strings.Index(maintainerEmail, "@"); i > 0 {
		name = maintainerEmail[:i]
	}
	maintainer, err := s.resolveUser(ctx, maintainerEmail, name, RoleMaintainer, resolveUpsert)
	if err != nil {
		return nil, fmt.Errorf("resolve maintainer: %w", err)
	}

	from := t.Status
	t.AssignedTo = maintainer.ID
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now()

	if err := s.store.UpdateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AssignmentsTotal.Inc()
		if from != t.Status {
			s.metrics.TransitionsTotal.WithLabelValues(string(from), string(t.Status)).Inc()
		}
	}

	s.logger.Info(ctx, "ticket assigned",
		"ticket_id", t.ID,
		"maintainer", maintainer.Email,
		"from_status", from,
	)
	return t, nil
}

// SetStatus moves a ticket to a new lifecycle state. The target must be one
// of the known states and the move must be in the transition table; tickets
// never re-enter Rejected.
func (s *Service) SetStatus(ctx context.Context, ticketID string, status string) (*Ticket, error) {
	next := Status(status)
	if !next.Known() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	t, ok, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if !ok {
		return nil, ErrTicketNotFound
	}

	if !t.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, next)
	}

	from := t.Status
	t.Status = next
	t.UpdatedAt = time.Now()

	if err := s.store.UpdateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(from), string(next)).Inc()
	}

	s.logger.Info(ctx, "ticket status changed", "ticket_id", t.ID, "from", from, "to", next)
	return t, nil
}

// LogWork appends one immutable work record. Unlike assignment, the
// maintainer must already exist: work cannot be logged on behalf of someone
// the system has never seen.
func (s *Service) LogWork(ctx context.Context, ticketID, maintainerEmail, action, notes string) (*LogEntry, error) {
	maintainer, err := s.resolveUser(ctx, maintainerEmail, "", RoleMaintainer, resolveLookup)
	if err != nil {
		return nil, err
	}

	_, ok, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if !ok {
		return nil, ErrTicketNotFound
	}

	entry := &LogEntry{
		ID:           ulid.Make().String(),
		TicketID:     ticketID,
		MaintainerID: maintainer.ID,
		Action:       action,
		Notes:        notes,
		CreatedAt:    time.Now(),
	}

	if err := s.store.AppendLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("append log: %w", err)
	}

	if s.metrics != nil {
		s.metrics.WorkLogsTotal.Inc()
	}

	s.logger.Info(ctx, "work logged",
		"ticket_id", ticketID,
		"maintainer", maintainer.Email,
		"action", action,
	)
	return entry, nil
}

// Checklist returns a ticket's checklist items. An unknown ticket yields an
// empty list, mirroring the listing endpoints.
func (s *Service) Checklist(ctx context.Context, ticketID string) ([]*ChecklistItem, error) {
	return s.store.ChecklistByTicket(ctx, ticketID)
}

// ToggleItem flips a checklist item's completion flag and returns the new
// value. Toggling twice restores the original state.
func (s *Service) ToggleItem(ctx context.Context, itemID string) (bool, error) {
	item, ok, err := s.store.GetChecklistItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("get checklist item: %w", err)
	}
	if !ok {
		return false, ErrChecklistItemNotFound
	}

	item.Completed = !item.Completed
	if err := s.store.UpdateChecklistItem(ctx, item); err != nil {
		return false, fmt.Errorf("update checklist item: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChecklistTogglesTotal.Inc()
	}
	return item.Completed, nil
}

// TicketsForStudent lists a student's tickets, most recent first. An unknown
// email yields an empty list rather than an error.
func (s *Service) TicketsForStudent(ctx context.Context, email string) ([]*Ticket, error) {
	student, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	if !ok || student.Role != RoleStudent {
		return []*Ticket{}, nil
	}
	return s.store.TicketsByStudent(ctx, student.ID)
}

// UnassignedOpen lists valid Open tickets with no maintainer.
func (s *Service) UnassignedOpen(ctx context.Context) ([]*Ticket, error) {
	return s.store.UnassignedOpen(ctx)
}

// AllTickets lists every ticket ordered Critical, High, Medium, then the
// rest, ties broken by creation time descending.
func (s *Service) AllTickets(ctx context.Context) ([]*Ticket, error) {
	return s.store.AllTickets(ctx)
}

// resolveUser finds or creates the user for an email according to policy.
// With resolveLookup the user must already exist with the wanted role; with
// resolveUpsert an existing row wins (its role is never rewritten) and a
// missing one is created atomically on the email key.
func (s *Service) resolveUser(ctx context.Context, email, name string, role Role, policy resolvePolicy) (*User, error) {
	u, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if ok {
		if policy == resolveLookup && u.Role != role {
			return nil, ErrMaintainerNotFound
		}
		return u, nil
	}
	if policy == resolveLookup {
		return nil, ErrMaintainerNotFound
	}

	created, err := s.store.UpsertUser(ctx, &User{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return created, nil
}

func (s *Service) notify(ctx context.Context, t *Ticket) {
	if err := s.notifier.Send(ctx, t); err != nil {
		s.logger.Error(ctx, err, "ticket notification failed", "ticket_id", t.ID)
	}
}

// categoryLabel keeps the metrics label space bounded for rejected tickets.
func categoryLabel(category string) string {
	if category == "" {
		return "none"
	}
	return category
}
