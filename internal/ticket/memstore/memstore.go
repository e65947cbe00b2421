// Package memstore provides an in-memory implementation of ticket.Store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/linnemanlabs/resolve/internal/ticket"
)

// Store holds the ticket domain in memory. Suitable for dev/testing. The
// single mutex serializes email upserts, which is what makes concurrent
// submissions with the same new email resolve to one User row.
type Store struct {
	mu      sync.RWMutex
	users   map[string]*ticket.User // email -> user
	tickets map[string]*ticket.Ticket
	items   map[string]*ticket.ChecklistItem
	logs    []*ticket.LogEntry
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		users:   make(map[string]*ticket.User),
		tickets: make(map[string]*ticket.Ticket),
		items:   make(map[string]*ticket.ChecklistItem),
	}
}

// FindUserByEmail retrieves a user by email. Returns a copy.
func (s *Store) FindUserByEmail(_ context.Context, email string) (*ticket.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

// UpsertUser inserts the user unless a row with the same email already
// exists, in which case the existing row wins.
func (s *Store) UpsertUser(_ context.Context, u *ticket.User) (*ticket.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.Email]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *u
	s.users[u.Email] = &cp
	out := cp
	return &out, nil
}

// CreateTicket stores the ticket and its checklist batch together.
func (s *Store) CreateTicket(_ context.Context, t *ticket.Ticket, items []ticket.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets[t.ID] = &cp
	for i := range items {
		item := items[i]
		s.items[item.ID] = &item
	}
	return nil
}

// GetTicket retrieves a ticket by ID. Returns a copy.
func (s *Store) GetTicket(_ context.Context, id string) (*ticket.Ticket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, false, nil
	}
	cp := *t
	return &cp, true, nil
}

// UpdateTicket stores a copy of the updated ticket.
func (s *Store) UpdateTicket(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

// AppendLog records one maintenance log entry.
func (s *Store) AppendLog(_ context.Context, entry *ticket.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.logs = append(s.logs, &cp)
	return nil
}

// TicketsByStudent lists a student's tickets, most recent first.
func (s *Store) TicketsByStudent(_ context.Context, studentID string) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ticket.Ticket{}
	for _, t := range s.tickets {
		if t.StudentID == studentID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UnassignedOpen lists valid Open tickets with no maintainer.
func (s *Store) UnassignedOpen(_ context.Context) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ticket.Ticket{}
	for _, t := range s.tickets {
		if t.Status == ticket.StatusOpen && t.AssignedTo == "" && t.Valid {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// priorityRank orders the maintainer dashboard: Critical first, then High,
// Medium, and everything else (including rejected tickets with no priority).
func priorityRank(priority string) int {
	switch priority {
	case "Critical":
		return 0
	case "High":
		return 1
	case "Medium":
		return 2
	default:
		return 3
	}
}

// AllTickets lists every ticket in priority order, ties broken by creation
// time descending.
func (s *Store) AllTickets(_ context.Context) ([]*ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ticket.Ticket{}
	for _, t := range s.tickets {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := priorityRank(out[i].Priority), priorityRank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ChecklistByTicket lists a ticket's checklist items in task-template order.
func (s *Store) ChecklistByTicket(_ context.Context, ticketID string) ([]*ticket.ChecklistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ticket.ChecklistItem{}
	for _, item := range s.items {
		if item.TicketID == ticketID {
			cp := *item
			out = append(out, &cp)
		}
	}
	// item IDs are ULIDs minted in batch order, so ID order is template order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetChecklistItem retrieves a checklist item by ID. Returns a copy.
func (s *Store) GetChecklistItem(_ context.Context, id string) (*ticket.ChecklistItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, false, nil
	}
	cp := *item
	return &cp, true, nil
}

// UpdateChecklistItem stores a copy of the updated item.
func (s *Store) UpdateChecklistItem(_ context.Context, item *ticket.ChecklistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

// LogsByTicket lists a ticket's work log, oldest first.
func (s *Store) LogsByTicket(_ context.Context, ticketID string) ([]*ticket.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ticket.LogEntry{}
	for _, entry := range s.logs {
		if entry.TicketID == ticketID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}
