package ticket

import "context"

// Store is the persistence contract for the ticket lifecycle.
//
// UpsertUser must be atomic with respect to concurrent calls with the same
// email: two racing submissions from a new student must resolve to a single
// User row. CreateTicket must insert the ticket and its checklist batch in
// one transaction: either all rows exist afterwards or none do.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*User, bool, error)
	UpsertUser(ctx context.Context, u *User) (*User, error)

	CreateTicket(ctx context.Context, t *Ticket, items []ChecklistItem) error
	GetTicket(ctx context.Context, id string) (*Ticket, bool, error)
	UpdateTicket(ctx context.Context, t *Ticket) error

	AppendLog(ctx context.Context, entry *LogEntry) error

	TicketsByStudent(ctx context.Context, studentID string) ([]*Ticket, error)
	UnassignedOpen(ctx context.Context) ([]*Ticket, error)
	AllTickets(ctx context.Context) ([]*Ticket, error)

	ChecklistByTicket(ctx context.Context, ticketID string) ([]*ChecklistItem, error)
	GetChecklistItem(ctx context.Context, id string) (*ChecklistItem, bool, error)
	UpdateChecklistItem(ctx context.Context, item *ChecklistItem) error
}
