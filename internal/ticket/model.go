package ticket

import "time"

// Role distinguishes complaint submitters from the people fixing things.
type Role string

const (
	RoleStudent    Role = "student"
	RoleMaintainer Role = "maintainer"
)

// Status tracks where a ticket is in its lifecycle. Rejected and Open are the
// only states a ticket can be created in; Rejected is terminal.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// transitions is the legal move table. Open may resolve directly so a
// maintainer can close a trivial ticket without assigning it first.
var transitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved},
	StatusInProgress: {StatusResolved, StatusOpen},
	StatusResolved:   {},
	StatusRejected:   {},
}

// Known reports whether s is one of the four lifecycle states.
func (s Status) Known() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// User is a student or maintainer, created lazily on first reference and
// never deleted. Email is the natural key, unique and case-sensitive.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Ticket is one triaged complaint. ComplaintText is immutable after creation;
// Category and Priority are empty iff the ticket was rejected; Valid mirrors
// Status != Rejected and is fixed at creation.
type Ticket struct {
	ID            string    `json:"id"`
	ComplaintText string    `json:"complaint_text"`
	Category      string    `json:"category,omitempty"`
	Priority      string    `json:"priority,omitempty"`
	Confidence    float64   `json:"confidence"`
	Status        Status    `json:"status"`
	Valid         bool      `json:"valid"`
	StudentID     string    `json:"student_id"`
	AssignedTo    string    `json:"assigned_to,omitempty"` // maintainer user ID
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChecklistItem is one task from the ticket's category template. Items are
// batch-created at acceptance and only ever flip their Completed flag.
type ChecklistItem struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticket_id"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// LogEntry is one append-only maintenance work record.
type LogEntry struct {
	ID           string    `json:"id"`
	TicketID     string    `json:"ticket_id"`
	MaintainerID string    `json:"maintainer_id"`
	Action       string    `json:"action"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}
