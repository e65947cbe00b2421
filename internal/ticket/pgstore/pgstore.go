// Package pgstore provides a PostgreSQL implementation of ticket.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/resolve/internal/ticket"
)

var tracer = otel.Tracer("github.com/linnemanlabs/resolve/internal/ticket/pgstore")

//go:embed schema.sql
var schema string

// Store persists the ticket domain in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const ticketColumns = `id, complaint_text, category, priority, confidence, status, valid,
	student_id, assigned_to, created_at, updated_at`

// FindUserByEmail retrieves a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*ticket.User, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.FindUserByEmail", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var u ticket.User
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, role, created_at FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("scan user: %w", err)
	}
	u.Role = ticket.Role(role)
	return &u, true, nil
}

// UpsertUser inserts the user unless a row with the same email already
// exists. The ON CONFLICT clause makes the existing row win and still
// return, so two racing submissions with the same new email resolve to a
// single row.
func (s *Store) UpsertUser(ctx context.Context, u *ticket.User) (*ticket.User, error) {
	ctx, span := tracer.Start(ctx, "pgstore.UpsertUser", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	var out ticket.User
	var role string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, name, email, role, created_at`,
		u.ID, u.Name, u.Email, string(u.Role), u.CreatedAt,
	).Scan(&out.ID, &out.Name, &out.Email, &role, &out.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	out.Role = ticket.Role(role)
	return &out, nil
}

// CreateTicket inserts the ticket and its checklist batch in one transaction.
func (s *Store) CreateTicket(ctx context.Context, t *ticket.Ticket, items []ticket.ChecklistItem) error {
	ctx, span := tracer.Start(ctx, "pgstore.CreateTicket", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is harmless

	_, err = tx.Exec(ctx,
		`INSERT INTO tickets (`+ticketColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.ComplaintText, t.Category, t.Priority, t.Confidence, string(t.Status),
		t.Valid, t.StudentID, t.AssignedTo, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert ticket: %w", err)
	}

	for i := range items {
		item := &items[i]
		_, err = tx.Exec(ctx,
			`INSERT INTO checklist_items (id, ticket_id, task, completed)
			 VALUES ($1, $2, $3, $4)`,
			item.ID, item.TicketID, item.Task, item.Completed,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("insert checklist item %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetTicket retrieves a ticket by ID.
func (s *Store) GetTicket(ctx context.Context, id string) (*ticket.Ticket, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetTicket", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	t, err := scanTicket(s.pool.QueryRow(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if t == nil {
		return nil, false, nil
	}
	return t, true, nil
}

// UpdateTicket rewrites the mutable ticket columns.
func (s *Store) UpdateTicket(ctx context.Context, t *ticket.Ticket) error {
	ctx, span := tracer.Start(ctx, "pgstore.UpdateTicket", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = $2, assigned_to = $3, updated_at = $4 WHERE id = $1`,
		t.ID, string(t.Status), t.AssignedTo, t.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update ticket: %w", err)
	}
	return nil
}

// AppendLog records one maintenance log entry.
func (s *Store) AppendLog(ctx context.Context, entry *ticket.LogEntry) error {
	ctx, span := tracer.Start(ctx, "pgstore.AppendLog", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "INSERT"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO maintenance_logs (id, ticket_id, maintainer_id, action, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.TicketID, entry.MaintainerID, entry.Action, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// TicketsByStudent lists a student's tickets, most recent first.
func (s *Store) TicketsByStudent(ctx context.Context, studentID string) ([]*ticket.Ticket, error) {
	ctx, span := tracer.Start(ctx, "pgstore.TicketsByStudent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	return collectTickets(rows)
}

// UnassignedOpen lists valid Open tickets with no maintainer, newest first.
func (s *Store) UnassignedOpen(ctx context.Context) ([]*ticket.Ticket, error) {
	ctx, span := tracer.Start(ctx, "pgstore.UnassignedOpen", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE status = 'Open' AND assigned_to = '' AND valid
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	return collectTickets(rows)
}

// AllTickets lists every ticket ordered Critical, High, Medium, then the
// rest, ties broken by creation time descending.
func (s *Store) AllTickets(ctx context.Context) ([]*ticket.Ticket, error) {
	ctx, span := tracer.Start(ctx, "pgstore.AllTickets", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 ORDER BY CASE priority
			WHEN 'Critical' THEN 0
			WHEN 'High' THEN 1
			WHEN 'Medium' THEN 2
			ELSE 3
		 END, created_at DESC`,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	return collectTickets(rows)
}

// ChecklistByTicket lists a ticket's checklist items in template order. Item
// IDs are ULIDs minted in batch order, so ID order is template order.
func (s *Store) ChecklistByTicket(ctx context.Context, ticketID string) ([]*ticket.ChecklistItem, error) {
	ctx, span := tracer.Start(ctx, "pgstore.ChecklistByTicket", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, ticket_id, task, completed FROM checklist_items
		 WHERE ticket_id = $1 ORDER BY id`,
		ticketID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer rows.Close()

	out := []*ticket.ChecklistItem{}
	for rows.Next() {
		var item ticket.ChecklistItem
		if err := rows.Scan(&item.ID, &item.TicketID, &item.Task, &item.Completed); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist: %w", err)
	}
	return out, nil
}

// GetChecklistItem retrieves a checklist item by ID.
func (s *Store) GetChecklistItem(ctx context.Context, id string) (*ticket.ChecklistItem, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetChecklistItem", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	var item ticket.ChecklistItem
	err := s.pool.QueryRow(ctx,
		`SELECT id, ticket_id, task, completed FROM checklist_items WHERE id = $1`, id,
	).Scan(&item.ID, &item.TicketID, &item.Task, &item.Completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, fmt.Errorf("scan checklist item: %w", err)
	}
	return &item, true, nil
}

// UpdateChecklistItem rewrites a checklist item's completion flag.
func (s *Store) UpdateChecklistItem(ctx context.Context, item *ticket.ChecklistItem) error {
	ctx, span := tracer.Start(ctx, "pgstore.UpdateChecklistItem", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPDATE"),
	))
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`UPDATE checklist_items SET completed = $2 WHERE id = $1`,
		item.ID, item.Completed,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update checklist item: %w", err)
	}
	return nil
}

// LogsByTicket lists a ticket's work log, oldest first.
func (s *Store) LogsByTicket(ctx context.Context, ticketID string) ([]*ticket.LogEntry, error) {
	ctx, span := tracer.Start(ctx, "pgstore.LogsByTicket", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, ticket_id, maintainer_id, action, notes, created_at
		 FROM maintenance_logs WHERE ticket_id = $1 ORDER BY created_at, id`,
		ticketID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	out := []*ticket.LogEntry{}
	for rows.Next() {
		var entry ticket.LogEntry
		if err := rows.Scan(&entry.ID, &entry.TicketID, &entry.MaintainerID, &entry.Action, &entry.Notes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return out, nil
}

func collectTickets(rows pgx.Rows) ([]*ticket.Ticket, error) {
	defer rows.Close()

	out := []*ticket.Ticket{}
	for rows.Next() {
		t, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return out, nil
}

// scanTicket scans a single row into a Ticket. Returns (nil, nil) when no
// row is found.
func scanTicket(row pgx.Row) (*ticket.Ticket, error) {
	t, err := scanTicketRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func scanTicketRow(row pgx.Row) (*ticket.Ticket, error) {
	var t ticket.Ticket
	var status string
	err := row.Scan(
		&t.ID, &t.ComplaintText, &t.Category, &t.Priority, &t.Confidence, &status,
		&t.Valid, &t.StudentID, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan ticket: %w", err)
	}
	t.Status = ticket.Status(status)
	return &t, nil
}
