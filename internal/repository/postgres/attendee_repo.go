package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"eventcheckin/internal/domain"
)

// pqUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO event_attendees (event_id, user_id, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.EventID, a.UserID, a.IsApproved, a.CreatedAt, a.UpdatedAt).
		Scan(&a.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, user_id, is_approved, created_at, updated_at
		FROM event_attendees
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

func (r *attendeeRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, user_id, is_approved, created_at, updated_at
		FROM event_attendees
		WHERE event_id = $1 AND user_id = $2
	`
	return r.getOne(ctx, query, eventID, userID)
}

func (r *attendeeRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&a.ID, &a.EventID, &a.UserID, &a.IsApproved, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.AttendeeListItem, error) {
	query := `
		SELECT a.id, u.name, u.last_name, u.email, a.is_approved
		FROM event_attendees a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.AttendeeListItem
	for rows.Next() {
		item := &domain.AttendeeListItem{}
		var name, lastName sql.NullString
		if err := rows.Scan(&item.ID, &name, &lastName, &item.Email, &item.IsApproved); err != nil {
			return nil, err
		}
		item.Name = domain.FullName(name.String, lastName.String, item.Email)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.AttendeeListItem{}
	}
	return items, nil
}

// Approve locks the event row before counting, so approvals racing for the last seat are serialized.
func (r *attendeeRepository) Approve(ctx context.Context, id string, at time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var eventID string
	var approved bool
	var capacity sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT a.event_id, a.is_approved, e.capacity
		FROM event_attendees a
		JOIN events e ON e.id = a.event_id
		WHERE a.id = $1
		FOR UPDATE OF e
	`, id).Scan(&eventID, &approved, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if approved {
		return nil
	}

	if capacity.Valid {
		var count int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1 AND is_approved`, eventID,
		).Scan(&count); err != nil {
			return err
		}
		if count >= capacity.Int64 {
			return domain.ErrCapacityReached
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE event_attendees SET is_approved = TRUE, updated_at = $2 WHERE id = $1`, id, at,
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *attendeeRepository) Unapprove(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE event_attendees SET is_approved = FALSE, updated_at = $2 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM check_ins WHERE ticket_id IN (SELECT id FROM tickets WHERE attendee_id = $1)`, id,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE attendee_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM event_attendees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
