package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"eventcheckin/internal/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{
		DB: db,
	}
}

const ticketDetailsQuery = `
	SELECT t.id, t.code, t.attendee_id, t.event_id, t.is_checked_in, t.checked_in_at, t.revoked_at, t.created_at,
		u.name, u.last_name, u.email
	FROM tickets t
	JOIN event_attendees a ON a.id = t.attendee_id
	JOIN users u ON u.id = a.user_id
	WHERE t.code = $1 AND t.revoked_at IS NULL
`

func (r *ticketRepository) Issue(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (code, attendee_id, event_id, is_checked_in, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		ON CONFLICT (attendee_id) DO UPDATE SET revoked_at = NULL
		RETURNING id, code, is_checked_in, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, t.Code, t.AttendeeID, t.EventID, t.CreatedAt).
		Scan(&t.ID, &t.Code, &t.IsCheckedIn, &t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return domain.ErrTicketCodeTaken
		}
		return err
	}
	t.RevokedAt = nil
	t.CheckedInAt = nil
	return nil
}

func (r *ticketRepository) Revoke(ctx context.Context, attendeeID, operatorID string, at time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var ticketID string
	err = tx.QueryRowContext(ctx, `
		UPDATE tickets
		SET revoked_at = $2, is_checked_in = FALSE, checked_in_at = NULL
		WHERE attendee_id = $1 AND revoked_at IS NULL
		RETURNING id
	`, attendeeID, at).Scan(&ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if err := voidLiveCheckIn(ctx, tx, ticketID, operatorID, at); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ticketRepository) GetByAttendeeID(ctx context.Context, attendeeID string) (*domain.Ticket, error) {
	query := `
		SELECT id, code, attendee_id, event_id, is_checked_in, checked_in_at, revoked_at, created_at
		FROM tickets
		WHERE attendee_id = $1
	`
	t := &domain.Ticket{}
	var checkedInAt, revokedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, attendeeID).
		Scan(&t.ID, &t.Code, &t.AttendeeID, &t.EventID, &t.IsCheckedIn, &checkedInAt, &revokedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.CheckedInAt = nullTime(checkedInAt)
	t.RevokedAt = nullTime(revokedAt)
	return t, nil
}

func (r *ticketRepository) GetDetailsByCode(ctx context.Context, code string) (*domain.TicketDetails, error) {
	return getTicketDetails(ctx, r.DB, code)
}

func (r *ticketRepository) CheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*domain.TicketDetails, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// The guard on is_checked_in makes concurrent scans of one code race on the row lock;
	// the loser re-evaluates the predicate against the committed row and updates nothing.
	ticketID, err := guardedTransition(ctx, tx, eventID, code, true, `
		UPDATE tickets
		SET is_checked_in = TRUE, checked_in_at = $3
		WHERE code = $1 AND event_id = $2 AND revoked_at IS NULL AND NOT is_checked_in
		RETURNING id
	`, code, eventID, at)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO check_ins (ticket_id, event_id, checked_in_at, checked_in_by)
		VALUES ($1, $2, $3, $4)
	`, ticketID, eventID, at, operatorID); err != nil {
		return nil, err
	}

	details, err := getTicketDetails(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *ticketRepository) UncheckIn(ctx context.Context, eventID, code, operatorID string, at time.Time) (*domain.TicketDetails, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ticketID, err := guardedTransition(ctx, tx, eventID, code, false, `
		UPDATE tickets
		SET is_checked_in = FALSE, checked_in_at = NULL
		WHERE code = $1 AND event_id = $2 AND revoked_at IS NULL AND is_checked_in
		RETURNING id
	`, code, eventID)
	if err != nil {
		return nil, err
	}

	if err := voidLiveCheckIn(ctx, tx, ticketID, operatorID, at); err != nil {
		return nil, err
	}

	details, err := getTicketDetails(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return details, nil
}

func voidLiveCheckIn(ctx context.Context, tx *sql.Tx, ticketID, operatorID string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE check_ins
		SET voided_at = $2, voided_by = $3
		WHERE ticket_id = $1 AND voided_at IS NULL
	`, ticketID, at, operatorID)
	return err
}

// maxTransitionAttempts bounds how often a guarded update is re-run when the ticket
// flipped state between the update and the classifying read.
const maxTransitionAttempts = 3

// guardedTransition runs the conditional UPDATE and returns the ticket id. When no row
// matched it classifies the failure, and re-runs the update if the classifying read shows
// a state the update would now accept.
func guardedTransition(ctx context.Context, tx *sql.Tx, eventID, code string, checkingIn bool, query string, args ...any) (string, error) {
	for attempt := 1; ; attempt++ {
		var ticketID string
		err := tx.QueryRowContext(ctx, query, args...).Scan(&ticketID)
		if err == nil {
			return ticketID, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		err = classifyTransitionFailure(ctx, tx, eventID, code, checkingIn)
		if errors.Is(err, domain.ErrTransitionConflict) && attempt < maxTransitionAttempts {
			continue
		}
		return "", err
	}
}

// classifyTransitionFailure explains why a guarded update matched no row.
func classifyTransitionFailure(ctx context.Context, q queryer, eventID, code string, checkingIn bool) error {
	var ticketEventID string
	var isCheckedIn bool
	var checkedInAt, revokedAt sql.NullTime
	err := q.QueryRowContext(ctx,
		`SELECT event_id, is_checked_in, checked_in_at, revoked_at FROM tickets WHERE code = $1`, code,
	).Scan(&ticketEventID, &isCheckedIn, &checkedInAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrTicketNotFound
		}
		return err
	}

	switch {
	case revokedAt.Valid:
		return domain.ErrTicketNotFound
	case ticketEventID != eventID:
		return domain.ErrEventMismatch
	case checkingIn && isCheckedIn && checkedInAt.Valid:
		return &domain.AlreadyCheckedInError{CheckedInAt: checkedInAt.Time}
	case checkingIn && isCheckedIn:
		return domain.ErrAlreadyCheckedIn
	case checkingIn:
		// Unchecked by someone else after our update missed it.
		return domain.ErrTransitionConflict
	case isCheckedIn:
		// Checked in by someone else after our update missed it.
		return domain.ErrTransitionConflict
	default:
		return domain.ErrNotCheckedIn
	}
}

func getTicketDetails(ctx context.Context, q queryer, code string) (*domain.TicketDetails, error) {
	d := &domain.TicketDetails{}
	var checkedInAt, revokedAt sql.NullTime
	var name, lastName sql.NullString
	err := q.QueryRowContext(ctx, ticketDetailsQuery, code).Scan(
		&d.ID, &d.Code, &d.AttendeeID, &d.EventID, &d.IsCheckedIn, &checkedInAt, &revokedAt, &d.CreatedAt,
		&name, &lastName, &d.HolderEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	d.CheckedInAt = nullTime(checkedInAt)
	d.RevokedAt = nullTime(revokedAt)
	d.HolderName = name.String
	d.HolderLastName = lastName.String
	return d, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
