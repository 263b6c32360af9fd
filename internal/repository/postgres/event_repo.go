package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventcheckin/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, name, owner_id, starts_at, ends_at, location_type, capacity, visibility, requires_approval, created_at, updated_at`

// Create inserts the event and grants its owner the CREATOR role in the same transaction.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO events (name, owner_id, starts_at, ends_at, location_type, capacity, visibility, requires_approval, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var capacity sql.NullInt64
	if e.Capacity != nil {
		capacity = sql.NullInt64{Int64: int64(*e.Capacity), Valid: true}
	}
	if err := tx.QueryRowContext(ctx, query,
		e.Name, e.OwnerID, e.StartsAt, e.EndsAt, string(e.LocationType), capacity, string(e.Visibility), e.RequiresApproval, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_roles (event_id, user_id, role) VALUES ($1, $2, $3)`,
		e.ID, e.OwnerID, string(domain.RoleCreator),
	); err != nil {
		return fmt.Errorf("grant creator role: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event and everything that references it. Rows are removed child-first so the
// cascade does not depend on foreign key ON DELETE rules.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM check_ins WHERE event_id = $1`,
		`DELETE FROM tickets WHERE event_id = $1`,
		`DELETE FROM event_attendees WHERE event_id = $1`,
		`DELETE FROM event_roles WHERE event_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *eventRepository) GetCounts(ctx context.Context, id string) (*domain.EventCounts, error) {
	query := `
		SELECT e.name, e.location_type,
			(SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = e.id AND a.is_approved),
			(SELECT COUNT(*) FROM tickets t WHERE t.event_id = e.id AND t.is_checked_in AND t.revoked_at IS NULL)
		FROM events e
		WHERE e.id = $1
	`
	c := &domain.EventCounts{}
	var locationType string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.EventName, &locationType, &c.TotalAttendees, &c.CheckedInCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.LocationType = domain.LocationType(locationType)
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var locationType, visibility string
	var capacity sql.NullInt64
	if err := row.Scan(
		&e.ID, &e.Name, &e.OwnerID, &e.StartsAt, &e.EndsAt, &locationType, &capacity, &visibility, &e.RequiresApproval, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.LocationType = domain.LocationType(locationType)
	e.Visibility = domain.Visibility(visibility)
	if capacity.Valid {
		c := int(capacity.Int64)
		e.Capacity = &c
	}
	return e, nil
}
