package postgres

import (
	"context"
	"database/sql"

	"eventcheckin/internal/domain"
)

type checkInRepository struct {
	DB *sql.DB
}

func NewCheckInRepository(db *sql.DB) domain.CheckInRepository {
	return &checkInRepository{
		DB: db,
	}
}

func (r *checkInRepository) ListLiveByEventID(ctx context.Context, eventID string) ([]*domain.CheckInEntry, error) {
	query := `
		SELECT c.id, u.name, u.last_name, u.email, c.checked_in_at
		FROM check_ins c
		JOIN tickets t ON t.id = c.ticket_id
		JOIN event_attendees a ON a.id = t.attendee_id
		JOIN users u ON u.id = a.user_id
		WHERE c.event_id = $1 AND c.voided_at IS NULL
		ORDER BY c.checked_in_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CheckInEntry
	for rows.Next() {
		e := &domain.CheckInEntry{}
		var name, lastName sql.NullString
		if err := rows.Scan(&e.ID, &name, &lastName, &e.User.Email, &e.CheckInDate); err != nil {
			return nil, err
		}
		e.User.FullName = domain.FullName(name.String, lastName.String, e.User.Email)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*domain.CheckInEntry{}
	}
	return entries, nil
}

func (r *checkInRepository) ListByTicketID(ctx context.Context, ticketID string) ([]*domain.CheckInRecord, error) {
	query := `
		SELECT id, ticket_id, event_id, checked_in_at, checked_in_by, voided_at, voided_by
		FROM check_ins
		WHERE ticket_id = $1
		ORDER BY checked_in_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.CheckInRecord
	for rows.Next() {
		rec := &domain.CheckInRecord{}
		var voidedAt sql.NullTime
		var voidedBy sql.NullString
		if err := rows.Scan(&rec.ID, &rec.TicketID, &rec.EventID, &rec.CheckedInAt, &rec.CheckedInBy, &voidedAt, &voidedBy); err != nil {
			return nil, err
		}
		rec.VoidedAt = nullTime(voidedAt)
		if voidedBy.Valid {
			rec.VoidedBy = &voidedBy.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if records == nil {
		records = []*domain.CheckInRecord{}
	}
	return records, nil
}
