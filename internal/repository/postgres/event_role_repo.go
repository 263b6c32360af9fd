package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventcheckin/internal/domain"
)

type eventRoleRepository struct {
	DB *sql.DB
}

func NewEventRoleRepository(db *sql.DB) domain.EventRoleRepository {
	return &eventRoleRepository{
		DB: db,
	}
}

func (r *eventRoleRepository) Assign(ctx context.Context, eventID, userID string, role domain.EventRole) error {
	query := `
		INSERT INTO event_roles (event_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, userID, string(role))
	return err
}

func (r *eventRoleRepository) GetRole(ctx context.Context, eventID, userID string) (domain.EventRole, error) {
	query := `SELECT role FROM event_roles WHERE event_id = $1 AND user_id = $2`
	var role string
	if err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return domain.EventRole(role), nil
}

func (r *eventRoleRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EventRoleAssignment, error) {
	query := `
		SELECT er.event_id, er.user_id, er.role, u.name, u.last_name, u.email
		FROM event_roles er
		JOIN users u ON u.id = er.user_id
		WHERE er.event_id = $1
		ORDER BY er.user_id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assignments := make([]*domain.EventRoleAssignment, 0)
	for rows.Next() {
		a := &domain.EventRoleAssignment{}
		var role string
		var name, lastName sql.NullString
		if err := rows.Scan(&a.EventID, &a.UserID, &role, &name, &lastName, &a.Email); err != nil {
			return nil, err
		}
		a.Role = domain.EventRole(role)
		a.Name = name.String
		a.LastName = lastName.String
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *eventRoleRepository) Remove(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_roles WHERE event_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
