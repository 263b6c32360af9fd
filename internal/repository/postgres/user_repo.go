package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventcheckin/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, last_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	var name, lastName sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &name, &lastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Name = name.String
	u.LastName = lastName.String
	return u, nil
}
