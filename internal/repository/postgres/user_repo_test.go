package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"eventcheckin/internal/domain"
)

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		id       string
		mock     func(mock sqlmock.Sqlmock)
		wantUser *domain.User
		errIs    error
	}{
		{
			name: "found",
			id:   "user-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, email, name, last_name, created_at, updated_at FROM users WHERE id = \$1`).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "last_name", "created_at", "updated_at"}).
						AddRow("user-1", "alice@example.com", "Alice", nil, ts, ts))
			},
			wantUser: &domain.User{ID: "user-1", Email: "alice@example.com", Name: "Alice", CreatedAt: ts, UpdatedAt: ts},
		},
		{
			name: "not found",
			id:   "nope",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("nope").
					WillReturnError(sql.ErrNoRows)
			},
			errIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			got, err := NewUserRepository(db).GetByID(ctx, tt.id)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantUser, got)
			require.Equal(t, "Alice", got.FullName())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
