package store

import (
	"context"
	"fmt"

	"stockroom.io/stockroom/internal/domain"
)

// GetUser fetches one user by id. Users are lookup data owned by the
// identity provider; this store never mutates them.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRow(ctx,
		`SELECT id, display_name, handle, active, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.DisplayName, &u.Handle, &u.Active, &u.Role)
	if err != nil {
		return nil, mapRowError(err, "get user "+id)
	}
	return &u, nil
}

// ListActiveUsers returns all active users ordered by display name,
// for assignment pickers.
func (s *Store) ListActiveUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, display_name, handle, active, role
		FROM users WHERE active ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Handle, &u.Active, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
