package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/famshare/famshare-backend/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{db: db}
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, name, steam_id, licenses_uploaded
		FROM users
		WHERE id = $1
	`

	var user domain.User
	var steamID sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&steamID,
		&user.LicensesUploaded,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	user.SteamID = steamID.String

	return &user, nil
}

// List retrieves all users
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, steam_id, licenses_uploaded
		FROM users
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		var steamID sql.NullString
		if err := rows.Scan(&user.ID, &user.Name, &steamID, &user.LicensesUploaded); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.SteamID = steamID.String
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// SetLicensesUploaded flips the user's ledger-processed flag
func (r *userRepository) SetLicensesUploaded(ctx context.Context, id uuid.UUID, uploaded bool) error {
	query := `UPDATE users SET licenses_uploaded = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, uploaded, id)
	if err != nil {
		return fmt.Errorf("failed to set licenses_uploaded: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	return nil
}
