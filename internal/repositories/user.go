package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeout}
}

// Create inserts a new user into the database with generated ID and sequence
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return wrapStoreErr("failed to generate sequence", err)
	}

	id := shared.GenerateID()
	user.SetID(id)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, sequence, email, display_name, credential_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query, id, sequence, user.Email(), user.DisplayName(), user.CredentialHash(), user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return wrapStoreErr("failed to insert user", err)
	}

	return nil
}

// Get retrieves a user by ID, excluding soft-deleted users
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, credential_hash, created_at, updated_at, deleted_at
		FROM users
		WHERE id = ? AND deleted_at IS NULL
	`

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email, excluding soft-deleted users
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, credential_hash, created_at, updated_at, deleted_at
		FROM users
		WHERE email = ? AND deleted_at IS NULL
	`

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET display_name = ?, credential_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, user.DisplayName(), user.CredentialHash(), now, user.ID())
	if err != nil {
		return wrapStoreErr("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, user.ID())
	}

	return nil
}

// Delete soft-deletes a user by ID and soft-deletes every playlist they own.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE users
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, id)
	if err != nil {
		return wrapStoreErr("failed to delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}

	// Cascade to owned playlists
	if _, err := tx.ExecContext(ctx, `
		UPDATE playlists
		SET deleted_at = ?
		WHERE owner_id = ? AND deleted_at IS NULL
	`, now, id); err != nil {
		return wrapStoreErr("failed to cascade playlist deletion", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("failed to commit user deletion", err)
	}

	return nil
}

// List retrieves all users matching the given criteria, excluding soft-deleted users
func (r *UserRepository) List(ctx context.Context, criteria map[string]any) ([]*models.User, error) {
	query := `
		SELECT id, sequence, email, display_name, credential_hash, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, email)
	}

	query += " ORDER BY sequence ASC"

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("failed to query users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, wrapStoreErr("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("row iteration error", err)
	}

	return users, nil
}

func (r *UserRepository) scanUser(s interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		userID         string
		sequence       int
		email          string
		displayName    string
		credentialHash string
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := s.Scan(&userID, &sequence, &email, &displayName, &credentialHash, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(sequence, email, displayName, credentialHash)
	user.SetID(userID)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		user.SetDeletedAt(&deletedAt.Time)
	}

	return user, nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user, err := r.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("failed to scan user", err)
	}
	return user, nil
}
