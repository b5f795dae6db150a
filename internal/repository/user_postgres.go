package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/authcove/authcove/internal/domain"
)

const userColumns = `id, email, full_name, password_hash, environment_id, role_id,
	last_sign_in, email_confirmed, profile_picture, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		user.ID,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.EnvironmentID,
		user.RoleID,
		user.LastSignIn,
		user.EmailConfirmed,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrUserNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, environmentID, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE environment_id = $1 AND email = $2`,
		environmentID, email,
	)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrUserNotFound{ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = $1,
			full_name = $2,
			password_hash = $3,
			role_id = $4,
			last_sign_in = $5,
			email_confirmed = $6,
			profile_picture = $7,
			updated_at = $8
		WHERE id = $9
	`,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.RoleID,
		user.LastSignIn,
		user.EmailConfirmed,
		user.ProfilePicture,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrUserNotFound{ID: user.ID}
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrUserNotFound{ID: id}
	}

	return nil
}

func scanUser(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.User, error) {
	var (
		user                        domain.User
		fullName                    sql.NullString
		passwordHash, environmentID sql.NullString
		roleID, profilePicture      sql.NullString
		lastSignIn                  sql.NullTime
	)

	err := scanner.Scan(
		&user.ID,
		&user.Email,
		&fullName,
		&passwordHash,
		&environmentID,
		&roleID,
		&lastSignIn,
		&user.EmailConfirmed,
		&profilePicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.FullName = fullName.String
	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if environmentID.Valid {
		user.EnvironmentID = &environmentID.String
	}
	if roleID.Valid {
		user.RoleID = &roleID.String
	}
	if profilePicture.Valid {
		user.ProfilePicture = &profilePicture.String
	}
	if lastSignIn.Valid {
		user.LastSignIn = &lastSignIn.Time
	}

	return &user, nil
}
