package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"slicecraft/internal/apperr"
	"slicecraft/models"
	"slicecraft/pkg/database"
	"slicecraft/pkg/logger"
)

type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	GetAll() ([]*models.User, error)
	EmailTakenByOther(email, userID string) (bool, error)
	UpdateProfile(id string, name, email, profilePhoto string) error
	UpdatePassword(id string, passwordHash string) error
	SetResetToken(id string, token string, expires time.Time) error
	ClearResetToken(id string) error
	UpdateRole(id string, role models.Role) error
	Delete(id string) error
}

type UserRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewUserRepository(logger *logger.Logger, db *database.DB) *UserRepository {
	return &UserRepository{
		logger: logger.WithComponent("user_repository"),
		db:     db,
	}
}

const userColumns = `id, name, email, password_hash, google_id, role, is_verified,
	verification_token, reset_password_token, reset_password_expires, profile_photo,
	created_at, updated_at`

func (r *UserRepository) scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var resetExpires sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.Role,
		&user.IsVerified,
		&user.VerificationToken,
		&user.ResetPasswordToken,
		&resetExpires,
		&user.ProfilePhoto,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if resetExpires.Valid {
		user.ResetPasswordExpires = &resetExpires.Time
	}
	return user, nil
}

// Create inserts a new account and fills in the generated ID.
func (r *UserRepository) Create(user *models.User) error {
	r.logger.Debug("Adding new user to database", "email", user.Email)

	if err := r.validateUser(user); err != nil {
		r.logger.Error("Failed to validate user", "error", err, "email", user.Email)
		return err
	}

	query := `
		INSERT INTO users (name, email, password_hash, google_id, role, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(query, user.Name, user.Email, user.PasswordHash,
		user.GoogleID, user.Role, user.IsVerified).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Attempted to add duplicate user", "email", user.Email)
			return apperr.Conflict("user with email %s already exists", user.Email)
		}
		r.logger.Error("Failed to add user", "error", err, "email", user.Email)
		return fmt.Errorf("failed to add user: %v", err)
	}

	r.logger.Info("Added new user", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	r.logger.Debug("Retrieving user from database", "user_id", id)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("User not found", "user_id", id)
			return nil, apperr.NotFound("user with id %s not found", id)
		}
		r.logger.Error("Failed to retrieve user", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	r.logger.Debug("Retrieving user by email from database")

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := r.scanUser(r.db.QueryRow(query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user with email %s not found", email)
		}
		r.logger.Error("Failed to retrieve user by email", "error", err)
		return nil, fmt.Errorf("failed to retrieve user by email: %v", err)
	}

	return user, nil
}

// GetByResetToken returns the account holding an unexpired reset token.
func (r *UserRepository) GetByResetToken(token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE reset_password_token = $1 AND reset_password_token <> ''
		AND reset_password_expires > now()`

	user, err := r.scanUser(r.db.QueryRow(query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Reset token not found or expired")
			return nil, apperr.NotFound("invalid or expired reset token")
		}
		r.logger.Error("Failed to retrieve user by reset token", "error", err)
		return nil, fmt.Errorf("failed to retrieve user by reset token: %v", err)
	}

	return user, nil
}

func (r *UserRepository) GetAll() ([]*models.User, error) {
	r.logger.Debug("Retrieving all users from database")

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query users", "error", err)
		return nil, fmt.Errorf("failed to query users: %v", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			r.logger.Error("Failed to scan user", "error", err)
			return nil, fmt.Errorf("failed to scan user: %v", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating user rows", "error", err)
		return nil, fmt.Errorf("error iterating user rows: %v", err)
	}

	r.logger.Info("Retrieved all users", "count", len(users))
	return users, nil
}

// EmailTakenByOther reports whether email belongs to an account other than userID.
func (r *UserRepository) EmailTakenByOther(email, userID string) (bool, error) {
	var exists int
	err := r.db.QueryRow(`SELECT 1 FROM users WHERE email = $1 AND id <> $2`, email, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to check email uniqueness", "error", err)
		return false, fmt.Errorf("failed to check email uniqueness: %v", err)
	}
	return true, nil
}

func (r *UserRepository) UpdateProfile(id string, name, email, profilePhoto string) error {
	r.logger.Debug("Updating user profile", "user_id", id)

	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($1, ''), name),
		    email = COALESCE(NULLIF($2, ''), email),
		    profile_photo = COALESCE(NULLIF($3, ''), profile_photo),
		    updated_at = now()
		WHERE id = $4
	`

	result, err := r.db.Exec(query, name, email, profilePhoto, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("email already in use")
		}
		r.logger.Error("Failed to update user profile", "error", err, "user_id", id)
		return fmt.Errorf("failed to update user profile: %v", err)
	}

	return r.requireRowsAffected(result, id, "update")
}

func (r *UserRepository) UpdatePassword(id string, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_password_token = '', reset_password_expires = NULL, updated_at = now()
		WHERE id = $2
	`

	result, err := r.db.Exec(query, passwordHash, id)
	if err != nil {
		r.logger.Error("Failed to update password", "error", err, "user_id", id)
		return fmt.Errorf("failed to update password: %v", err)
	}

	return r.requireRowsAffected(result, id, "update password for")
}

func (r *UserRepository) SetResetToken(id string, token string, expires time.Time) error {
	query := `
		UPDATE users
		SET reset_password_token = $1, reset_password_expires = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.Exec(query, token, expires, id)
	if err != nil {
		r.logger.Error("Failed to set reset token", "error", err, "user_id", id)
		return fmt.Errorf("failed to set reset token: %v", err)
	}

	return r.requireRowsAffected(result, id, "set reset token for")
}

func (r *UserRepository) ClearResetToken(id string) error {
	query := `
		UPDATE users
		SET reset_password_token = '', reset_password_expires = NULL, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.db.Exec(query, id); err != nil {
		r.logger.Error("Failed to clear reset token", "error", err, "user_id", id)
		return fmt.Errorf("failed to clear reset token: %v", err)
	}
	return nil
}

func (r *UserRepository) UpdateRole(id string, role models.Role) error {
	r.logger.Debug("Updating user role", "user_id", id, "role", role)

	result, err := r.db.Exec(`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, role, id)
	if err != nil {
		r.logger.Error("Failed to update user role", "error", err, "user_id", id)
		return fmt.Errorf("failed to update user role: %v", err)
	}

	return r.requireRowsAffected(result, id, "update role for")
}

func (r *UserRepository) Delete(id string) error {
	r.logger.Debug("Deleting user from database", "user_id", id)

	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", "error", err, "user_id", id)
		return fmt.Errorf("failed to delete user: %v", err)
	}

	if err := r.requireRowsAffected(result, id, "delete"); err != nil {
		return err
	}

	r.logger.Info("Deleted user", "user_id", id)
	return nil
}

func (r *UserRepository) requireRowsAffected(result sql.Result, id, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "user_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to "+action+" non-existent user", "user_id", id)
		return apperr.NotFound("user with id %s not found", id)
	}
	return nil
}

func (r *UserRepository) validateUser(user *models.User) error {
	if user == nil {
		return apperr.Validation("user cannot be nil")
	}
	if user.Name == "" {
		return apperr.Validation("user name cannot be empty")
	}
	if user.Email == "" {
		return apperr.Validation("user email cannot be empty")
	}
	if !models.ValidRole(user.Role) {
		return apperr.Validation("invalid role %s", user.Role)
	}
	return nil
}

// isUniqueViolation matches the driver's unique-constraint error text.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate key value") ||
		strings.Contains(err.Error(), "violates unique constraint"))
}
