package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Users

// CreateUser creates a new user record
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, name, email, password_hash, credit_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreditBalance,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "email", email)
}

func (r *Repository) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User

	query := fmt.Sprintf(`
		SELECT id, name, email, password_hash, credit_balance, created_at, updated_at
		FROM users
		WHERE %s = $1
	`, column)

	err := r.db.Pool.QueryRow(ctx, query, value).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.CreditBalance, &user.CreatedAt, &user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// RepairCredits sets the balance of a user whose credit_balance is NULL.
// Rows that already carry a balance are left untouched.
func (r *Repository) RepairCredits(ctx context.Context, id string, credits int) error {
	query := `
		UPDATE users
		SET credit_balance = $2, updated_at = now()
		WHERE id = $1 AND credit_balance IS NULL
	`

	if _, err := r.db.Pool.Exec(ctx, query, id, credits); err != nil {
		return fmt.Errorf("failed to repair credits: %w", err)
	}

	return nil
}

// DeductCredit atomically decrements the user's balance by one and returns
// the new balance. A single UPDATE avoids lost updates under concurrent
// requests from the same user.
func (r *Repository) DeductCredit(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE users
		SET credit_balance = credit_balance - 1, updated_at = now()
		WHERE id = $1
		RETURNING credit_balance
	`

	var balance int
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&balance)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct credit: %w", err)
	}

	return balance, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
