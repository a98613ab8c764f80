package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

// Favorites

// CreateFavorite inserts a favorite. It reports false when the (user,
// image URL) pair already exists; the unique index makes the dedup check and
// the insert a single statement, so there is no race window.
func (r *Repository) CreateFavorite(ctx context.Context, fav *models.Favorite) (bool, error) {
	if fav.ID == "" {
		fav.ID = uuid.New().String()
	}

	query := `
		INSERT INTO favorites (id, user_id, image_url, prompt)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, image_url) DO NOTHING
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		fav.ID, fav.UserID, fav.ImageURL, fav.Prompt,
	).Scan(&fav.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: the pair is already saved
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create favorite: %w", err)
	}

	return true, nil
}

// GetFavorite retrieves a favorite by ID
func (r *Repository) GetFavorite(ctx context.Context, id string) (*models.Favorite, error) {
	var fav models.Favorite

	query := `
		SELECT id, user_id, image_url, prompt, created_at
		FROM favorites
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&fav.ID, &fav.UserID, &fav.ImageURL, &fav.Prompt, &fav.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}

	return &fav, nil
}

// ListFavorites retrieves all favorites for a user, newest first
func (r *Repository) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	query := `
		SELECT id, user_id, image_url, prompt, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*models.Favorite, 0)
	for rows.Next() {
		var fav models.Favorite
		err := rows.Scan(&fav.ID, &fav.UserID, &fav.ImageURL, &fav.Prompt, &fav.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, &fav)
	}

	return favorites, rows.Err()
}

// DeleteFavorite deletes a favorite by ID
func (r *Repository) DeleteFavorite(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// History

// CreateHistory appends a history entry. No dedup; every call inserts.
func (r *Repository) CreateHistory(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO history (id, user_id, image_url, prompt)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.ImageURL, entry.Prompt,
	).Scan(&entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

// ListHistory retrieves all history entries for a user, newest first
func (r *Repository) ListHistory(ctx context.Context, userID string) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, user_id, image_url, prompt, created_at
		FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	history := make([]*models.HistoryEntry, 0)
	for rows.Next() {
		var entry models.HistoryEntry
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.ImageURL, &entry.Prompt, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, &entry)
	}

	return history, rows.Err()
}
