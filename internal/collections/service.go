package collections

import (
	"context"
	"errors"
	"fmt"

	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

var (
	// ErrMissingFields means imageUrl or prompt was absent
	ErrMissingFields = errors.New("image URL and prompt are required")
	// ErrFavoriteNotFound means the favorite id has no record
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrForbidden means the favorite belongs to a different user
	ErrForbidden = errors.New("favorite belongs to another user")
)

// Store is the persistence surface the collection service needs
type Store interface {
	CreateFavorite(ctx context.Context, fav *models.Favorite) (bool, error)
	GetFavorite(ctx context.Context, id string) (*models.Favorite, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error)
	DeleteFavorite(ctx context.Context, id string) error
	CreateHistory(ctx context.Context, entry *models.HistoryEntry) error
	ListHistory(ctx context.Context, userID string) ([]*models.HistoryEntry, error)
}

// Service manages per-user favorites and history
type Service struct {
	store  Store
	logger *logging.Logger
}

// NewService creates a new collection service
func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// AddFavorite saves an image for the user. Saving an already-saved image is
// a success no-op; created reports whether a new record was written.
func (s *Service) AddFavorite(ctx context.Context, userID, imageURL, prompt string) (fav *models.Favorite, created bool, err error) {
	if imageURL == "" || prompt == "" {
		return nil, false, ErrMissingFields
	}

	fav = &models.Favorite{
		UserID:   userID,
		ImageURL: imageURL,
		Prompt:   prompt,
	}

	created, err = s.store.CreateFavorite(ctx, fav)
	if err != nil {
		return nil, false, fmt.Errorf("failed to add favorite: %w", err)
	}

	return fav, created, nil
}

// ListFavorites returns the user's favorites, newest first
func (s *Service) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	return s.store.ListFavorites(ctx, userID)
}

// RemoveFavorite deletes a favorite owned by the user
func (s *Service) RemoveFavorite(ctx context.Context, userID, favoriteID string) error {
	fav, err := s.store.GetFavorite(ctx, favoriteID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrFavoriteNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get favorite: %w", err)
	}

	if fav.UserID != userID {
		return ErrForbidden
	}

	if err := s.store.DeleteFavorite(ctx, favoriteID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	return nil
}

// AddHistory appends a generation to the user's history. No dedup.
func (s *Service) AddHistory(ctx context.Context, userID, imageURL, prompt string) (*models.HistoryEntry, error) {
	if imageURL == "" || prompt == "" {
		return nil, ErrMissingFields
	}

	entry := &models.HistoryEntry{
		UserID:   userID,
		ImageURL: imageURL,
		Prompt:   prompt,
	}

	if err := s.store.CreateHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add history entry: %w", err)
	}

	return entry, nil
}

// ListHistory returns the user's history, newest first
func (s *Service) ListHistory(ctx context.Context, userID string) ([]*models.HistoryEntry, error) {
	return s.store.ListHistory(ctx, userID)
}
