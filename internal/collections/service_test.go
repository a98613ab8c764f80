package collections

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

type fakeStore struct {
	favorites []*models.Favorite
	history   []*models.HistoryEntry
	nextID    int
	now       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Now()}
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeStore) CreateFavorite(_ context.Context, fav *models.Favorite) (bool, error) {
	for _, existing := range f.favorites {
		if existing.UserID == fav.UserID && existing.ImageURL == fav.ImageURL {
			return false, nil
		}
	}
	f.nextID++
	fav.ID = fmt.Sprintf("fav-%d", f.nextID)
	fav.CreatedAt = f.tick()
	f.favorites = append(f.favorites, fav)
	return true, nil
}

func (f *fakeStore) GetFavorite(_ context.Context, id string) (*models.Favorite, error) {
	for _, fav := range f.favorites {
		if fav.ID == id {
			return fav, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) ListFavorites(_ context.Context, userID string) ([]*models.Favorite, error) {
	result := make([]*models.Favorite, 0)
	// Newest first
	for i := len(f.favorites) - 1; i >= 0; i-- {
		if f.favorites[i].UserID == userID {
			result = append(result, f.favorites[i])
		}
	}
	return result, nil
}

func (f *fakeStore) DeleteFavorite(_ context.Context, id string) error {
	for i, fav := range f.favorites {
		if fav.ID == id {
			f.favorites = append(f.favorites[:i], f.favorites[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeStore) CreateHistory(_ context.Context, entry *models.HistoryEntry) error {
	f.nextID++
	entry.ID = fmt.Sprintf("hist-%d", f.nextID)
	entry.CreatedAt = f.tick()
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeStore) ListHistory(_ context.Context, userID string) ([]*models.HistoryEntry, error) {
	result := make([]*models.HistoryEntry, 0)
	for i := len(f.history) - 1; i >= 0; i-- {
		if f.history[i].UserID == userID {
			result = append(result, f.history[i])
		}
	}
	return result, nil
}

func newTestCollections(store Store) *Service {
	logger, _ := logging.NewDefaultLogger()
	return NewService(store, logger)
}

func TestAddFavorite(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	fav, created, err := svc.AddFavorite(ctx, "user-1", "data:image/png;base64,abc", "a cat")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, fav.ID)
	assert.Equal(t, "user-1", fav.UserID)
}

func TestAddFavoriteValidation(t *testing.T) {
	svc := newTestCollections(newFakeStore())
	ctx := context.Background()

	_, _, err := svc.AddFavorite(ctx, "user-1", "", "a cat")
	assert.ErrorIs(t, err, ErrMissingFields)

	_, _, err = svc.AddFavorite(ctx, "user-1", "data:image/png;base64,abc", "")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestAddFavoriteIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	_, created, err := svc.AddFavorite(ctx, "user-1", "url-1", "a cat")
	require.NoError(t, err)
	assert.True(t, created)

	// Same pair again: success, no new record
	_, created, err = svc.AddFavorite(ctx, "user-1", "url-1", "a cat")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, store.favorites, 1)

	// Same URL for a different user is a separate favorite
	_, created, err = svc.AddFavorite(ctx, "user-2", "url-1", "a cat")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, store.favorites, 2)
}

func TestListFavoritesNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, _, err := svc.AddFavorite(ctx, "user-1", fmt.Sprintf("url-%d", i), "prompt")
		require.NoError(t, err)
	}

	favorites, err := svc.ListFavorites(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, favorites, 3)

	assert.Equal(t, "url-3", favorites[0].ImageURL)
	assert.Equal(t, "url-1", favorites[2].ImageURL)
}

func TestRemoveFavorite(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	fav, _, err := svc.AddFavorite(ctx, "user-1", "url-1", "a cat")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFavorite(ctx, "user-1", fav.ID))
	assert.Empty(t, store.favorites)
}

func TestRemoveFavoriteNotFound(t *testing.T) {
	svc := newTestCollections(newFakeStore())

	err := svc.RemoveFavorite(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrFavoriteNotFound)
}

func TestRemoveFavoriteForbidden(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	fav, _, err := svc.AddFavorite(ctx, "user-1", "url-1", "a cat")
	require.NoError(t, err)

	err = svc.RemoveFavorite(ctx, "user-2", fav.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The record is intact
	assert.Len(t, store.favorites, 1)
}

func TestAddHistoryNoDedup(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		entry, err := svc.AddHistory(ctx, "user-1", "url-1", "a cat")
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
	}

	assert.Len(t, store.history, 2)
}

func TestAddHistoryValidation(t *testing.T) {
	svc := newTestCollections(newFakeStore())

	_, err := svc.AddHistory(context.Background(), "user-1", "", "a cat")
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestListHistoryNewestFirst(t *testing.T) {
	store := newFakeStore()
	svc := newTestCollections(store)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.AddHistory(ctx, "user-1", fmt.Sprintf("url-%d", i), "prompt")
		require.NoError(t, err)
	}
	_, err := svc.AddHistory(ctx, "user-2", "other", "prompt")
	require.NoError(t, err)

	history, err := svc.ListHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, "url-3", history[0].ImageURL)
	assert.Equal(t, "url-1", history[2].ImageURL)
}
