package generator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

type fakeStore struct {
	users      map[string]*models.User
	deductions int
	repairs    int
}

func newFakeStore(users ...*models.User) *fakeStore {
	f := &fakeStore{users: make(map[string]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (f *fakeStore) RepairCredits(_ context.Context, id string, credits int) error {
	if user, ok := f.users[id]; ok && user.CreditBalance == nil {
		user.CreditBalance = &credits
		f.repairs++
	}
	return nil
}

func (f *fakeStore) DeductCredit(_ context.Context, id string) (int, error) {
	user, ok := f.users[id]
	if !ok {
		return 0, database.ErrNotFound
	}
	balance := user.Credits() - 1
	user.CreditBalance = &balance
	f.deductions++
	return balance, nil
}

type fakeProvider struct {
	usable bool
	data   []byte
	err    error
	calls  int
}

func (p *fakeProvider) Usable() bool {
	return p.usable
}

func (p *fakeProvider) GenerateImage(_ context.Context, _ string) ([]byte, error) {
	p.calls++
	return p.data, p.err
}

func testUser(credits int) *models.User {
	c := credits
	return &models.User{
		ID:            "user-1",
		Name:          "A",
		Email:         "a@b.com",
		PasswordHash:  "hash",
		CreditBalance: &c,
	}
}

func newTestGenService(store Store, provider Provider) *Service {
	logger, _ := logging.NewDefaultLogger()
	return NewService(store, provider, logger)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	store := newFakeStore(testUser(20))
	svc := newTestGenService(store, &fakeProvider{})

	_, err := svc.Generate(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, store.deductions)
}

func TestGenerateUnknownUser(t *testing.T) {
	svc := newTestGenService(newFakeStore(), &fakeProvider{})

	_, err := svc.Generate(context.Background(), "missing", "a cat")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGenerateInsufficientCredits(t *testing.T) {
	store := newFakeStore(testUser(0))
	provider := &fakeProvider{usable: true, data: bytes.Repeat([]byte{1}, 512)}
	svc := newTestGenService(store, provider)

	_, err := svc.Generate(context.Background(), "user-1", "a cat")

	var insufficientErr *InsufficientCreditsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 0, insufficientErr.Credits)

	// No deduction and no provider contact on rejection
	assert.Zero(t, store.deductions)
	assert.Zero(t, provider.calls)
	assert.Equal(t, 0, store.users["user-1"].Credits())
}

func TestGenerateProviderPath(t *testing.T) {
	store := newFakeStore(testUser(20))
	provider := &fakeProvider{usable: true, data: bytes.Repeat([]byte{0x89}, 512)}
	svc := newTestGenService(store, provider)

	result, err := svc.Generate(context.Background(), "user-1", "a cat")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.ImageURL, "data:image/png;base64,"))
	assert.Equal(t, "Image generated successfully", result.Message)
	assert.False(t, result.Fallback)
	assert.Equal(t, 19, result.User.Credits)
	assert.Equal(t, 1, store.deductions)
}

func TestGenerateFallbackOnProviderError(t *testing.T) {
	store := newFakeStore(testUser(20))
	provider := &fakeProvider{usable: true, err: errors.New("provider down")}
	svc := newTestGenService(store, provider)

	result, err := svc.Generate(context.Background(), "user-1", "a cat")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.ImageURL, "data:image/svg+xml;base64,"))
	assert.Equal(t, "Image generated (fallback mode)", result.Message)
	assert.True(t, result.Fallback)

	// The credit stays spent on the fallback path
	assert.Equal(t, 19, result.User.Credits)
	assert.Equal(t, 1, store.deductions)
}

func TestGenerateFallbackWhenKeyUnusable(t *testing.T) {
	store := newFakeStore(testUser(20))
	provider := &fakeProvider{usable: false, data: bytes.Repeat([]byte{1}, 512)}
	svc := newTestGenService(store, provider)

	result, err := svc.Generate(context.Background(), "user-1", "a cat")
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Zero(t, provider.calls, "unusable key must skip the provider entirely")
	assert.Equal(t, 19, result.User.Credits)
}

func TestGenerateExactlyOneDeduction(t *testing.T) {
	// Same decrement whether the provider or the fallback serves the image
	for _, providerUp := range []bool{true, false} {
		store := newFakeStore(testUser(5))
		provider := &fakeProvider{usable: providerUp, data: bytes.Repeat([]byte{1}, 512)}
		svc := newTestGenService(store, provider)

		result, err := svc.Generate(context.Background(), "user-1", "a cat")
		require.NoError(t, err)

		assert.Equal(t, 4, result.User.Credits)
		assert.Equal(t, 1, store.deductions)
	}
}

func TestGeneratePayloadTooLarge(t *testing.T) {
	store := newFakeStore(testUser(20))
	// Payload large enough that len(dataURL)*2 exceeds 40MB
	provider := &fakeProvider{usable: true, data: bytes.Repeat([]byte{1}, 20*1024*1024)}
	svc := newTestGenService(store, provider)

	_, err := svc.Generate(context.Background(), "user-1", "a cat")

	var tooLarge *PayloadTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Greater(t, tooLarge.SizeMB, maxDataURLMegabytes)

	// Credit remains spent even though nothing was served
	assert.Equal(t, 1, store.deductions)
	assert.Equal(t, 19, store.users["user-1"].Credits())
}

func TestGenerateRepairsNullCredits(t *testing.T) {
	legacy := &models.User{ID: "user-1", Name: "Old", Email: "old@b.com", PasswordHash: "x"}
	store := newFakeStore(legacy)
	svc := newTestGenService(store, &fakeProvider{})

	result, err := svc.Generate(context.Background(), "user-1", "a cat")
	require.NoError(t, err)

	assert.Equal(t, 1, store.repairs)
	assert.Equal(t, models.DefaultCreditBalance-1, result.User.Credits)
}

func TestGenerateExampleFlow(t *testing.T) {
	// Register-equivalent user with 20 credits and no usable provider key:
	// fallback path, credits 19, SVG data URL.
	store := newFakeStore(testUser(20))
	svc := newTestGenService(store, &fakeProvider{usable: false})

	result, err := svc.Generate(context.Background(), "user-1", "a sunset")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.ImageURL, "data:image/svg+xml;base64,"))
	assert.Equal(t, 19, result.User.Credits)
}
