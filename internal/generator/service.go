package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/metrics"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/tracing"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

// maxDataURLMegabytes caps the estimated encoded response size. Responses
// above it are rejected with the credit already spent.
const maxDataURLMegabytes = 40.0

// ErrEmptyPrompt means the request carried no prompt
var ErrEmptyPrompt = errors.New("prompt is required")

// ErrUserNotFound means the authenticated id has no record
var ErrUserNotFound = errors.New("user not found")

// InsufficientCreditsError rejects a request before any deduction or
// provider contact. Credits carries the balance so clients can prompt for a
// top-up.
type InsufficientCreditsError struct {
	Credits int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits (%d)", e.Credits)
}

// PayloadTooLargeError means the provider image encoded beyond the response
// cap. The credit stays spent.
type PayloadTooLargeError struct {
	SizeMB float64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("generated image too large (%.2fMB)", e.SizeMB)
}

// Store is the persistence surface the generation workflow needs
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	RepairCredits(ctx context.Context, id string, credits int) error
	DeductCredit(ctx context.Context, id string) (int, error)
}

// Provider produces image bytes for a prompt
type Provider interface {
	Usable() bool
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Result is a served generation
type Result struct {
	ImageURL string
	Message  string
	User     models.UserView
	Fallback bool
}

// Service runs the credit-metered generation workflow
type Service struct {
	store    Store
	provider Provider
	logger   *logging.Logger
}

// NewService creates a new generation service
func NewService(store Store, provider Provider, logger *logging.Logger) *Service {
	return &Service{store: store, provider: provider, logger: logger}
}

// Generate validates the request, deducts one credit and serves an image.
// The credit is spent before the provider is contacted and stays spent no
// matter which branch serves the response; only validation, a missing user
// and an empty balance leave the balance untouched.
func (s *Service) Generate(ctx context.Context, userID, prompt string) (*Result, error) {
	span, ctx := tracing.StartSpan(ctx, "generate_image")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "user_id", userID)

	start := time.Now()

	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Legacy rows may carry a NULL balance; repair before the admission check
	if user.CreditBalance == nil {
		if err := s.store.RepairCredits(ctx, user.ID, models.DefaultCreditBalance); err != nil {
			return nil, fmt.Errorf("failed to repair credits: %w", err)
		}
		credits := models.DefaultCreditBalance
		user.CreditBalance = &credits
		s.logger.WithUserID(user.ID).Infof("Fixed credits for user, set to %d", credits)
	}

	if user.Credits() <= 0 {
		metrics.RecordRejection("no_credits")
		tracing.SetTag(span, "rejected", "no_credits")
		return nil, &InsufficientCreditsError{Credits: user.Credits()}
	}

	// Deduct first. The credit is accepted as spent regardless of whether
	// generation succeeds or falls back.
	balance, err := s.store.DeductCredit(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct credit: %w", err)
	}
	user.CreditBalance = &balance

	if s.provider != nil && s.provider.Usable() {
		data, err := s.provider.GenerateImage(ctx, prompt)
		if err == nil {
			imageURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

			// Approximate transfer size in MB
			estimatedMB := float64(len(imageURL)) * 2 / 1024 / 1024
			if estimatedMB > maxDataURLMegabytes {
				metrics.RecordRejection("too_large")
				tracing.LogError(span, fmt.Errorf("image too large: %.2fMB", estimatedMB))
				return nil, &PayloadTooLargeError{SizeMB: estimatedMB}
			}

			metrics.RecordGeneration("provider")
			s.logger.LogGenerationEvent(user.ID, "provider", balance, time.Since(start))

			return &Result{
				ImageURL: imageURL,
				Message:  "Image generated successfully",
				User:     user.View(),
			}, nil
		}

		// Provider failure is recovered locally, never surfaced
		s.logger.WithUserID(user.ID).ErrorWithErr("Provider generation failed, using fallback", err)
		tracing.LogError(span, err)
	} else {
		metrics.RecordProviderCall("skipped", 0, 0)
	}

	metrics.RecordGeneration("fallback")
	s.logger.LogGenerationEvent(user.ID, "fallback", balance, time.Since(start))

	return &Result{
		ImageURL: FallbackImage(prompt),
		Message:  "Image generated (fallback mode)",
		User:     user.View(),
		Fallback: true,
	}, nil
}
