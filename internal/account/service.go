package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/middleware"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/pkg/models"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	// ErrEmailExists means registration hit an already-used email.
	ErrEmailExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// a caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound means the authenticated id has no record.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError is a client-input failure; its message is safe to return.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Store is the persistence surface the account service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	RepairCredits(ctx context.Context, id string, credits int) error
}

// Service handles registration, login and profile reads
type Service struct {
	store    Store
	logger   *logging.Logger
	tokenTTL time.Duration
}

// NewService creates a new account service
func NewService(store Store, logger *logging.Logger, tokenTTL time.Duration) *Service {
	return &Service{store: store, logger: logger, tokenTTL: tokenTTL}
}

// Session is a freshly issued token together with the user it belongs to
type Session struct {
	Token string
	User  models.UserView
}

// Register creates an account with the default credit balance and issues a
// session token.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if name == "" || email == "" || password == "" {
		return nil, &ValidationError{Message: "Missing details. Name, email and password are required"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Message: "Invalid email format"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Message: "Password must be at least 6 characters long"}
	}

	email = strings.ToLower(email)

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	credits := models.DefaultCreditBalance
	user := &models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		CreditBalance: &credits,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost the race against a concurrent registration
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithUserID(user.ID).Infof("New user created with credits: %d", user.Credits())

	token, err := middleware.GenerateToken(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{Token: token, User: user.View()}, nil
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email and password are required"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Message: "Invalid email format"}
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Session{Token: token, User: user.View()}, nil
}

// Resolve loads a user by id, repairing an unset credit balance to the
// default before returning. Every authenticated read goes through here so
// the legacy NULL-balance quirk is handled in one place.
func (s *Service) Resolve(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.CreditBalance == nil {
		if err := s.store.RepairCredits(ctx, user.ID, models.DefaultCreditBalance); err != nil {
			return nil, fmt.Errorf("failed to repair credits: %w", err)
		}
		credits := models.DefaultCreditBalance
		user.CreditBalance = &credits
		s.logger.WithUserID(user.ID).Infof("Fixed credits for user, set to %d", credits)
	}

	return user, nil
}

// Profile returns the user's public view
func (s *Service) Profile(ctx context.Context, userID string) (models.UserView, error) {
	user, err := s.Resolve(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	return user.View(), nil
}

// Credits returns the user's current balance
func (s *Service) Credits(ctx context.Context, userID string) (int, error) {
	user, err := s.Resolve(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Credits(), nil
}
