package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gnomeshade/internal/auth"
	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/storage"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// UserService registers and authenticates users.
type UserService struct {
	store    *storage.Store
	notifier *Notifier
	logger   *log.Logger
}

// NewUserService accepts a nil notifier.
func NewUserService(store *storage.Store, notifier *Notifier, logger *log.Logger) *UserService {
	if logger == nil {
		logger = log.Discard()
	}
	return &UserService{store: store, notifier: notifier, logger: logger.WithComponent(log.ComponentAuth)}
}

// Register creates a user with a bcrypt password hash together with the
// counterparty that represents them.
func (s *UserService) Register(ctx context.Context, username, password, fullName string) (*core.User, error) {
	if n := len(password); n < minPasswordLength || n > maxPasswordLength {
		return nil, &core.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("must be between %d and %d characters", minPasswordLength, maxPasswordLength),
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &core.User{
		Username:     strings.TrimSpace(username),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
	}
	if err := storage.NewUserUnitOfWork(s.store).CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.notifier.Created(ctx, core.EntityCounterparties, user.CounterpartyID, user.ID)
	s.logger.InfoContext(ctx, "User registered", log.FieldUserID, user.ID.String(), "username", user.Username)
	return user, nil
}

// Authenticate returns the user whose password matches. Unknown users and
// wrong passwords both yield core.ErrBadLogin.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*core.User, error) {
	user, err := s.store.Users.FindByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, core.ErrNotFound):
		s.logger.WarnContext(ctx, "Login for unknown user", "username", username)
		return nil, core.ErrBadLogin
	case err != nil:
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.WarnContext(ctx, "Login with wrong password", log.FieldUserID, user.ID.String())
		return nil, core.ErrBadLogin
	}
	return user, nil
}

// EnsureUser registers username unless it already exists and reports
// whether it was created. An existing user's password is left unchanged.
func (s *UserService) EnsureUser(ctx context.Context, username, password, fullName string) (bool, error) {
	_, err := s.store.Users.FindByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, err
	}
	if _, err := s.Register(ctx, username, password, fullName); err != nil {
		return false, err
	}
	return true, nil
}
