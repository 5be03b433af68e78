// Package services – UserService
//
// This file implements the UserService, which owns the account lifecycle:
// registration, credential checks for login, profile reads, avatar updates,
// and password changes. Passwords are stored as bcrypt hashes and never leave
// the service. Service-level errors (e.g. ErrEmailTaken, ErrInvalidCredentials,
// ErrUserNotFound) are returned for predictable cases so handlers can map them
// to HTTP results consistently.
package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/foodgram/go-foodgram-backend/internal/auth"
	"github.com/foodgram/go-foodgram-backend/internal/domain"
)

const (
	maxEmailLen    = 254
	maxUsernameLen = 150
	maxNameLen     = 150
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

// usernameRE is the accepted handle alphabet: letters, digits and .@+-_
var usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)

// emailRE is a pragmatic shape check; the address is never used for delivery
// validation here, only as a login identity.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserRepo defines the repository contract required by UserService.
type UserRepo interface {
	// CreateUser inserts a new account row with a pre-hashed password.
	CreateUser(ctx context.Context, db *gorm.DB, email, username, firstName, lastName, passwordHash string) (*domain.User, error)

	// GetUser fetches an account by id.
	GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error)

	// GetUserByEmail fetches an account by its login email.
	GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)

	// CountUsers returns the total number of accounts for pagination.
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)

	// ListUsersPage returns a page of accounts in registration order.
	ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.User, error)

	// UpdateAvatar sets or clears the avatar URL.
	UpdateAvatar(ctx context.Context, db *gorm.DB, id, avatar string) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, db *gorm.DB, id, hash string) error
}

// UserService provides account-level operations: registration, credential
// verification, profile reads and listing, avatar and password updates.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the user repository used by this service.
	Repo UserRepo
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, r UserRepo) *UserService {
	return &UserService{DB: db, Repo: r}
}

// Register creates a new account after validating every field and hashing the
// password. Duplicate email or username is reported with a stable sentinel.
func (s *UserService) Register(ctx context.Context, email, username, firstName, lastName, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if err := validateRegistration(email, username, firstName, lastName, password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.CreateUser(ctx, s.DB, email, username, firstName, lastName, hash)
	if err != nil {
		if isDuplicate(err) {
			// Disambiguate which identity collided so the client can fix it.
			if _, lookupErr := s.Repo.GetUserByEmail(ctx, s.DB, email); lookupErr == nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate verifies an email/password pair and returns the account.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.Repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns an account by id, or ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListPage returns a page of accounts in registration order plus the total.
func (s *UserService) ListPage(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.User{}, 0, nil
	}

	items, err := s.Repo.ListUsersPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// SetAvatar stores the avatar URL for the user. The URL is treated as opaque;
// an empty value is rejected (use RemoveAvatar to clear).
func (s *UserService) SetAvatar(ctx context.Context, userID, avatar string) error {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return invalid("avatar", "must not be empty")
	}
	if err := s.Repo.UpdateAvatar(ctx, s.DB, userID, avatar); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// RemoveAvatar clears the user's avatar.
func (s *UserService) RemoveAvatar(ctx context.Context, userID string) error {
	if err := s.Repo.UpdateAvatar(ctx, s.DB, userID, ""); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ChangePassword verifies the current password and stores a hash of the new
// one. ErrWrongPassword is returned when the current password does not match.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}
	u, err := s.Repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePasswordHash(ctx, s.DB, userID, hash)
}

func validateRegistration(email, username, firstName, lastName, password string) error {
	switch {
	case email == "":
		return invalid("email", "must not be empty")
	case utf8.RuneCountInString(email) > maxEmailLen:
		return invalid("email", "too long")
	case !emailRE.MatchString(email):
		return invalid("email", "not a valid email address")
	}
	switch {
	case username == "":
		return invalid("username", "must not be empty")
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return invalid("username", "too long")
	case !usernameRE.MatchString(username):
		return invalid("username", "may contain only letters, digits and .@+-_")
	}
	if firstName == "" || utf8.RuneCountInString(firstName) > maxNameLen {
		return invalid("first_name", "required, at most 150 characters")
	}
	if lastName == "" || utf8.RuneCountInString(lastName) > maxNameLen {
		return invalid("last_name", "required, at most 150 characters")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		return invalid("password", "must be at least 8 characters")
	case utf8.RuneCountInString(password) > maxPasswordLen:
		return invalid("password", "too long")
	}
	return nil
}
