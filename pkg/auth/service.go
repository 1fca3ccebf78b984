package auth

import (
	"context"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/db/models"
	"github.com/vipul69-eng/leadbook/pkg/errs"
	"github.com/vipul69-eng/leadbook/pkg/ratelimit"
)

// UserStore is the persistence boundary for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// ValidationError reports malformed signup input, keyed by field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Fields)
}

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,40}$`)

// Service implements signup and login on top of a UserStore. Login attempts
// are throttled per username.
type Service struct {
	users   UserStore
	tokens  *TokenManager
	limiter ratelimit.Limiter
}

func NewService(users UserStore, tokens *TokenManager, limiter ratelimit.Limiter) *Service {
	return &Service{users: users, tokens: tokens, limiter: limiter}
}

// Credentials is what Signup and Login consume.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is what a successful Signup or Login returns.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func validateCredentials(c Credentials) error {
	fields := map[string]string{}
	if !usernameRegexp.MatchString(c.Username) {
		fields["username"] = "must be 3 to 40 characters: letters, digits, dot, underscore or dash"
	}
	if n := utf8.RuneCountInString(c.Password); n < 6 || n > 128 {
		fields["password"] = "must be between 6 and 128 characters"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Signup registers a new account with the USER role and logs it straight in.
// Returns errs.ErrAlreadyExists when the username is taken.
func (s *Service) Signup(ctx context.Context, creds Credentials) (*Token, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	hash, salt, err := HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     creds.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         models.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.WithField("username", user.Username).Info("registered new user")

	return s.issue(user)
}

// Login verifies the credentials and returns a fresh token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	if !s.limiter.Allow("login:" + creds.Username) {
		return nil, errs.ErrRateLimited
	}

	user, err := s.users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		if err == errs.ErrNotFound {
			return nil, errs.ErrUnauthorized
		}
		return nil, err
	}
	if !VerifyPassword(creds.Password, user.PasswordHash, user.PasswordSalt) {
		return nil, errs.ErrUnauthorized
	}

	return s.issue(user)
}

func (s *Service) issue(user *models.User) (*Token, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, ExpiresAt: exp}, nil
}

// Verify exposes token verification to the HTTP middleware.
func (s *Service) Verify(tokenString string) (*Session, error) {
	return s.tokens.Verify(tokenString)
}

// CreateUser registers an account with an explicit role, for the operator CLI.
func (s *Service) CreateUser(ctx context.Context, creds Credentials, role models.Role) (*models.User, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, &ValidationError{Fields: map[string]string{"role": "must be USER or ADMIN"}}
	}

	hash, salt, err := HashPassword(creds.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     creds.Username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
