package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/google/uuid"
)

// UserService registers sellers and exchanges credentials for tokens.
type UserService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

type RegisterUserParams struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a seller account. Emails are unique.
func (s *UserService) Register(ctx context.Context, p RegisterUserParams) (*entity.User, error) {
	p.Email = strings.TrimSpace(p.Email)
	if err := required("name", p.Name, "surname", p.Surname, "email", p.Email, "password", p.Password); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return nil, entity.ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	hash, err := auth.HashPassword(p.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Insert(ctx, entity.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(p.Name),
		Surname:      strings.TrimSpace(p.Surname),
		Email:        p.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, duplicateEmail(err)
	}
	return u, nil
}

// Authenticate returns a signed token for valid credentials. Unknown email
// and wrong password fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", notFound(err, entity.ErrAuthenticationFailed)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return "", err
	}
	return s.tokens.Issue(*u)
}

// CurrentUser resolves the seller behind a verified token.
func (s *UserService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	if err := requireSeller(userID); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, entity.ErrUserNotFound)
	}
	return u, nil
}
