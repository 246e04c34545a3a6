package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/codigix/Furnituredemo/internal/domain"
)

const bcryptCost = 12

// Users handles registration, login and profile maintenance.
// Passwords only exist in hashed form outside this service.
type Users struct {
	repo UserRepo
}

func NewUsers(repo UserRepo) *Users {
	return &Users{repo: repo}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Users) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if len(in.Password) < 6 {
		return nil, &domain.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies the credential and returns the account.
// The same error covers unknown email and wrong password so the
// response does not reveal which one failed.
func (s *Users) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredential
	}
	return u, nil
}

func (s *Users) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name     string // empty keeps current
	Email    string // empty keeps current
	Password string // empty keeps current
}

func (s *Users) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		email := normalizeEmail(in.Email)
		if other, err := s.repo.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
			return nil, domain.ErrEmailTaken
		}
		u.Email = email
	}
	if in.Password != "" {
		if len(in.Password) < 6 {
			return nil, &domain.ValidationError{Field: "password", Reason: "must be at least 6 characters"}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
