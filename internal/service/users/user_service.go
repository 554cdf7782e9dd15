package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logger"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	List(ctx context.Context, actor *domain.User) ([]domain.User, error)
	Update(ctx context.Context, actor *domain.User, id string, in UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
}

type UserService struct {
	repo       repository.UserRepository
	audit      *logger.Audit
	bcryptCost int
}

type UserServiceOption func(*UserService)

func WithAudit(audit *logger.Audit) UserServiceOption {
	return func(s *UserService) {
		s.audit = audit
	}
}

func WithBcryptCost(cost int) UserServiceOption {
	return func(s *UserService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

func NewUserService(repo repository.UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{repo: repo, bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	if s.audit == nil {
		s.audit = logger.NopAudit()
	}
	return s
}

type RegisterInput struct {
	FirstName string `json:"firstname" form:"firstname" validate:"required,personname"`
	LastName  string `json:"lastname" form:"lastname" validate:"required,personname"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.audit.Error("Registration for %s failed: %v", u.Email, err)
		return nil, err
	}
	s.audit.Action("User %s registered", u.Email)
	return u, nil
}

// Login returns the user for valid credentials and domain.ErrUnauthorized otherwise.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.audit.Error("Failed login for %s", email)
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.audit.Error("Failed login for %s", email)
		return nil, domain.ErrUnauthorized
	}
	s.audit.Action("User %s logged in", u.Email)
	return u, nil
}

// Get loads a profile. Non-admins always get their own.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, targetID(actor, id))
}

func (s *UserService) List(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor == nil || !actor.IsAdmin {
		return nil, domain.ErrForbidden
	}
	return s.repo.List(ctx)
}

// UpdateInput is the profile form. A blank password keeps the current one.
type UpdateInput struct {
	FirstName string `json:"firstname" form:"firstname" validate:"required,personname"`
	LastName  string `json:"lastname" form:"lastname" validate:"required,personname"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"omitempty,min=6,max=72"`
}

// Update edits a profile. Non-admins can only edit their own, whatever id says.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, in UpdateInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, targetID(actor, id))
	if err != nil {
		return nil, err
	}
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Email = in.Email
	if in.Password != "" {
		if u.PasswordHash, err = s.hash(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		s.audit.Error("Updating user %s failed: %v", u.ID, err)
		return nil, err
	}
	s.audit.Action("User %s updated by %s", u.Email, actorEmail(actor))
	return u, nil
}

// Delete removes an account and returns it. Non-admins delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, targetID(actor, id))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, u.ID); err != nil {
		s.audit.Error("Deleting user %s failed: %v", u.ID, err)
		return nil, err
	}
	s.audit.Action("User %s deleted by %s", u.Email, actorEmail(actor))
	return u, nil
}

// AdminSeed describes the admin account ensured at start-up.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// SeedAdmin creates the admin account if missing, or promotes an existing
// account with that email. A seed without email or password is a no-op.
func (s *UserService) SeedAdmin(ctx context.Context, seed AdminSeed) error {
	email := normalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin {
			return nil
		}
		existing.IsAdmin = true
		if err := s.repo.Update(ctx, existing); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		s.audit.Action("User %s promoted to admin", email)
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := s.hash(seed.Password)
	if err != nil {
		return err
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    firstNonEmpty(seed.FirstName, "Admin"),
		LastName:     firstNonEmpty(seed.LastName, "User"),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.audit.Action("Admin account %s created", email)
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 counts runes, bcrypt counts bytes
		return "", domain.NewValidationError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func targetID(actor *domain.User, id string) string {
	if actor != nil && !actor.IsAdmin {
		return actor.ID
	}
	return id
}

func actorEmail(actor *domain.User) string {
	if actor == nil {
		return "system"
	}
	return actor.Email
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

var _ UserUseCase = (*UserService)(nil)
