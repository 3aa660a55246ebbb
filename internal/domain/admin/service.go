package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labassist/labassist/internal/platform/auth"
	"github.com/labassist/labassist/internal/platform/db"
)

// MinPasswordLength applies to passwords set through the API.
const MinPasswordLength = 8

// Login outcomes reported to the LoginObserver.
const (
	LoginSuccess         = "success"
	LoginUnknownEmail    = "unknown_email"
	LoginInvalidPassword = "invalid_password"
)

// TokenIssuer signs session tokens. *auth.Issuer implements it.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, error)
}

type LoginObserver interface {
	ObserveLogin(outcome string)
}

type nopLoginObserver struct{}

func (nopLoginObserver) ObserveLogin(string) {}

type Service struct {
	labs     LabRepository
	users    UserRepository
	issuer   TokenIssuer
	observer LoginObserver
}

func NewService(labs LabRepository, users UserRepository, issuer TokenIssuer) *Service {
	return &Service{labs: labs, users: users, issuer: issuer, observer: nopLoginObserver{}}
}

// SetLoginObserver attaches an observer for login attempts.
func (s *Service) SetLoginObserver(o LoginObserver) {
	if o != nil {
		s.observer = o
	}
}

// -- Labs --

func validateLab(l *Lab) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", l.Name},
		{"address", l.Address},
		{"phone", l.Phone},
		{"email", l.Email},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid("Missing required field: " + f.name)
		}
	}
	return nil
}

func (s *Service) CreateLab(ctx context.Context, l *Lab) error {
	if err := validateLab(l); err != nil {
		return err
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) ListLabs(ctx context.Context, limit, offset int) ([]*Lab, int, error) {
	return s.labs.List(ctx, limit, offset)
}

// LabInfo returns the primary lab, the first one created.
func (s *Service) LabInfo(ctx context.Context) (*Lab, error) {
	l, err := s.labs.Primary(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrLabNotFound
	}
	return l, err
}

func (s *Service) UpdateLabInfo(ctx context.Context, l *Lab) error {
	if err := validateLab(l); err != nil {
		return err
	}
	primary, err := s.LabInfo(ctx)
	if err != nil {
		return err
	}
	l.ID = primary.ID
	l.CreatedAt = primary.CreatedAt
	if err := s.labs.Update(ctx, l); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrLabNotFound
		}
		return err
	}
	return nil
}

// -- Authentication --

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Missing email or password")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.observer.ObserveLogin(LoginUnknownEmail)
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		s.observer.ObserveLogin(LoginInvalidPassword)
		return nil, ErrInvalidPassword
	}

	token, err := s.issuer.Issue(auth.Principal{ID: u.ID.String(), Email: u.Email, Roles: []string{u.Role}})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.observer.ObserveLogin(LoginSuccess)
	return &LoginResponse{Token: token, Email: u.Email}, nil
}

// verifyCurrent loads the user and checks their current password.
func (s *Service) verifyCurrent(ctx context.Context, userID uuid.UUID, current string) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrWrongPassword
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return nil, ErrWrongPassword
	}
	return u, nil
}

func checkNewPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// emailAvailable reports ErrEmailInUse when another user holds email.
func (s *Service) emailAvailable(ctx context.Context, userID uuid.UUID, email string) error {
	other, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != userID:
		return ErrEmailInUse
	}
	return nil
}

func emailError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrEmailInUse
	}
	return err
}

// UpdateCredentials replaces both email and password of the caller.
func (s *Service) UpdateCredentials(ctx context.Context, userID uuid.UUID, req *CredentialsUpdate) error {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" || req.CurrentPassword == "" {
		return invalid("Missing required fields")
	}
	if _, err := s.verifyCurrent(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}
	if err := checkNewPassword(req.Password); err != nil {
		return err
	}
	if err := s.emailAvailable(ctx, userID, email); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	return emailError(s.users.UpdateCredentials(ctx, userID, email, hash))
}

func (s *Service) ChangeEmail(ctx context.Context, userID uuid.UUID, req *EmailChange) error {
	email := strings.TrimSpace(req.NewEmail)
	if req.CurrentPassword == "" || email == "" {
		return invalid("Missing current password or new email")
	}
	if _, err := s.verifyCurrent(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}
	if err := s.emailAvailable(ctx, userID, email); err != nil {
		return err
	}
	return emailError(s.users.UpdateEmail(ctx, userID, email))
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *PasswordChange) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return invalid("Missing current password or new password")
	}
	if _, err := s.verifyCurrent(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}
	if err := checkNewPassword(req.NewPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// -- Profile --

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &Profile{Email: u.Email, FullName: u.FullName, Phone: u.Phone, Role: u.Role}, nil
}

// UpdateProfile sets full name and phone. The role only changes when
// asAdmin is true.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd *ProfileUpdate, asAdmin bool) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.FullName = upd.FullName
	u.Phone = upd.Phone
	if asAdmin && upd.Role != nil {
		role := strings.TrimSpace(*upd.Role)
		if role != auth.RoleAdmin && role != auth.RoleUser {
			return nil, invalid("role must be admin or user")
		}
		u.Role = role
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return &Profile{Email: u.Email, FullName: u.FullName, Phone: u.Phone, Role: u.Role}, nil
}

// SeedAdmin creates the bootstrap admin account when no users exist yet.
// It reports whether a user was created.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return false, fmt.Errorf("admin email and password are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	u := &User{Email: strings.TrimSpace(email), PasswordHash: hash, Role: auth.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("create admin user: %w", err)
	}
	return true, nil
}
