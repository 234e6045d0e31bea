package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"volunteerhub/dto"
	"volunteerhub/model"
	"volunteerhub/store"
)

// UserService owns the users collection: registration, profile and role selection.
type UserService struct {
	store  store.UserStore
	admins map[string]bool
	log    *zap.Logger
	now    func() time.Time
}

func NewUserService(st store.UserStore, adminEmails []string, log *zap.Logger) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = model.NormalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	return &UserService{store: st, admins: admins, log: log, now: time.Now}
}

func (s *UserService) IsAdmin(email string) bool {
	return s.admins[model.NormalizeEmail(email)]
}

// Register creates the user document of a new account with an empty role. An
// existing document is returned unchanged.
func (s *UserService) Register(ctx context.Context, email, firstName, lastName string) (*model.User, error) {
	now := s.now()
	u := &model.User{
		Email:          model.NormalizeEmail(email),
		FirstName:      cleanText(firstName),
		LastName:       cleanText(lastName),
		SignedUpEvents: []string{},
		PostedEvents:   []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrAlreadyExists) {
		return s.store.GetUser(ctx, email)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("email", u.Email))
	return u, nil
}

// RegisterDisplayName splits a provider display name into first and last name.
func (s *UserService) RegisterDisplayName(ctx context.Context, email, displayName string) (*model.User, error) {
	first, last, _ := strings.Cut(strings.TrimSpace(displayName), " ")
	return s.Register(ctx, email, first, last)
}

// Lookup returns nil without error when the user document does not exist yet.
func (s *UserService) Lookup(ctx context.Context, email string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *UserService) Get(ctx context.Context, email string) (*model.User, error) {
	return s.store.GetUser(ctx, email)
}

func (s *UserService) UpdateProfile(ctx context.Context, sess *model.Session, req dto.UpdateProfileRequest) (*model.User, error) {
	first, last := cleanText(req.FirstName), cleanText(req.LastName)
	if first == "" {
		return nil, model.Invalid("firstName", "first name is required")
	}
	return s.store.UpdateUser(ctx, sess.Email, func(u *model.User) error {
		u.FirstName = first
		u.LastName = last
		u.UpdatedAt = s.now()
		return nil
	})
}

// SelectRole is the one-time role choice made after sign-up.
func (s *UserService) SelectRole(ctx context.Context, sess *model.Session, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, model.Invalid("role", "unknown role")
	}
	if _, err := s.RegisterDisplayName(ctx, sess.Email, sess.Name); err != nil {
		return nil, err
	}
	u, err := s.store.UpdateUser(ctx, sess.Email, func(u *model.User) error {
		if u.Role != "" {
			return model.ErrRoleAlreadySet
		}
		u.Role = role
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("role selected", zap.String("email", u.Email), zap.String("role", string(role)))
	return u, nil
}

// SetRole changes a role without the one-time restriction. Callers must be admins.
func (s *UserService) SetRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, model.Invalid("role", "unknown role")
	}
	u, err := s.store.UpdateUser(ctx, email, func(u *model.User) error {
		u.Role = role
		u.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Warn("role changed by administrator", zap.String("email", u.Email), zap.String("role", string(role)))
	return u, nil
}

func (s *UserService) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	if !role.Valid() {
		return nil, model.Invalid("role", "unknown role")
	}
	return s.store.ListUsersByRole(ctx, role)
}
