package user

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fraudshield/admin-dashboard/internal/model"
	"github.com/fraudshield/admin-dashboard/internal/repository"
	"github.com/fraudshield/admin-dashboard/internal/ui/filter"
	apperrors "github.com/fraudshield/admin-dashboard/pkg/errors"
	"github.com/fraudshield/admin-dashboard/pkg/validator"
)

const (
	MsgCreated = "User created successfully"
	MsgSaved   = "User updated successfully"
	MsgDeleted = "User deleted successfully"
)

// User statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

var ErrLastAdmin = errors.New("at least one active admin must remain")

// rolePermissions is the permission set granted with each role.
var rolePermissions = map[string][]string{
	model.RoleAdmin:   {"manage_users", "view_analytics", "edit_patterns"},
	model.RoleAnalyst: {"view_analytics", "edit_patterns"},
	model.RoleViewer:  {"view_analytics"},
}

type UserServicer interface {
	Users(ctx context.Context, f Filter) ([]model.User, error)
	User(ctx context.Context, id string) (model.User, error)
	Stats(ctx context.Context) (Stats, error)
	CreateUser(ctx context.Context, u Update) (string, error)
	UpdateUser(ctx context.Context, id string, u Update) (string, error)
	DeleteUser(ctx context.Context, id string) (string, error)
}

// Filter narrows the user list. Search matches name or email.
type Filter struct {
	Search string `form:"q" json:"q"`
	Role   string `form:"role" json:"role" binding:"omitempty,oneof=all admin analyst viewer"`
	Status string `form:"status" json:"status" binding:"omitempty,oneof=all active inactive pending"`
}

// Update is the add and edit form for one user.
type Update struct {
	Name   string `form:"name" json:"name" validate:"required,max=120"`
	Email  string `form:"email" json:"email" validate:"required,email"`
	Role   string `form:"role" json:"role" validate:"required,oneof=admin analyst viewer"`
	Status string `form:"status" json:"status" validate:"required,oneof=active inactive pending"`
}

// Stats counts users by status.
type Stats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Pending  int `json:"pending"`
	Inactive int `json:"inactive"`
}

type Service struct {
	repo      repository.UserRepository
	validator validator.Validator
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo:      repo,
		validator: validator.New(),
	}
}

func (s *Service) Users(ctx context.Context, f Filter) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return filter.Apply(users,
		filter.Search(f.Search,
			func(u model.User) string { return u.Name },
			func(u model.User) string { return u.Email },
		),
		filter.Equals(f.Role, func(u model.User) string { return u.Role }),
		filter.Equals(f.Status, func(u model.User) string { return u.Status }),
	), nil
}

func (s *Service) User(ctx context.Context, id string) (model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperrors.NotFound("user", err)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list users: %w", err)
	}
	st := Stats{Total: len(users)}
	for _, u := range users {
		switch u.Status {
		case StatusActive:
			st.Active++
		case StatusPending:
			st.Pending++
		case StatusInactive:
			st.Inactive++
		}
	}
	return st, nil
}

// CreateUser adds a user with the permissions of its role. Emails are
// unique, compared case-insensitively.
func (s *Service) CreateUser(ctx context.Context, u Update) (string, error) {
	if err := s.validator.Validate(u); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	if err := s.checkEmail(ctx, "", u.Email); err != nil {
		return "", err
	}

	user := model.User{
		ID:          uuid.NewString(),
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Status:      u.Status,
		Permissions: slices.Clone(rolePermissions[u.Role]),
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user created")
	return MsgCreated, nil
}

// UpdateUser applies an edit. A role change replaces the permission
// set.
func (s *Service) UpdateUser(ctx context.Context, id string, u Update) (string, error) {
	if err := s.validator.Validate(u); err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	user, err := s.User(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.checkEmail(ctx, id, u.Email); err != nil {
		return "", err
	}
	if isActiveAdmin(user) && (u.Role != model.RoleAdmin || u.Status != StatusActive) {
		if err := s.checkAdminRemains(ctx, id); err != nil {
			return "", err
		}
	}

	if user.Role != u.Role {
		user.Permissions = slices.Clone(rolePermissions[u.Role])
	}
	user.Name = u.Name
	user.Email = u.Email
	user.Role = u.Role
	user.Status = u.Status

	if err := s.repo.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to update user: %w", err)
	}
	return MsgSaved, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (string, error) {
	user, err := s.User(ctx, id)
	if err != nil {
		return "", err
	}
	if isActiveAdmin(user) {
		if err := s.checkAdminRemains(ctx, id); err != nil {
			return "", err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("user_id", id).Msg("user deleted")
	return MsgDeleted, nil
}

func isActiveAdmin(u model.User) bool {
	return u.Role == model.RoleAdmin && u.Status == StatusActive
}

// checkAdminRemains fails unless an active admin other than id exists.
func (s *Service) checkAdminRemains(ctx context.Context, id string) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if u.ID != id && isActiveAdmin(u) {
			return nil
		}
	}
	return apperrors.Conflict(ErrLastAdmin.Error(), ErrLastAdmin)
}

func (s *Service) checkEmail(ctx context.Context, id, email string) error {
	users, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if u.ID != id && strings.EqualFold(u.Email, email) {
			return apperrors.Conflict(fmt.Sprintf("%s is already in use", email), nil)
		}
	}
	return nil
}
