package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/store"
	"go.uber.org/zap"
)

// AvatarStorage persists avatar images under opaque names.
type AvatarStorage interface {
	Save(r io.Reader, ext string) (string, error)
	Path(name string) (string, error)
	Remove(name string) error
}

var avatarExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

type EmployeeService struct {
	employees domain.EmployeeStore
	avatars   AvatarStorage
	logger    *zap.Logger
}

func NewEmployeeService(es domain.EmployeeStore, avatars AvatarStorage, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{employees: es, avatars: avatars, logger: logger}
}

// Me returns the caller's employee record.
func (s *EmployeeService) Me(ctx context.Context, user *domain.User) (*domain.Employee, error) {
	e, err := s.employees.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) ListByBusiness(ctx context.Context, user *domain.User, businessID uuid.UUID, page domain.Page) (*domain.Employees, error) {
	if err := requireMembership(ctx, s.employees, user, businessID); err != nil {
		return nil, err
	}

	employees, count, err := s.employees.ListByBusiness(ctx, businessID, page.Normalize())
	if err != nil {
		return nil, err
	}
	return &domain.Employees{Data: employees, Count: count}, nil
}

// Update edits an employee profile. Only the employee's own user, or a
// superuser, may change it.
func (s *EmployeeService) Update(ctx context.Context, user *domain.User, id uuid.UUID, in domain.EmployeeUpdate) (*domain.Employee, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	if !user.IsSuperuser && e.UserID != user.ID {
		return nil, ErrForbidden
	}

	e.Apply(in)
	if err := s.employees.Update(ctx, e); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return e, nil
}

// UpdateAvatar stores a new avatar for the caller and drops the previous file.
func (s *EmployeeService) UpdateAvatar(ctx context.Context, user *domain.User, filename string, r io.Reader) (*domain.Employee, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !avatarExtensions[ext] {
		return nil, domain.ValidationErrors{{Field: "avatar_file", Message: "unsupported image type"}}
	}

	me, err := s.Me(ctx, user)
	if err != nil {
		return nil, err
	}

	name, err := s.avatars.Save(r, ext)
	if err != nil {
		if errors.Is(err, ErrAvatarTooLarge) {
			return nil, domain.ValidationErrors{{Field: "avatar_file", Message: err.Error()}}
		}
		return nil, fmt.Errorf("save avatar: %w", err)
	}

	updated, err := s.employees.UpdateAvatar(ctx, me.ID, name)
	if err != nil {
		_ = s.avatars.Remove(name)
		return nil, err
	}

	if me.Avatar != nil && *me.Avatar != "" {
		if err := s.avatars.Remove(*me.Avatar); err != nil {
			s.logger.Warn("failed to remove previous avatar", zap.String("avatar", *me.Avatar), zap.Error(err))
		}
	}
	return updated, nil
}

// AvatarPath resolves a stored avatar name to a file on disk.
func (s *EmployeeService) AvatarPath(name string) (string, error) {
	return s.avatars.Path(name)
}
