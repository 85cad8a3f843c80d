package service

import (
	"context"
	"strings"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

type roleStore interface {
	FindByID(ctx context.Context, id int64) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, role model.Role) (model.Role, error)
	Update(ctx context.Context, role model.Role) (model.Role, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Role, error)
}

type RoleService struct {
	roles roleStore
}

func NewRoleService(roles roleStore) *RoleService {
	return &RoleService{roles: roles}
}

func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id int64) (model.Role, error) {
	return s.roles.FindByID(ctx, id)
}

func (s *RoleService) GetByName(ctx context.Context, name string) (model.Role, error) {
	return s.roles.FindByName(ctx, name)
}

func (s *RoleService) Create(ctx context.Context, req model.RoleRequest) (model.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Role{}, apierror.BadRequest("role name is required", "name")
	}

	if exists, err := s.roles.ExistsByName(ctx, name); err != nil {
		return model.Role{}, err
	} else if exists {
		return model.Role{}, model.ErrDuplicateRole
	}

	return s.roles.Create(ctx, model.Role{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	})
}

func (s *RoleService) Update(ctx context.Context, id int64, req model.RoleRequest) (model.Role, error) {
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return model.Role{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Role{}, apierror.BadRequest("role name is required", "name")
	}

	if name != role.Name {
		if exists, err := s.roles.ExistsByName(ctx, name); err != nil {
			return model.Role{}, err
		} else if exists {
			return model.Role{}, model.ErrDuplicateRole
		}
	}

	role.Name = name
	role.Description = strings.TrimSpace(req.Description)
	return s.roles.Update(ctx, role)
}

func (s *RoleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.roles.FindByID(ctx, id); err != nil {
		return err
	}
	return s.roles.Delete(ctx, id)
}
