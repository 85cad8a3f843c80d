package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

type memRoleStore struct {
	nextID int64
	roles  map[int64]model.Role
}

func newMemRoleStore() *memRoleStore {
	return &memRoleStore{nextID: 1, roles: map[int64]model.Role{}}
}

func (m *memRoleStore) FindByID(_ context.Context, id int64) (model.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	return role, nil
}

func (m *memRoleStore) FindByName(_ context.Context, name string) (model.Role, error) {
	for _, role := range m.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return model.Role{}, model.ErrRoleNotFound
}

func (m *memRoleStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := m.FindByName(ctx, name)
	return err == nil, nil
}

func (m *memRoleStore) Create(_ context.Context, role model.Role) (model.Role, error) {
	role.ID = m.nextID
	m.nextID++
	m.roles[role.ID] = role
	return role, nil
}

func (m *memRoleStore) Update(_ context.Context, role model.Role) (model.Role, error) {
	if _, ok := m.roles[role.ID]; !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *memRoleStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.roles[id]; !ok {
		return model.ErrRoleNotFound
	}
	delete(m.roles, id)
	return nil
}

func (m *memRoleStore) List(context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(m.roles))
	for _, role := range m.roles {
		out = append(out, role)
	}
	return out, nil
}

func TestRoleCreate(t *testing.T) {
	svc := NewRoleService(newMemRoleStore())

	role, err := svc.Create(context.Background(), model.RoleRequest{
		Name: "  ROLE_LIBRARIAN  ", Description: "library desk staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "ROLE_LIBRARIAN", role.Name)
	assert.Equal(t, "library desk staff", role.Description)

	_, err = svc.Create(context.Background(), model.RoleRequest{Name: "ROLE_LIBRARIAN"})
	assert.ErrorIs(t, err, model.ErrDuplicateRole)

	_, err = svc.Create(context.Background(), model.RoleRequest{Name: "   "})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestRoleUpdate(t *testing.T) {
	svc := NewRoleService(newMemRoleStore())

	first, err := svc.Create(context.Background(), model.RoleRequest{Name: "ROLE_LIBRARIAN"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), model.RoleRequest{Name: "ROLE_REGISTRAR"})
	require.NoError(t, err)

	// Renaming onto an existing role name is a conflict.
	_, err = svc.Update(context.Background(), second.ID, model.RoleRequest{Name: first.Name})
	assert.ErrorIs(t, err, model.ErrDuplicateRole)

	// Keeping the name while changing the description is not.
	updated, err := svc.Update(context.Background(), second.ID, model.RoleRequest{
		Name: "ROLE_REGISTRAR", Description: "records office",
	})
	require.NoError(t, err)
	assert.Equal(t, "records office", updated.Description)
}

func TestRoleDelete(t *testing.T) {
	svc := NewRoleService(newMemRoleStore())

	created, err := svc.Create(context.Background(), model.RoleRequest{Name: "ROLE_LIBRARIAN"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), model.ErrRoleNotFound)
}

func TestRoleGetByName(t *testing.T) {
	svc := NewRoleService(newMemRoleStore())

	_, err := svc.Create(context.Background(), model.RoleRequest{Name: model.RoleAdmin})
	require.NoError(t, err)

	role, err := svc.GetByName(context.Background(), model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role.Name)

	_, err = svc.GetByName(context.Background(), "ROLE_NOBODY")
	assert.ErrorIs(t, err, model.ErrRoleNotFound)
}
