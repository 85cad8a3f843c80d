package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

type memUserStore struct {
	nextID int64
	users  map[int64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{nextID: 1, users: map[int64]model.User{}}
}

func (m *memUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	return err == nil, nil
}

func (m *memUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) Update(_ context.Context, u model.User) (model.User, error) {
	if _, ok := m.users[u.ID]; !ok {
		return model.User{}, model.ErrUserNotFound
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserStore) ReplaceRoles(context.Context, int64, []int64) error { return nil }

func (m *memUserStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUserStore) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, user)
	}
	return out, nil
}

func (m *memUserStore) FindByRoleName(_ context.Context, roleName string) ([]model.User, error) {
	var out []model.User
	for _, user := range m.users {
		for _, role := range user.Roles {
			if role.Name == roleName {
				out = append(out, user)
				break
			}
		}
	}
	return out, nil
}

func (m *memUserStore) FindByActive(_ context.Context, active bool) ([]model.User, error) {
	var out []model.User
	for _, user := range m.users {
		if user.IsActive == active {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *memUserStore) SearchByKeyword(_ context.Context, keyword string) ([]model.User, error) {
	keyword = strings.ToLower(keyword)
	var out []model.User
	for _, user := range m.users {
		if strings.Contains(strings.ToLower(user.Username), keyword) ||
			strings.Contains(strings.ToLower(user.Email), keyword) ||
			strings.Contains(strings.ToLower(user.Fullname), keyword) {
			out = append(out, user)
		}
	}
	return out, nil
}

type memRoleFinder struct {
	roles map[int64]model.Role
}

func (m *memRoleFinder) FindByID(_ context.Context, id int64) (model.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	return role, nil
}

type memStudentFinder struct {
	students map[int64]model.Student
}

func (m *memStudentFinder) FindByID(_ context.Context, id int64) (model.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return model.Student{}, model.ErrStudentNotFound
	}
	return student, nil
}

func newUserFixture() (*UserService, *memUserStore) {
	store := newMemUserStore()
	roles := &memRoleFinder{roles: map[int64]model.Role{
		1: {ID: 1, Name: model.RoleAdmin},
		2: {ID: 2, Name: model.RoleTeacher},
		3: {ID: 3, Name: model.RoleStudent},
	}}
	students := &memStudentFinder{students: map[int64]model.Student{
		10: {ID: 10, StudentCode: "SV001", Fullname: "Binh Tran", Email: "binh@example.edu"},
	}}
	return NewUserService(store, roles, students), store
}

func TestUserCreate(t *testing.T) {
	svc, store := newUserFixture()

	resp, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "  alice  ",
		Password: "s3cret",
		Email:    "alice@example.edu",
		Fullname: "Alice Nguyen",
		RoleIDs:  []int64{1, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.IsActive)
	require.Len(t, resp.Roles, 2)
	assert.Equal(t, model.RoleAdmin, resp.Roles[0].Name)
	assert.Equal(t, model.RoleStudent, resp.Roles[1].Name)

	stored := store.users[resp.ID]
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestUserCreateMissingFields(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), model.UserCreateRequest{Username: "alice"})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestUserCreateDuplicates(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), model.UserCreateRequest{
		Username: "ALICE", Password: "x", Email: "other@example.edu",
	})
	assert.ErrorIs(t, err, model.ErrDuplicateUsername)

	_, err = svc.Create(context.Background(), model.UserCreateRequest{
		Username: "bob", Password: "x", Email: "Alice@Example.edu",
	})
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestUserCreateUnknownRole(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
		RoleIDs: []int64{99},
	})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Equal(t, "99", apiErr.Details)
}

func TestUserUpdateMerge(t *testing.T) {
	svc, store := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "old", Email: "alice@example.edu",
		Fullname: "Alice Nguyen", RoleIDs: []int64{3},
	})
	require.NoError(t, err)
	oldHash := store.users[created.ID].PasswordHash

	newEmail := "alice.n@example.edu"
	resp, err := svc.Update(context.Background(), created.ID, model.UserUpdateRequest{
		Email: &newEmail,
	})
	require.NoError(t, err)

	// Untouched fields survive the partial update.
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "Alice Nguyen", resp.Fullname)
	assert.Equal(t, newEmail, resp.Email)
	assert.Equal(t, oldHash, store.users[created.ID].PasswordHash)
	require.Len(t, resp.Roles, 1)
	assert.Equal(t, model.RoleStudent, resp.Roles[0].Name)
}

func TestUserUpdateSameEmailNoConflict(t *testing.T) {
	svc, _ := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
	})
	require.NoError(t, err)

	// Re-submitting the current email in different case is not a
	// duplicate.
	sameEmail := "Alice@Example.edu"
	_, err = svc.Update(context.Background(), created.ID, model.UserUpdateRequest{Email: &sameEmail})
	assert.NoError(t, err)
}

func TestUserUpdateDuplicateUsername(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
	})
	require.NoError(t, err)
	bob, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "bob", Password: "x", Email: "bob@example.edu",
	})
	require.NoError(t, err)

	taken := "alice"
	_, err = svc.Update(context.Background(), bob.ID, model.UserUpdateRequest{Username: &taken})
	assert.ErrorIs(t, err, model.ErrDuplicateUsername)
}

func TestUserUpdateReplacesRoles(t *testing.T) {
	svc, _ := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
		RoleIDs: []int64{3},
	})
	require.NoError(t, err)

	resp, err := svc.Update(context.Background(), created.ID, model.UserUpdateRequest{
		RoleIDs: []int64{1, 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Roles, 2)
	assert.Equal(t, model.RoleAdmin, resp.Roles[0].Name)
	assert.Equal(t, model.RoleTeacher, resp.Roles[1].Name)
}

func TestUserUpdateNotFound(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Update(context.Background(), 42, model.UserUpdateRequest{})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserToggleStatus(t *testing.T) {
	svc, _ := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
	})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	resp, err := svc.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	resp, err = svc.ToggleStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
}

func TestUserSearch(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu", Fullname: "Alice Nguyen",
	})
	require.NoError(t, err)

	results, err := svc.Search(context.Background(), "nguyen")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].Username)

	_, err = svc.Search(context.Background(), "   ")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestUserResponseIncludesLinkedStudent(t *testing.T) {
	svc, store := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "binh", Password: "x", Email: "binh@example.edu",
	})
	require.NoError(t, err)

	studentID := int64(10)
	user := store.users[created.ID]
	user.StudentID = &studentID
	store.users[created.ID] = user

	resp, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Student)
	assert.Equal(t, "SV001", resp.Student.StudentCode)

	// A dangling link is dropped rather than failing the read.
	dangling := int64(999)
	user.StudentID = &dangling
	store.users[created.ID] = user

	resp, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, resp.Student)
}

func TestUserDelete(t *testing.T) {
	svc, _ := newUserFixture()

	created, err := svc.Create(context.Background(), model.UserCreateRequest{
		Username: "alice", Password: "x", Email: "alice@example.edu",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.True(t, errors.Is(err, model.ErrUserNotFound))
}
