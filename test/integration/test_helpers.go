//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campus-records/internal/config"
	"campus-records/internal/handler"
	"campus-records/internal/middleware"
	"campus-records/internal/model"
	"campus-records/internal/router"
	"campus-records/internal/service"
)

// In-memory stores standing in for the Postgres repositories. They
// satisfy the same consumer interfaces the services declare, so the
// full HTTP stack above them is the production one.

type userStore struct {
	nextID int64
	users  map[int64]model.User
}

func (s *userStore) FindByID(_ context.Context, id int64) (model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (s *userStore) FindByUsername(_ context.Context, username string) (model.User, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := s.FindByUsername(ctx, username)
	return err == nil, nil
}

func (s *userStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *userStore) Create(_ context.Context, u model.User) (model.User, error) {
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = u
	return u, nil
}

func (s *userStore) Update(_ context.Context, u model.User) (model.User, error) {
	if _, ok := s.users[u.ID]; !ok {
		return model.User{}, model.ErrUserNotFound
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *userStore) ReplaceRoles(context.Context, int64, []int64) error { return nil }

func (s *userStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *userStore) List(context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStore) FindByRoleName(_ context.Context, roleName string) ([]model.User, error) {
	var out []model.User
	for _, user := range s.users {
		for _, role := range user.Roles {
			if role.Name == roleName {
				out = append(out, user)
				break
			}
		}
	}
	return out, nil
}

func (s *userStore) FindByActive(_ context.Context, active bool) ([]model.User, error) {
	var out []model.User
	for _, user := range s.users {
		if user.IsActive == active {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *userStore) SearchByKeyword(_ context.Context, keyword string) ([]model.User, error) {
	keyword = strings.ToLower(keyword)
	var out []model.User
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Username), keyword) ||
			strings.Contains(strings.ToLower(user.Email), keyword) ||
			strings.Contains(strings.ToLower(user.Fullname), keyword) {
			out = append(out, user)
		}
	}
	return out, nil
}

type roleStore struct {
	nextID int64
	roles  map[int64]model.Role
}

func (s *roleStore) FindByID(_ context.Context, id int64) (model.Role, error) {
	role, ok := s.roles[id]
	if !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	return role, nil
}

func (s *roleStore) FindByName(_ context.Context, name string) (model.Role, error) {
	for _, role := range s.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return model.Role{}, model.ErrRoleNotFound
}

func (s *roleStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	_, err := s.FindByName(ctx, name)
	return err == nil, nil
}

func (s *roleStore) Create(_ context.Context, role model.Role) (model.Role, error) {
	role.ID = s.nextID
	s.nextID++
	s.roles[role.ID] = role
	return role, nil
}

func (s *roleStore) Update(_ context.Context, role model.Role) (model.Role, error) {
	if _, ok := s.roles[role.ID]; !ok {
		return model.Role{}, model.ErrRoleNotFound
	}
	s.roles[role.ID] = role
	return role, nil
}

func (s *roleStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.roles[id]; !ok {
		return model.ErrRoleNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *roleStore) List(context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(s.roles))
	for _, role := range s.roles {
		out = append(out, role)
	}
	return out, nil
}

type studentStore struct {
	nextID   int64
	students map[int64]model.Student
	links    map[int64]int64
}

func (s *studentStore) FindByID(_ context.Context, id int64) (model.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return model.Student{}, model.ErrStudentNotFound
	}
	return student, nil
}

func (s *studentStore) ExistsByStudentCode(_ context.Context, code string) (bool, error) {
	for _, student := range s.students {
		if student.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *studentStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, student := range s.students {
		if strings.EqualFold(student.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *studentStore) Create(_ context.Context, st model.Student) (model.Student, error) {
	st.ID = s.nextID
	s.nextID++
	s.students[st.ID] = st
	return st, nil
}

func (s *studentStore) Update(_ context.Context, st model.Student) (model.Student, error) {
	if _, ok := s.students[st.ID]; !ok {
		return model.Student{}, model.ErrStudentNotFound
	}
	s.students[st.ID] = st
	return st, nil
}

func (s *studentStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.students[id]; !ok {
		return model.ErrStudentNotFound
	}
	delete(s.students, id)
	return nil
}

func (s *studentStore) List(context.Context) ([]model.Student, error) {
	out := make([]model.Student, 0, len(s.students))
	for _, student := range s.students {
		out = append(out, student)
	}
	return out, nil
}

func (s *studentStore) LinkedUserID(_ context.Context, studentID int64) (int64, bool, error) {
	userID, ok := s.links[studentID]
	return userID, ok, nil
}

type testEnv struct {
	server   *httptest.Server
	users    *userStore
	students *studentStore
}

// newTestServer assembles the production router, middleware chain and
// services over in-memory stores, seeded with one account per role and
// two student records. The student account's username is the email on
// its own record, the identity the owner override compares.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout: 5 * time.Second,
		CORSOrigins:    []string{"*"},
		PolicyDefault:  "deny",
	}

	roles := &roleStore{nextID: 4, roles: map[int64]model.Role{
		1: {ID: 1, Name: model.RoleAdmin},
		2: {ID: 2, Name: model.RoleTeacher},
		3: {ID: 3, Name: model.RoleStudent},
	}}

	users := &userStore{nextID: 4, users: map[int64]model.User{
		1: {
			ID: 1, Username: "admin", PasswordHash: mustHash(t, "admin-pass"),
			Email: "admin@example.edu", IsActive: true,
			Roles: []model.Role{roles.roles[1]},
		},
		2: {
			ID: 2, Username: "teacher", PasswordHash: mustHash(t, "teacher-pass"),
			Email: "teacher@example.edu", IsActive: true,
			Roles: []model.Role{roles.roles[2]},
		},
		3: {
			ID: 3, Username: "sv001@example.edu", PasswordHash: mustHash(t, "student-pass"),
			Email: "sv001@example.edu", IsActive: true,
			Roles: []model.Role{roles.roles[3]},
		},
	}}

	students := &studentStore{nextID: 3, students: map[int64]model.Student{
		1: {ID: 1, StudentCode: "SV001", Fullname: "Binh Tran", Email: "sv001@example.edu"},
		2: {ID: 2, StudentCode: "SV002", Fullname: "Chi Le", Email: "sv002@example.edu"},
	}, links: map[int64]int64{1: 3}}

	tokens, err := service.NewTokenService("integration-secret", time.Hour)
	require.NoError(t, err)

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(service.NewAuthService(users, tokens)),
		User:    handler.NewUserHandler(service.NewUserService(users, roles, students)),
		Role:    handler.NewRoleHandler(service.NewRoleService(roles)),
		Student: handler.NewStudentHandler(service.NewStudentService(students)),
	}

	authMW := middleware.NewAuthMiddleware(tokens)
	policy := middleware.NewPolicy(cfg.PolicyDefault, middleware.DefaultRules()...)

	server := httptest.NewServer(router.New(cfg, authMW, policy, h))
	t.Cleanup(server.Close)

	return &testEnv{server: server, users: users, students: students}
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// login runs the real login endpoint and returns the issued token.
func (e *testEnv) login(t *testing.T, username string, password string) string {
	t.Helper()

	resp, body := e.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "login response has no data: %v", body)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// request performs one call against the test server and decodes the
// response envelope.
func (e *testEnv) request(t *testing.T, method string, path string, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reqBody)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var body map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

// itoa renders a JSON-decoded numeric id as a path segment.
func itoa(id float64) string {
	return strconv.FormatInt(int64(id), 10)
}

func errorCode(body map[string]any) string {
	errField, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errField["code"].(string)
	return code
}
