//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleBasedAccess(t *testing.T) {
	env := newTestServer(t)

	admin := env.login(t, "admin", "admin-pass")
	teacher := env.login(t, "teacher", "teacher-pass")
	student := env.login(t, "sv001@example.edu", "student-pass")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"admin lists users", http.MethodGet, "/api/users", admin, http.StatusOK},
		{"teacher cannot list users", http.MethodGet, "/api/users", teacher, http.StatusForbidden},
		{"student cannot list users", http.MethodGet, "/api/users", student, http.StatusForbidden},
		{"teacher reads one user", http.MethodGet, "/api/users/1", teacher, http.StatusOK},
		{"teacher lists students", http.MethodGet, "/api/students", teacher, http.StatusOK},
		{"student cannot list students", http.MethodGet, "/api/students", student, http.StatusForbidden},
		{"teacher cannot delete student", http.MethodDelete, "/api/students/2", teacher, http.StatusForbidden},
		{"everyone lists roles", http.MethodGet, "/api/roles", student, http.StatusOK},
		{"student cannot read a role", http.MethodGet, "/api/roles/1", student, http.StatusForbidden},
		{"admin reads a role", http.MethodGet, "/api/roles/1", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.request(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestStudentOwnerOverride(t *testing.T) {
	env := newTestServer(t)

	student := env.login(t, "sv001@example.edu", "student-pass")

	// Own record: the route allows the student role and the handler
	// confirms ownership.
	resp, body := env.request(t, http.MethodGet, "/api/students/1", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "SV001", data["student_code"])

	// Another student's record passes the route policy but fails the
	// ownership check.
	resp, body = env.request(t, http.MethodGet, "/api/students/2", student, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	// Teachers are not subject to the override.
	teacher := env.login(t, "teacher", "teacher-pass")
	resp, _ = env.request(t, http.MethodGet, "/api/students/2", teacher, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteDeniedByDefault(t *testing.T) {
	env := newTestServer(t)

	admin := env.login(t, "admin", "admin-pass")
	resp, _ := env.request(t, http.MethodGet, "/api/nothing-here", admin, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
