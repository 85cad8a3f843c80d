package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

type memStudentStore struct {
	nextID   int64
	students map[int64]model.Student
	links    map[int64]int64 // student id -> user id
}

func newMemStudentStore() *memStudentStore {
	return &memStudentStore{nextID: 1, students: map[int64]model.Student{}, links: map[int64]int64{}}
}

func (m *memStudentStore) FindByID(_ context.Context, id int64) (model.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return model.Student{}, model.ErrStudentNotFound
	}
	return student, nil
}

func (m *memStudentStore) ExistsByStudentCode(_ context.Context, code string) (bool, error) {
	for _, student := range m.students {
		if student.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudentStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, student := range m.students {
		if strings.EqualFold(student.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStudentStore) Create(_ context.Context, s model.Student) (model.Student, error) {
	s.ID = m.nextID
	m.nextID++
	m.students[s.ID] = s
	return s, nil
}

func (m *memStudentStore) Update(_ context.Context, s model.Student) (model.Student, error) {
	if _, ok := m.students[s.ID]; !ok {
		return model.Student{}, model.ErrStudentNotFound
	}
	m.students[s.ID] = s
	return s, nil
}

func (m *memStudentStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return model.ErrStudentNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memStudentStore) List(context.Context) ([]model.Student, error) {
	out := make([]model.Student, 0, len(m.students))
	for _, student := range m.students {
		out = append(out, student)
	}
	return out, nil
}

func (m *memStudentStore) LinkedUserID(_ context.Context, studentID int64) (int64, bool, error) {
	userID, ok := m.links[studentID]
	return userID, ok, nil
}

func TestStudentCreate(t *testing.T) {
	svc := NewStudentService(newMemStudentStore())

	dob := time.Date(2004, time.March, 15, 0, 0, 0, 0, time.UTC)
	student, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: " SV001 ",
		Fullname:    "Binh Tran",
		DateOfBirth: &dob,
		Email:       "binh@example.edu",
		Major:       "Computer Science",
		ClassName:   "CS-2024A",
	})
	require.NoError(t, err)

	assert.Equal(t, "SV001", student.StudentCode)
	assert.Equal(t, "Binh Tran", student.Fullname)
	require.NotNil(t, student.DateOfBirth)
	assert.True(t, dob.Equal(*student.DateOfBirth))
}

func TestStudentCreateMissingFields(t *testing.T) {
	svc := NewStudentService(newMemStudentStore())

	_, err := svc.Create(context.Background(), model.StudentCreateRequest{Fullname: "No Code"})

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestStudentCreateDuplicates(t *testing.T) {
	svc := NewStudentService(newMemStudentStore())

	_, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Email: "binh@example.edu",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Email: "other@example.edu",
	})
	assert.ErrorIs(t, err, model.ErrDuplicateStudent)

	_, err = svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV002", Email: "Binh@Example.edu",
	})
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestStudentUpdateMerge(t *testing.T) {
	store := newMemStudentStore()
	svc := NewStudentService(store)

	created, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Fullname: "Binh Tran", Email: "binh@example.edu",
		Major: "Computer Science",
	})
	require.NoError(t, err)

	newMajor := "Software Engineering"
	updated, err := svc.Update(context.Background(), created.ID, model.StudentUpdateRequest{
		Major: &newMajor,
	})
	require.NoError(t, err)

	assert.Equal(t, "Software Engineering", updated.Major)
	assert.Equal(t, "Binh Tran", updated.Fullname)
	assert.Equal(t, "SV001", updated.StudentCode)
	assert.Equal(t, "binh@example.edu", updated.Email)
}

func TestStudentUpdateEmailConflict(t *testing.T) {
	svc := NewStudentService(newMemStudentStore())

	_, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Email: "binh@example.edu",
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV002", Email: "chi@example.edu",
	})
	require.NoError(t, err)

	taken := "binh@example.edu"
	_, err = svc.Update(context.Background(), second.ID, model.StudentUpdateRequest{Email: &taken})
	assert.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestStudentUpdateNotFound(t *testing.T) {
	svc := NewStudentService(newMemStudentStore())

	_, err := svc.Update(context.Background(), 42, model.StudentUpdateRequest{})
	assert.ErrorIs(t, err, model.ErrStudentNotFound)
}

func TestStudentDelete(t *testing.T) {
	store := newMemStudentStore()
	svc := NewStudentService(store)

	created, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Email: "binh@example.edu",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, model.ErrStudentNotFound)
}

func TestStudentDeleteLinkedToUser(t *testing.T) {
	store := newMemStudentStore()
	svc := NewStudentService(store)

	created, err := svc.Create(context.Background(), model.StudentCreateRequest{
		StudentCode: "SV001", Email: "binh@example.edu",
	})
	require.NoError(t, err)
	store.links[created.ID] = 7

	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, model.ErrStudentLinked)

	// Record is still there.
	_, err = svc.Get(context.Background(), created.ID)
	assert.NoError(t, err)
}
