package service

import (
	"context"
	"strings"

	"campus-records/internal/model"
	"campus-records/pkg/apierror"
)

type studentStore interface {
	FindByID(ctx context.Context, id int64) (model.Student, error)
	ExistsByStudentCode(ctx context.Context, code string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, s model.Student) (model.Student, error)
	Update(ctx context.Context, s model.Student) (model.Student, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.Student, error)
	LinkedUserID(ctx context.Context, studentID int64) (int64, bool, error)
}

type StudentService struct {
	students studentStore
}

func NewStudentService(students studentStore) *StudentService {
	return &StudentService{students: students}
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return s.students.List(ctx)
}

func (s *StudentService) Get(ctx context.Context, id int64) (model.Student, error) {
	return s.students.FindByID(ctx, id)
}

func (s *StudentService) Create(ctx context.Context, req model.StudentCreateRequest) (model.Student, error) {
	code := strings.TrimSpace(req.StudentCode)
	email := strings.TrimSpace(req.Email)
	if code == "" || email == "" {
		return model.Student{}, apierror.BadRequest("student_code and email are required", "")
	}

	if exists, err := s.students.ExistsByStudentCode(ctx, code); err != nil {
		return model.Student{}, err
	} else if exists {
		return model.Student{}, model.ErrDuplicateStudent
	}

	if exists, err := s.students.ExistsByEmail(ctx, email); err != nil {
		return model.Student{}, err
	} else if exists {
		return model.Student{}, model.ErrDuplicateEmail
	}

	return s.students.Create(ctx, model.Student{
		StudentCode: code,
		Fullname:    strings.TrimSpace(req.Fullname),
		DateOfBirth: req.DateOfBirth,
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Address:     strings.TrimSpace(req.Address),
		Major:       strings.TrimSpace(req.Major),
		ClassName:   strings.TrimSpace(req.ClassName),
	})
}

// Update changes only the fields the request carries. The student code
// is immutable once assigned.
func (s *StudentService) Update(ctx context.Context, id int64, req model.StudentUpdateRequest) (model.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		return model.Student{}, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.EqualFold(email, student.Email) {
			if exists, err := s.students.ExistsByEmail(ctx, email); err != nil {
				return model.Student{}, err
			} else if exists {
				return model.Student{}, model.ErrDuplicateEmail
			}
			student.Email = email
		}
	}

	if req.Fullname != nil {
		student.Fullname = strings.TrimSpace(*req.Fullname)
	}
	if req.DateOfBirth != nil {
		student.DateOfBirth = req.DateOfBirth
	}
	if req.Phone != nil {
		student.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		student.Address = strings.TrimSpace(*req.Address)
	}
	if req.Major != nil {
		student.Major = strings.TrimSpace(*req.Major)
	}
	if req.ClassName != nil {
		student.ClassName = strings.TrimSpace(*req.ClassName)
	}

	return s.students.Update(ctx, student)
}

func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.students.FindByID(ctx, id); err != nil {
		return err
	}

	if _, linked, err := s.students.LinkedUserID(ctx, id); err != nil {
		return err
	} else if linked {
		return model.ErrStudentLinked
	}

	return s.students.Delete(ctx, id)
}
