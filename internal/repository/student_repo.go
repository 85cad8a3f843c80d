package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-records/internal/model"
)

const studentColumns = `id, student_code, full_name, date_of_birth, email, phone, address, major, class_name, created_at, updated_at`

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) FindByID(ctx context.Context, id int64) (model.Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, model.ErrStudentNotFound
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("find student by id: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) FindByStudentCode(ctx context.Context, code string) (model.Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_code = $1`,
		strings.TrimSpace(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, model.ErrStudentNotFound
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("find student by code: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (model.Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Student{}, model.ErrStudentNotFound
	}
	if err != nil {
		return model.Student{}, fmt.Errorf("find student by email: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) ExistsByStudentCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE student_code = $1)`,
		strings.TrimSpace(code)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check student code exists: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM students WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check student email exists: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) Create(ctx context.Context, s model.Student) (model.Student, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (student_code, full_name, date_of_birth, email, phone, address, major, class_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		s.StudentCode, s.Fullname, s.DateOfBirth, s.Email,
		nullable(s.Phone), nullable(s.Address), nullable(s.Major), nullable(s.ClassName)).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Student{}, fmt.Errorf("create student: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) Update(ctx context.Context, s model.Student) (model.Student, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students
		 SET full_name = $2, date_of_birth = $3, email = $4, phone = $5,
		     address = $6, major = $7, class_name = $8, updated_at = $9
		 WHERE id = $1`,
		s.ID, s.Fullname, s.DateOfBirth, s.Email, nullable(s.Phone),
		nullable(s.Address), nullable(s.Major), nullable(s.ClassName), time.Now().UTC())
	if err != nil {
		return model.Student{}, fmt.Errorf("update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Student{}, model.ErrStudentNotFound
	}
	return r.FindByID(ctx, s.ID)
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY student_code`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := make([]model.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// LinkedUserID reports the id of the user account referencing this
// student, if any. Deletion is refused while such a link exists.
func (r *StudentRepository) LinkedUserID(ctx context.Context, studentID int64) (int64, bool, error) {
	var userID int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM users WHERE student_id = $1`, studentID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("check student link: %w", err)
	}
	return userID, true, nil
}

func scanStudent(row rowScanner) (model.Student, error) {
	var s model.Student
	var fullname, phone, address, major, className *string
	err := row.Scan(&s.ID, &s.StudentCode, &fullname, &s.DateOfBirth, &s.Email,
		&phone, &address, &major, &className, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Student{}, err
	}
	s.Fullname = deref(fullname)
	s.Phone = deref(phone)
	s.Address = deref(address)
	s.Major = deref(major)
	s.ClassName = deref(className)
	return s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
