package model

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserCreateRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    string  `json:"email"`
	Fullname string  `json:"fullname"`
	IsActive *bool   `json:"is_active"`
	RoleIDs  []int64 `json:"role_ids"`
}

// UserUpdateRequest carries only the fields the client wants changed;
// nil pointers leave the stored value untouched.
type UserUpdateRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
	Fullname *string `json:"fullname"`
	IsActive *bool   `json:"is_active"`
	RoleIDs  []int64 `json:"role_ids"`
}

type AssignRolesRequest struct {
	RoleIDs []int64 `json:"role_ids"`
}

type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type StudentCreateRequest struct {
	StudentCode string     `json:"student_code"`
	Fullname    string     `json:"fullname"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Major       string     `json:"major"`
	ClassName   string     `json:"class_name"`
}

type StudentUpdateRequest struct {
	Fullname    *string    `json:"fullname"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	Major       *string    `json:"major"`
	ClassName   *string    `json:"class_name"`
}
