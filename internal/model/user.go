package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	Fullname     string    `json:"fullname"`
	IsActive     bool      `json:"is_active"`
	StudentID    *int64    `json:"student_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Roles        []Role    `json:"roles"`
}

// RoleNames collects the names of the user's roles, the unit the
// authorization layer compares on.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

type UserResponse struct {
	ID        int64             `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Fullname  string            `json:"fullname"`
	IsActive  bool              `json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Roles     []RoleSummary     `json:"roles"`
	Student   *StudentBasicInfo `json:"student,omitempty"`
}

type RoleSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type StudentBasicInfo struct {
	ID          int64  `json:"id"`
	StudentCode string `json:"student_code"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
}
