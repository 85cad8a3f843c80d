package model

import "time"

type Student struct {
	ID          int64      `json:"id"`
	StudentCode string     `json:"student_code"`
	Fullname    string     `json:"fullname"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Major       string     `json:"major,omitempty"`
	ClassName   string     `json:"class_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
