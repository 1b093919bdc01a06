package models

import "time"

// User is an authenticated principal: a student or a lecturer.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         RoleType  `json:"role" db:"role"`
	IsAdmin      bool      `json:"isAdmin" db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Student carries the student-specific profile attached to a user.
type Student struct {
	ID                  int64   `json:"id" db:"id"`
	UserID              int64   `json:"userId" db:"user_id"`
	Phone               *string `json:"phone,omitempty" db:"phone"`
	OriginInstitutionID *int64  `json:"originInstitutionId,omitempty" db:"origin_institution_id"`

	User *User `json:"user,omitempty"`
}
