package models

import "time"

// UserRole distinguishes the two portal audiences plus admins.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleScribe  UserRole = "SCRIBE"
	RoleAdmin   UserRole = "ADMIN"
)

// User is an account row. Registration and credential management live in the
// auth collaborator; this service only reads users for names and email
// addresses.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Role      UserRole  `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
