package model

import "time"

const (
	RoleResident  = "resident"
	RoleAttending = "attending"
	RoleAdmin     = "admin"
)

// User represents a system user
type User struct {
	ID             string    `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"`
	HashedPassword string    `bson:"hashed_password" json:"-"`
	FullName       string    `bson:"full_name" json:"full_name"`
	Role           string    `bson:"role" json:"role"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{Email: u.Email, FullName: u.FullName, Role: u.Role}
}
