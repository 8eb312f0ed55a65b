package entity

import "time"

type User struct {
	ID           int64
	Username     string
	Contact      string // email address or E.164 phone number
	Role         Role
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewUser struct {
	ID           int64
	Username     string
	Contact      string
	Role         Role
	PasswordHash string
	PasswordSalt string
}
