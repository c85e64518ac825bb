package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
