package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Postgres unique-violation code, used to detect duplicate emails.
const PgUniqueViolation = "23505"
