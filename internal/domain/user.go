package domain

import "errors"

// User is the acting identity resolved from a bearer token.
type User struct {
	ID    string
	Email string
	Name  string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
