package service

import "errors"

var (
	// ErrInvalidTask wraps validation failures on task input.
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidUser wraps validation failures on registration input.
	ErrInvalidUser = errors.New("invalid user")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
