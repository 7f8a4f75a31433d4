package services

import "errors"

var (
	// ErrForbidden is returned when a user tries to change something they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials is returned by Authenticate for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned by Register.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrSlugTaken is returned when a group slug is already used.
	ErrSlugTaken = errors.New("group slug already taken")
)
