package entities

import "errors"

// Domain errors
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("invalid email")

	// Meeting errors
	ErrMeetingNotFound = errors.New("meeting not found")

	// Vector errors
	ErrEmptyEmbedding = errors.New("embedding is empty")
)
