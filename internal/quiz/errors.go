package quiz

import "errors"

var (
	ErrTestNotFound     = errors.New("test not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrNotPublished     = errors.New("test is not published")
)
