package errors

import "fmt"

var (
	ErrMalformedEvent     = fmt.Errorf("malformed event")
	ErrDuplicateID        = fmt.Errorf("identifier already registered")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidRequest     = fmt.Errorf("invalid request payload")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrNoVideoFound       = fmt.Errorf("no video found")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
