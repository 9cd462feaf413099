package services

import "errors"

// Common service errors
var (
	ErrNotFound               = errors.New("record not found")
	ErrNotAssigned            = errors.New("entity has no current assignment")
	ErrUnauthorizedChange     = errors.New("change has no accountable actor")
	ErrConcurrentModification = errors.New("assignment changed concurrently, retry the operation")
	ErrInvalidTransition      = errors.New("invalid placement transition")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInactiveAccount        = errors.New("account inactive or suspended")
)
