package model

import "errors"

// Common errors used across the application
var (
	// Player record errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrMalformedRecord = errors.New("malformed player record")

	// Input errors
	ErrInvalidName      = errors.New("names must be non-empty and must not contain '/'")
	ErrRoomCodeRequired = errors.New("room code is required")
)
