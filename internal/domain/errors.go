package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrMissingAPIKey    = errors.New("gemini api key is not configured")
	ErrRateLimited      = errors.New("rate limited")
	ErrGenerationFailed = errors.New("generation produced no image")
	ErrInvalidBackup    = errors.New("invalid backup payload")
	ErrPersistence      = errors.New("persistence failure")
)
