package domain

import "errors"

// Pipeline errors
var (
	// Dataset errors
	ErrDataUnavailable = errors.New("sales dataset unavailable")

	// Stage outcomes
	ErrEmptyResult         = errors.New("no data for the requested selection")
	ErrInsufficientHistory = errors.New("fewer than two years of history")

	// Request errors
	ErrInvalidDimension = errors.New("invalid category dimension")
	ErrInvalidCategory  = errors.New("category not among top categories")
)
