package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrNotFound     = errors.New("beneficiary not found")
	ErrInvalidLimit = errors.New("invalid listing limit")
	ErrEmptyID      = errors.New("empty beneficiary id")
)
