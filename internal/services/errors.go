package services

import "errors"

// Chart service errors
var (
	ErrContextNotFound = errors.New("no data found for subject and grade")
	ErrUnknownMode     = errors.New("unknown display mode")
)
