package myerrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrTrackingCodeTaken = errors.New("tracking code already taken")
)
