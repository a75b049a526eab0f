package app

import "errors"

// Sentinel errors for common application failures.
var (
	ErrValidation      = errors.New("invalid argument")
	ErrUnknownVariable = errors.New("template references unknown variables")
	ErrNoPhone         = errors.New("candidate has no phone number")
	ErrNoEmail         = errors.New("candidate has no email address")
)
