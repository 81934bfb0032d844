package user

import "errors"

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
	ErrDuplicate   = errors.New("username already taken")
)
