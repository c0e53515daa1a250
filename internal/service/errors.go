package service

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrTaskNotBookable = errors.New("task does not accept time sheets")
)
