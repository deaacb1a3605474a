package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid id")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrInvalidInput     = errors.New("invalid input")
)
