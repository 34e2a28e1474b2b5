package domain

import "errors"

var (
	ErrNoInput          = errors.New("No input data provided")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrNoSales          = errors.New("no sales records")
	ErrModelFailure     = errors.New("model failure")
	ErrNotFound         = errors.New("not found")
)
