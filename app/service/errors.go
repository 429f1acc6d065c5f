package service

import "errors"

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderAlreadySettled = errors.New("order already settled")
)
