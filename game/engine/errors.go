package engine

import "errors"

var (
	ErrUnknownGame   = errors.New("unknown game")
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidConfig = errors.New("invalid game configuration")
)
