package domain

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrNoMessages       = errors.New("no intercompany message blocks found")
	ErrMalformedMessage = errors.New("malformed intercompany message")
)
