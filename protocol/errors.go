package protocol

import "errors"

var (
	ErrInvalidText       = errors.New("inbound bytes are not valid UTF-8")
	ErrUnexpectedRequest = errors.New("unexpected request")
	ErrFrameTooLarge     = errors.New("frame too large")
)
