package apperr

import "errors"

var (
	ErrNoNarration   = errors.New("no narration text")
	ErrSessionClosed = errors.New("audio session closed")
)
