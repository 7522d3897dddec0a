package message

import "errors"

var (
	ErrSystemMessage  = errors.New("system messages cannot be modified")
	ErrNotAuthor      = errors.New("only the author may modify this message")
	ErrEmptyMessage   = errors.New("message content or attachment required")
	ErrContentTooLong = errors.New("message content exceeds 5000 characters")
	ErrDeleted        = errors.New("message has been deleted")
)
