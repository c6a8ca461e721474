package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyNote      = errors.New("note needs a title or content")
	ErrTitleTooLong   = errors.New("title is too long")
	ErrContentTooLong = errors.New("content is too long")
	ErrTooManyTags    = errors.New("too many tags")
	ErrInvalidTag     = errors.New("invalid tag")
	ErrEmptyNoteID    = errors.New("note ID is required")
)
