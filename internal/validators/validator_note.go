package validators

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	FieldBody    = "body"
	FieldTitle   = "title"
	FieldContent = "content"
	FieldTags    = "tags"
)

const (
	MaxTitleLength   = 256
	MaxContentLength = 1 << 20
	MaxTags          = 32
	MaxTagLength     = 64
)

type NoteValidator struct{}

func NewNoteValidator() Validator {
	return &NoteValidator{}
}

// Validate accepts a [models.NoteInput] (or pointer) and a note ID string.
// With no fields every rule of the input is checked.
func (v *NoteValidator) Validate(_ context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.NoteInput:
		return v.validateInput(value, fields...)
	case *models.NoteInput:
		if value == nil {
			return ErrEmptyNote
		}
		return v.validateInput(*value, fields...)
	case string:
		if strings.TrimSpace(value) == "" {
			return ErrEmptyNoteID
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, obj)
	}
}

func (v *NoteValidator) validateInput(in models.NoteInput, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldBody, FieldTitle, FieldContent, FieldTags}
	}

	for _, field := range fields {
		var err error
		switch field {
		case FieldBody:
			if in.IsEmpty() {
				err = ErrEmptyNote
			}
		case FieldTitle:
			if utf8.RuneCountInString(in.Title) > MaxTitleLength {
				err = fmt.Errorf("%w: max %d characters", ErrTitleTooLong, MaxTitleLength)
			}
		case FieldContent:
			if len(in.Content) > MaxContentLength {
				err = fmt.Errorf("%w: max %d bytes", ErrContentTooLong, MaxContentLength)
			}
		case FieldTags:
			err = validateTags(in.Tags)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: max %d", ErrTooManyTags, MaxTags)
	}

	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		switch {
		case strings.TrimSpace(tag) == "":
			return fmt.Errorf("%w: empty tag", ErrInvalidTag)
		case utf8.RuneCountInString(tag) > MaxTagLength:
			return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidTag, tag, MaxTagLength)
		case strings.ContainsAny(tag, ",\n"):
			return fmt.Errorf("%w: %q contains a separator", ErrInvalidTag, tag)
		}
		if _, dup := seen[tag]; dup {
			return fmt.Errorf("%w: %q is repeated", ErrInvalidTag, tag)
		}
		seen[tag] = struct{}{}
	}

	return nil
}
