package models

import "errors"

var (
	// ErrNotFound is wrapped by lookups of unknown task, subtask, project
	// or entry ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is wrapped when a request body is structurally unusable:
	// malformed JSON, a non-object payload, or a bad id list.
	ErrInvalid = errors.New("invalid request")
)
