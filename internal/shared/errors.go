package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDraftSubmitted indicates an attempt to mutate an already submitted draft.
	ErrDraftSubmitted = errors.New("draft already submitted")
	// ErrUnknownDocumentType indicates an unsupported document type.
	ErrUnknownDocumentType = errors.New("unknown document type")
	// ErrMinimumLines indicates the draft would fall below its retained line floor.
	ErrMinimumLines = errors.New("draft cannot drop below its minimum line count")
)
