package models

import "errors"

var (
	// ErrInvalidRequest is returned when caller input fails validation
	ErrInvalidRequest = errors.New("invalid request")
	// ErrQuotaExceeded is returned when a user reached the daily course limit
	ErrQuotaExceeded = errors.New("daily course limit reached")
	// ErrUserNotFound is returned when no user matches the requested identity
	ErrUserNotFound = errors.New("user not found")
	// ErrCourseNotFound is returned when no course matches the requested id
	ErrCourseNotFound = errors.New("course not found")
	// ErrStudyContentNotFound is returned when no study content record matches the requested id
	ErrStudyContentNotFound = errors.New("study content not found")
	// ErrUnsupportedStudyType is returned for study types other than flashcards and quizzes
	ErrUnsupportedStudyType = errors.New("unsupported study type")
	// ErrMalformedResponse is returned when AI output cannot be parsed into the expected shape
	ErrMalformedResponse = errors.New("malformed AI response")
	// ErrCourseAlreadyReady is returned when notes are dispatched for a finished course
	ErrCourseAlreadyReady = errors.New("course is already ready")
	// ErrNotesAlreadyQueued is returned when notes generation of a course is still queued or running
	ErrNotesAlreadyQueued = errors.New("notes generation is already queued")
	// ErrStudyContentConflict is returned when another request created or reset the same study content record first
	ErrStudyContentConflict = errors.New("study content changed concurrently")
)
