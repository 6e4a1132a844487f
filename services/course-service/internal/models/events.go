package models

import "time"

// NotesGeneratePayload is the payload of the notes.generate event
type NotesGeneratePayload struct {
	Course Course `json:"course"`
}

// NewNotesGeneratePayload snapshots a course for the notes.generate event.
// Timestamps are left out so every dispatch of one course carries the same payload.
func NewNotesGeneratePayload(course *Course) NotesGeneratePayload {
	snapshot := *course
	snapshot.CreatedAt = time.Time{}
	snapshot.DispatchedAt = nil
	return NotesGeneratePayload{Course: snapshot}
}

// StudyTypeContentPayload is the payload of the studyType.content event
type StudyTypeContentPayload struct {
	StudyType StudyType `json:"studyType"`
	Prompt    string    `json:"prompt"`
	CourseID  string    `json:"courseId"`
	RecordID  string    `json:"recordId"`
}

// UserCreatePayload is the payload of the user.create event
type UserCreatePayload struct {
	User NewUser `json:"user"`
}
