package models

import "time"

// ChapterNote holds the generated HTML notes of one chapter of a course
type ChapterNote struct {
	ID        int       `json:"id"`
	CourseID  string    `json:"courseId"`
	ChapterID int       `json:"chapterId"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}
