package models

import "time"

// MaterialCounts counts ready study material of a course by kind
type MaterialCounts struct {
	Flashcard int `json:"flashcard"`
	Quiz      int `json:"quiz"`
	Notes     int `json:"notes"`
}

// CourseAnalytics is the reconciled progress view of one course
type CourseAnalytics struct {
	CourseID           string         `json:"courseId"`
	TotalChapters      int            `json:"totalChapters"`
	CompletedChapters  int            `json:"completedChapters"`
	ProgressPercentage int            `json:"progressPercentage"`
	EstimatedDuration  string         `json:"estimatedDuration"`
	Rating             float64        `json:"rating"`
	LastStudyTime      string         `json:"lastStudyTime"`
	MaterialCounts     MaterialCounts `json:"materialCounts"`
	CourseStatus       string         `json:"courseStatus"`
	CreatedAt          time.Time      `json:"createdAt"`
	Difficulty         string         `json:"difficulty"`
	HasFlashcards      bool           `json:"hasFlashcards"`
	HasQuiz            bool           `json:"hasQuiz"`
	HasNotes           bool           `json:"hasNotes"`
	Fallback           bool           `json:"fallback,omitempty"`
	UltraFast          bool           `json:"ultraFast,omitempty"`
}

// CourseProgressSnapshot is the raw state the analytics are derived from
type CourseProgressSnapshot struct {
	Course            *Course
	CompletedChapters int
	ReadyFlashcards   int
	ReadyQuizzes      int
}

// JobStepCheckpoint records the output of a completed job step
type JobStepCheckpoint struct {
	EventID   string    `json:"eventId"`
	StepName  string    `json:"stepName"`
	Output    []byte    `json:"output"`
	CreatedAt time.Time `json:"createdAt"`
}
