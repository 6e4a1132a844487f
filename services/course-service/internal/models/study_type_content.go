package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StudyType is the kind of generated study material
type StudyType string

const (
	StudyTypeFlashcard StudyType = "Flashcard"
	StudyTypeQuiz      StudyType = "Quiz"
)

// Upper bounds on generated items kept per record
const (
	MaxFlashcards    = 15
	MaxQuizQuestions = 10
)

// ParseStudyType normalizes a caller supplied type name ("flashcard", "Quiz", ...)
func ParseStudyType(s string) (StudyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flashcard", "flashcards":
		return StudyTypeFlashcard, nil
	case "quiz", "quizzes":
		return StudyTypeQuiz, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedStudyType, s)
	}
}

// StudyContentStatus represents the generation status of a study content record
type StudyContentStatus string

const (
	StudyContentStatusGenerating StudyContentStatus = "Generating"
	StudyContentStatusReady      StudyContentStatus = "Ready"
	StudyContentStatusFailed     StudyContentStatus = "Failed"
)

// Flashcard is one front/back card
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizQuestion is one multiple choice question
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// UnmarshalJSON accepts "correctAnswer" as an alias and numeric answers as option indexes
func (q *QuizQuestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Question      string          `json:"question"`
		Options       []string        `json:"options"`
		Answer        json.RawMessage `json:"answer"`
		CorrectAnswer json.RawMessage `json:"correctAnswer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Question = raw.Question
	q.Options = raw.Options

	answer := raw.Answer
	if len(answer) == 0 {
		answer = raw.CorrectAnswer
	}
	if len(answer) == 0 {
		q.Answer = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(answer, &s); err == nil {
		q.Answer = s
		return nil
	}
	idx, err := strconv.Atoi(string(answer))
	if err != nil {
		return fmt.Errorf("invalid quiz answer %s", answer)
	}
	if idx < 0 || idx >= len(q.Options) {
		return fmt.Errorf("quiz answer index %d out of range", idx)
	}
	q.Answer = q.Options[idx]
	return nil
}

// Quiz is a titled list of questions
type Quiz struct {
	Title     string         `json:"quizTitle,omitempty"`
	Questions []QuizQuestion `json:"questions"`
}

// StudyContent is the payload of a study content record.
// Exactly one of Flashcards or Quiz is set, selected by Type.
// It serializes as a bare flashcard array or as a quiz object.
type StudyContent struct {
	Type       StudyType
	Flashcards []Flashcard
	Quiz       *Quiz
}

// NewFlashcardContent wraps flashcards as study content
func NewFlashcardContent(cards []Flashcard) *StudyContent {
	return &StudyContent{Type: StudyTypeFlashcard, Flashcards: cards}
}

// NewQuizContent wraps a quiz as study content
func NewQuizContent(quiz *Quiz) *StudyContent {
	return &StudyContent{Type: StudyTypeQuiz, Quiz: quiz}
}

// MarshalJSON encodes the variant selected by Type
func (c StudyContent) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case StudyTypeFlashcard:
		cards := c.Flashcards
		if cards == nil {
			cards = []Flashcard{}
		}
		return json.Marshal(cards)
	case StudyTypeQuiz:
		if c.Quiz == nil {
			return json.Marshal(Quiz{Questions: []QuizQuestion{}})
		}
		return json.Marshal(c.Quiz)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStudyType, c.Type)
	}
}

// Value implements driver.Valuer for the JSON content column
func (c *StudyContent) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return c.MarshalJSON()
}

// DecodeStudyContent decodes raw JSON into the variant for t.
// Flashcards may also arrive wrapped as {"flashcards": [...]}.
// Empty results are reported as ErrMalformedResponse, oversized ones are truncated.
func DecodeStudyContent(t StudyType, raw []byte) (*StudyContent, error) {
	switch t {
	case StudyTypeFlashcard:
		var cards []Flashcard
		if err := json.Unmarshal(raw, &cards); err != nil {
			var wrapped struct {
				Flashcards []Flashcard `json:"flashcards"`
			}
			if werr := json.Unmarshal(raw, &wrapped); werr != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			cards = wrapped.Flashcards
		}
		if len(cards) == 0 {
			return nil, fmt.Errorf("%w: no flashcards", ErrMalformedResponse)
		}
		if len(cards) > MaxFlashcards {
			cards = cards[:MaxFlashcards]
		}
		return NewFlashcardContent(cards), nil
	case StudyTypeQuiz:
		var quiz Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(quiz.Questions) == 0 {
			return nil, fmt.Errorf("%w: no quiz questions", ErrMalformedResponse)
		}
		if len(quiz.Questions) > MaxQuizQuestions {
			quiz.Questions = quiz.Questions[:MaxQuizQuestions]
		}
		return NewQuizContent(&quiz), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStudyType, t)
	}
}

// StudyTypeContent is a generated flashcard deck or quiz for a course
type StudyTypeContent struct {
	ID        string             `json:"id"`
	CourseID  string             `json:"courseId"`
	Type      StudyType          `json:"type"`
	Content   *StudyContent      `json:"content"`
	Status    StudyContentStatus `json:"status"`
	Error     *string            `json:"error"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// StudyContentRequest represents a request to generate study material for a course
type StudyContentRequest struct {
	CourseID string `json:"courseId"`
	Chapters string `json:"chapters"`
	Type     string `json:"type"`
}
