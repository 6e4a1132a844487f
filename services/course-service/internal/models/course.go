package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CourseStatus represents the generation status of a course
type CourseStatus string

const (
	CourseStatusGenerating CourseStatus = "Generating"
	CourseStatusReady      CourseStatus = "Ready"
)

// ChaptersPerCourse is the fixed number of chapters every course layout holds
const ChaptersPerCourse = 3

// Chapter is one chapter of a course outline
type Chapter struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Emoji   string   `json:"emoji"`
	Topics  []string `json:"topics"`
}

// UnmarshalJSON accepts the title and topic shapes the AI provider produces.
// Topics may be plain strings or objects with a "title" or "topic" field.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title        string            `json:"title"`
		ChapterTitle string            `json:"chapterTitle"`
		ChapterName  string            `json:"chapter_title"`
		Summary      string            `json:"summary"`
		Emoji        string            `json:"emoji"`
		Topics       []json.RawMessage `json:"topics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Title = firstNonEmpty(raw.Title, raw.ChapterTitle, raw.ChapterName)
	c.Summary = raw.Summary
	c.Emoji = raw.Emoji
	c.Topics = make([]string, 0, len(raw.Topics))
	for _, t := range raw.Topics {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			c.Topics = append(c.Topics, s)
			continue
		}
		var obj struct {
			Title string `json:"title"`
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(t, &obj); err != nil {
			return fmt.Errorf("invalid topic: %w", err)
		}
		if name := firstNonEmpty(obj.Title, obj.Topic); name != "" {
			c.Topics = append(c.Topics, name)
		}
	}
	return nil
}

// CourseLayout is the AI generated outline stored with a course
type CourseLayout struct {
	CourseTitle string    `json:"courseTitle"`
	Summary     string    `json:"summary"`
	Chapters    []Chapter `json:"chapters"`
}

// Value implements driver.Valuer for the JSON layout column
func (l CourseLayout) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal course layout: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the JSON layout column
func (l *CourseLayout) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = CourseLayout{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported course layout type %T", src)
	}
}

// Course represents a generated course
type Course struct {
	CourseID        string       `json:"courseId"`
	Topic           string       `json:"topic"`
	CourseType      string       `json:"courseType"`
	DifficultyLevel string       `json:"difficultyLevel"`
	Layout          CourseLayout `json:"courseLayout"`
	Status          CourseStatus `json:"status"`
	CreatedBy       string       `json:"createdBy"`
	CreatedAt       time.Time    `json:"createdAt"`
	DispatchedAt    *time.Time   `json:"dispatchedAt,omitempty"`
}

// CreateCourseRequest represents a request to generate a course outline
type CreateCourseRequest struct {
	CourseID        string `json:"courseId"`
	Topic           string `json:"topic"`
	CourseType      string `json:"courseType"`
	DifficultyLevel string `json:"difficultyLevel"`
	CreatedBy       string `json:"createdBy"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
