package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studymate/backend/services/course-service/internal/models"
)

const outlineSystemInstruction = `You design study courses. Reply with a single JSON object of the form
{"courseTitle": string, "summary": string, "chapters": [{"title": string, "summary": string, "emoji": string, "topics": [string]}]}.
Always produce exactly 3 chapters.`

// buildOutlinePrompt asks for a course layout with exactly three chapters
func buildOutlinePrompt(req *models.CreateCourseRequest) string {
	return fmt.Sprintf(
		"Generate a study material for %s for %s and level of difficulty will be %s with summary of course, "+
			"List of Chapters (EXACTLY %d chapters, no more, no less) along with summary and Emoji icon for each chapter, "+
			"Topic list in each chapter, and all result in JSON format. IMPORTANT: Generate exactly %d chapters only.",
		req.Topic, req.CourseType, req.DifficultyLevel, models.ChaptersPerCourse, models.ChaptersPerCourse,
	)
}

// parseOutline decodes an AI generated layout
func parseOutline(text string) (models.CourseLayout, error) {
	var layout models.CourseLayout
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &layout); err != nil {
		return layout, fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)
	}
	if len(layout.Chapters) == 0 {
		return layout, fmt.Errorf("%w: outline has no chapters", models.ErrMalformedResponse)
	}
	return layout, nil
}

// fallbackOutline is the layout used when the AI provider cannot produce one
func fallbackOutline(topic, difficulty string) models.CourseLayout {
	return models.CourseLayout{
		CourseTitle: topic,
		Summary:     fmt.Sprintf("A comprehensive course on %s for %s level students.", topic, difficulty),
		Chapters: []models.Chapter{
			{
				Title:   "Introduction to " + topic,
				Emoji:   "📚",
				Summary: "Basic concepts and fundamentals of " + topic,
				Topics:  []string{"Overview", "Core concepts", "Getting started"},
			},
			{
				Title:   "Intermediate " + topic,
				Emoji:   "🔍",
				Summary: "Deeper exploration of " + topic + " concepts",
				Topics:  []string{"Advanced techniques", "Best practices", "Case studies"},
			},
			{
				Title:   "Mastering " + topic,
				Emoji:   "🚀",
				Summary: "Expert-level knowledge and applications",
				Topics:  []string{"Professional applications", "Future trends", "Final project"},
			},
		},
	}
}

// normalizeOutline trims or pads the chapter list to exactly ChaptersPerCourse entries
func normalizeOutline(layout models.CourseLayout, topic string) models.CourseLayout {
	if layout.CourseTitle == "" {
		layout.CourseTitle = topic
	}

	if len(layout.Chapters) > models.ChaptersPerCourse {
		layout.Chapters = layout.Chapters[:models.ChaptersPerCourse]
	}
	for len(layout.Chapters) < models.ChaptersPerCourse {
		layout.Chapters = append(layout.Chapters, models.Chapter{
			Title:   fmt.Sprintf("%s - Part %d", topic, len(layout.Chapters)+1),
			Emoji:   "📖",
			Summary: "Additional concepts and topics for " + topic,
			Topics:  []string{"Advanced concepts", "Practical applications", "Best practices"},
		})
	}

	for i := range layout.Chapters {
		if layout.Chapters[i].Topics == nil {
			layout.Chapters[i].Topics = []string{}
		}
	}

	return layout
}

// stripCodeFences removes a surrounding markdown code fence such as ```json ... ```
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = ""
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
