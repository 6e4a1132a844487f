package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studymate/backend/services/course-service/internal/models"
)

func chapters(n int) []models.Chapter {
	out := make([]models.Chapter, n)
	for i := range out {
		out[i] = models.Chapter{Title: fmt.Sprintf("Chapter %d", i+1), Topics: []string{"t"}}
	}
	return out
}

func TestNormalizeOutline(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 5, 10} {
		t.Run(fmt.Sprintf("%d chapters", n), func(t *testing.T) {
			layout := normalizeOutline(models.CourseLayout{Chapters: chapters(n)}, "Go")

			require.Len(t, layout.Chapters, models.ChaptersPerCourse)
			assert.Equal(t, "Go", layout.CourseTitle)

			kept := min(n, models.ChaptersPerCourse)
			for i := 0; i < kept; i++ {
				assert.Equal(t, fmt.Sprintf("Chapter %d", i+1), layout.Chapters[i].Title)
			}
			for i := kept; i < models.ChaptersPerCourse; i++ {
				padded := layout.Chapters[i]
				assert.Equal(t, fmt.Sprintf("Go - Part %d", i+1), padded.Title)
				assert.Equal(t, "📖", padded.Emoji)
				assert.Equal(t, "Additional concepts and topics for Go", padded.Summary)
				assert.Equal(t, []string{"Advanced concepts", "Practical applications", "Best practices"}, padded.Topics)
			}
		})
	}
}

func TestFallbackOutline(t *testing.T) {
	layout := fallbackOutline("Rust", "Hard")

	require.Len(t, layout.Chapters, 3)
	assert.Equal(t, "Rust", layout.CourseTitle)
	assert.Equal(t, "A comprehensive course on Rust for Hard level students.", layout.Summary)
	assert.Equal(t, "Introduction to Rust", layout.Chapters[0].Title)
	assert.Equal(t, "Intermediate Rust", layout.Chapters[1].Title)
	assert.Equal(t, "Mastering Rust", layout.Chapters[2].Title)
}

func TestParseOutline(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectError bool
		chapters    int
	}{
		{name: "plain json", text: `{"courseTitle":"Go","chapters":[{"title":"A"},{"chapterTitle":"B"}]}`, chapters: 2},
		{name: "fenced json", text: "```json\n{\"courseTitle\":\"Go\",\"chapters\":[{\"title\":\"A\"}]}\n```", chapters: 1},
		{name: "no chapters", text: `{"courseTitle":"Go","chapters":[]}`, expectError: true},
		{name: "not json", text: "I cannot help with that", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := parseOutline(tt.text)
			if tt.expectError {
				assert.ErrorIs(t, err, models.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Len(t, layout.Chapters, tt.chapters)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, "<h1>x</h1>", stripCodeFences("```html\n<h1>x</h1>\n```"))
	assert.Equal(t, "[1]", stripCodeFences("  [1]  "))
	assert.Equal(t, "", stripCodeFences("```"))
}

func TestBuildOutlinePrompt(t *testing.T) {
	prompt := buildOutlinePrompt(&models.CreateCourseRequest{Topic: "Rust Basics", CourseType: "Programming", DifficultyLevel: "Easy"})

	assert.Contains(t, prompt, "Rust Basics")
	assert.Contains(t, prompt, "Programming")
	assert.Contains(t, prompt, "EXACTLY 3 chapters")
}
