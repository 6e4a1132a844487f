package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/models"
	"github.com/studymate/backend/services/course-service/internal/retry"
	"go.uber.org/zap"
)

// Step names of the notes.generate handler
const (
	StepGenerateChapterNotes = "Generate Chapter Notes"
	StepMarkCourseReady      = "Update Course Status to Ready"
	StepNotifyCourseReady    = "Notify Course Ready"
)

const notesSystemInstruction = `You write study notes. Structure every chapter with headings and explanations in HTML.
Example: <h2>Introduction to Atoms</h2><h3>What are atoms?</h3><p>Atoms are the basic building blocks of matter...</p>`

// FallbackGenerator is a Generator with a switchable backup credential
type FallbackGenerator interface {
	Generator
	UsingFallback() bool
	ResetToPrimary()
}

// CourseNotifier tells course owners about finished courses
type CourseNotifier interface {
	CourseReady(ctx context.Context, course *models.Course) error
}

// NotesJobConfig holds the pacing of the notes job
type NotesJobConfig struct {
	// ChapterDelay is waited between two generated chapters
	ChapterDelay time.Duration
	Notify       bool
}

type chapterNotesJob struct {
	courses  CourseRepository
	notes    ChapterNoteRepository
	gen      FallbackGenerator
	runner   *retry.Runner
	sleep    retry.Sleeper
	notifier CourseNotifier
	cfg      NotesJobConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewChapterNotesJob creates the notes.generate handler
func NewChapterNotesJob(
	courses CourseRepository,
	notes ChapterNoteRepository,
	gen FallbackGenerator,
	runner *retry.Runner,
	sleep retry.Sleeper,
	notifier CourseNotifier,
	cfg NotesJobConfig,
	logger *zap.Logger,
) *chapterNotesJob {
	if sleep == nil {
		sleep = retry.Sleep
	}
	return &chapterNotesJob{
		courses:  courses,
		notes:    notes,
		gen:      gen,
		runner:   runner,
		sleep:    sleep,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Handle generates the notes of every chapter in order and then marks the course Ready.
// A chapter whose generation keeps failing gets fallback notes, the job itself does not fail on AI errors.
func (j *chapterNotesJob) Handle(ctx context.Context, run *jobs.Run) error {
	var payload models.NotesGeneratePayload
	if err := run.Decode(&payload); err != nil {
		return err
	}
	courseID := payload.Course.CourseID
	if courseID == "" {
		return jobs.Permanent(fmt.Errorf("notes event without course id"))
	}

	// the stored row is authoritative, the payload may be a stale snapshot
	current, err := j.courses.GetByID(ctx, courseID)
	if errors.Is(err, models.ErrCourseNotFound) {
		j.logger.Warn("Course of notes event no longer exists", zap.String("course_id", courseID))
		return nil
	}
	if err != nil {
		return err
	}
	// a redelivered event resumes its remaining checkpointed steps
	if current.Status == models.CourseStatusReady && run.Attempt == 0 {
		j.logger.Info("Course already ready, skipping notes generation", zap.String("course_id", courseID))
		return nil
	}
	course := *current

	if err := run.Step(ctx, StepGenerateChapterNotes, func(ctx context.Context) error {
		return j.generateChapters(ctx, &course)
	}); err != nil {
		return err
	}

	if err := run.Step(ctx, StepMarkCourseReady, func(ctx context.Context) error {
		return j.courses.MarkReady(ctx, course.CourseID)
	}); err != nil {
		return err
	}

	if !j.cfg.Notify || j.notifier == nil {
		return nil
	}
	return run.Step(ctx, StepNotifyCourseReady, func(ctx context.Context) error {
		if err := j.notifier.CourseReady(ctx, &course); err != nil {
			j.logger.Warn("Failed to send course ready notification", zap.String("course_id", course.CourseID), zap.Error(err))
		}
		return nil
	})
}

func (j *chapterNotesJob) generateChapters(ctx context.Context, course *models.Course) error {
	generated := 0
	for index, chapter := range course.Layout.Chapters {
		exists, err := j.notes.Exists(ctx, course.CourseID, index)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if generated > 0 {
			if err := j.sleep(ctx, j.cfg.ChapterDelay); err != nil {
				return err
			}
		}

		notes, err := j.chapterNotes(ctx, course, chapter)
		if err != nil {
			return err
		}

		created, err := j.notes.Create(ctx, &models.ChapterNote{
			CourseID:  course.CourseID,
			ChapterID: index,
			Notes:     notes,
		})
		if err != nil {
			return err
		}
		if !created {
			j.logger.Info("Chapter note already stored by a concurrent run",
				zap.String("course_id", course.CourseID),
				zap.Int("chapter_id", index),
			)
		}
		generated++

		// keeps the stale course sweeper away while chapters are still being written
		if err := j.courses.MarkDispatched(ctx, course.CourseID, j.now()); err != nil {
			j.logger.Warn("Failed to refresh notes dispatch time", zap.String("course_id", course.CourseID), zap.Error(err))
		}
	}

	return nil
}

// chapterNotes returns AI generated notes or, when generation gives up, fallback notes.
// Only context cancellation is returned as an error.
func (j *chapterNotesJob) chapterNotes(ctx context.Context, course *models.Course, chapter models.Chapter) (string, error) {
	prompt, err := buildNotesPrompt(course.CourseType, chapter)
	if err != nil {
		return "", err
	}

	text, err := j.runner.Do(ctx, func(ctx context.Context) (string, error) {
		return j.gen.Complete(ctx, prompt, generation.WithSystemInstruction(notesSystemInstruction))
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		j.logger.Warn("Chapter generation gave up, storing fallback notes",
			zap.String("course_id", course.CourseID),
			zap.String("chapter", chapter.Title),
			zap.Stringer("class", generation.ClassOf(err)),
			zap.Error(err),
		)
		return fallbackChapterNotes(chapter), nil
	}

	if j.gen.UsingFallback() {
		j.gen.ResetToPrimary()
	}

	return stripCodeFences(text), nil
}

// buildNotesPrompt embeds the chapter as JSON into the notes prompt
func buildNotesPrompt(courseType string, chapter models.Chapter) (string, error) {
	chapterJSON, err := json.Marshal(chapter)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chapter: %w", err)
	}

	return "Generate " + courseType + " material detail content for each chapter. " +
		"Make sure to give notes for each topic from the chapters, " +
		"include code examples if applicable inside <precode> tags, " +
		"highlight key points, and style each tag appropriately. " +
		"Provide the response in HTML format (Do not include <html>, <head>, <body>, or <title> tags). " +
		"The chapter content is: " + string(chapterJSON), nil
}

var technicalTitleWords = []string{"programming", "code", "development", "machine learning"}

var technicalTopicWords = []string{"code", "algorithm"}

// fallbackChapterNotes builds deterministic HTML notes from the chapter outline
func fallbackChapterNotes(chapter models.Chapter) string {
	title := html.EscapeString(chapter.Title)

	var b strings.Builder
	b.WriteString(`<div class="chapter-content">` + "\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&b, `<p class="summary"><strong>Summary:</strong> %s</p>`+"\n", html.EscapeString(chapter.Summary))
	b.WriteString(`<div class="topics">` + "\n")

	technicalTitle := containsAny(chapter.Title, technicalTitleWords)
	for _, topic := range chapter.Topics {
		t := html.EscapeString(topic)
		b.WriteString(`<div class="topic">` + "\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", t)
		fmt.Fprintf(&b, "<p>This section covers key concepts related to %s in the context of %s.</p>\n", t, title)
		b.WriteString(`<div class="key-points">` + "\n<h3>Key Points:</h3>\n<ul>\n")
		fmt.Fprintf(&b, "<li>Understanding the fundamentals of %s</li>\n", t)
		fmt.Fprintf(&b, "<li>How %s relates to %s</li>\n", t, title)
		fmt.Fprintf(&b, "<li>Practical applications of %s</li>\n", t)
		b.WriteString("</ul>\n</div>\n")

		if technicalTitle || containsAny(topic, technicalTopicWords) {
			b.WriteString(`<div class="code-example">` + "\n<h3>Example:</h3>\n<precode>\n")
			fmt.Fprintf(&b, "// Example code for %s\n", t)
			fmt.Fprintf(&b, "function example%s() {\n", html.EscapeString(strings.Join(strings.Fields(topic), "")))
			fmt.Fprintf(&b, "  console.log(\"This is a placeholder for %s code example\");\n", t)
			b.WriteString("  return \"Example result\";\n}\n</precode>\n</div>\n")
		}

		b.WriteString("</div>\n")
	}

	b.WriteString("</div>\n</div>\n")
	return b.String()
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
