package main

import (
	"database/sql"

	"github.com/studymate/backend/libs/config"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/notify"
	"github.com/studymate/backend/services/course-service/internal/repositories"
	"github.com/studymate/backend/services/course-service/internal/retry"
	"github.com/studymate/backend/services/course-service/internal/services"
	"go.uber.org/zap"
)

// NewWorker wires the job handlers of every catalog event into a dispatcher
func NewWorker(cfg *config.Config, db *sql.DB, bus jobs.Bus, gen services.FallbackGenerator, logger *zap.Logger) (*jobs.Dispatcher, error) {
	courseRepo := repositories.NewCourseRepository(db)
	noteRepo := repositories.NewChapterNoteRepository(db)
	studyContentRepo := repositories.NewStudyTypeContentRepository(db)
	userRepo := repositories.NewUserRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.Generation.MaxRetries
	policy.Pause = cfg.Generation.RetryPause
	runner := retry.NewRunner(policy, retry.Sleep, logger)

	var notifier services.CourseNotifier = notify.NopNotifier{}
	if cfg.SMTP.NotifyCourseReady {
		notifier = notify.NewMailNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	notesJob := services.NewChapterNotesJob(courseRepo, noteRepo, gen, runner, retry.Sleep, notifier, services.NotesJobConfig{
		ChapterDelay: cfg.Generation.ChapterDelay,
		Notify:       cfg.SMTP.NotifyCourseReady,
	}, logger)
	studyContentService := services.NewStudyContentService(studyContentRepo, courseRepo, gen, bus, logger)
	userService := services.NewUserService(userRepo, bus, logger)

	dispatcher := jobs.NewDispatcher(checkpointRepo, logger)
	if err := dispatcher.Register(jobs.EventNotesGenerate, notesJob.Handle); err != nil {
		return nil, err
	}
	if err := dispatcher.Register(jobs.EventStudyTypeContent, studyContentService.Handle); err != nil {
		return nil, err
	}
	if err := dispatcher.Register(jobs.EventUserCreate, userService.Handle); err != nil {
		return nil, err
	}

	return dispatcher, nil
}
