package services

import (
	"context"
	"sync"
	"time"

	"github.com/studymate/backend/services/course-service/internal/generation"
	"github.com/studymate/backend/services/course-service/internal/jobs"
	"github.com/studymate/backend/services/course-service/internal/models"
)

// mockCourseRepository is a mock implementation of CourseRepository
type mockCourseRepository struct {
	mu         sync.Mutex
	courses    map[string]*models.Course
	stale      []models.Course
	createErr  error
	getErr     error
	readyErr   error
	readyCalls int
	dispatched map[string]time.Time
	getDelay   time.Duration
}

func newMockCourseRepository(courses ...*models.Course) *mockCourseRepository {
	m := &mockCourseRepository{
		courses:    make(map[string]*models.Course),
		dispatched: make(map[string]time.Time),
	}
	for _, c := range courses {
		m.courses[c.CourseID] = c
	}
	return m
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	course.CreatedAt = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	stored := *course
	m.courses[course.CourseID] = &stored
	return nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	if m.getDelay > 0 {
		select {
		case <-time.After(m.getDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return nil, models.ErrCourseNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCourseRepository) MarkReady(ctx context.Context, courseID string) error {
	if m.readyErr != nil {
		return m.readyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readyCalls++
	if c, ok := m.courses[courseID]; ok && c.Status == models.CourseStatusGenerating {
		c.Status = models.CourseStatusReady
	}
	return nil
}

func (m *mockCourseRepository) MarkDispatched(ctx context.Context, courseID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched[courseID] = at
	return nil
}

func (m *mockCourseRepository) ListStaleGenerating(ctx context.Context, olderThan time.Time, limit int) ([]models.Course, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.stale, nil
}

func (m *mockCourseRepository) status(courseID string) models.CourseStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.courses[courseID].Status
}

// mockChapterNoteRepository is a mock implementation of ChapterNoteRepository
type mockChapterNoteRepository struct {
	mu          sync.Mutex
	notes       map[string]map[int]string
	createCalls int
	existsErr   error
	createErr   error
}

func newMockChapterNoteRepository() *mockChapterNoteRepository {
	return &mockChapterNoteRepository{notes: make(map[string]map[int]string)}
}

func (m *mockChapterNoteRepository) Create(ctx context.Context, note *models.ChapterNote) (bool, error) {
	if m.createErr != nil {
		return false, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.notes[note.CourseID] == nil {
		m.notes[note.CourseID] = make(map[int]string)
	}
	if _, ok := m.notes[note.CourseID][note.ChapterID]; ok {
		return false, nil
	}
	m.notes[note.CourseID][note.ChapterID] = note.Notes
	return true, nil
}

func (m *mockChapterNoteRepository) Exists(ctx context.Context, courseID string, chapterID int) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.notes[courseID][chapterID]
	return ok, nil
}

func (m *mockChapterNoteRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ChapterNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChapterNote
	for i := 0; i < len(m.notes[courseID]); i++ {
		out = append(out, models.ChapterNote{CourseID: courseID, ChapterID: i, Notes: m.notes[courseID][i]})
	}
	return out, nil
}

// mockQuotaTracker is a mock implementation of QuotaTracker
type mockQuotaTracker struct {
	consumeErr  error
	activityErr error
	consumed    int
	released    int
	activities  int
}

func (m *mockQuotaTracker) ConsumeDailyCourse(ctx context.Context, email string) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	m.consumed++
	return nil
}

func (m *mockQuotaTracker) ReleaseDailyCourse(ctx context.Context, email string) error {
	m.released++
	return nil
}

func (m *mockQuotaTracker) RecordStudyActivity(ctx context.Context, email string) error {
	m.activities++
	return m.activityErr
}

type mockResponse struct {
	text string
	err  error
	// switchToFallback simulates the client moving to the backup credential during this call
	switchToFallback bool
}

// mockGenerator is a scripted implementation of FallbackGenerator
type mockGenerator struct {
	mu            sync.Mutex
	responses     []mockResponse
	calls         int
	prompts       []string
	requests      []generation.Request
	usingFallback bool
	resets        int
}

func (m *mockGenerator) Complete(ctx context.Context, prompt string, opts ...generation.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var req generation.Request
	for _, opt := range opts {
		opt(&req)
	}
	m.prompts = append(m.prompts, prompt)
	m.requests = append(m.requests, req)

	idx := m.calls
	m.calls++
	if len(m.responses) == 0 {
		return "", &generation.Error{Class: generation.ClassUnknown, Err: generation.ErrEmptyResponse}
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]
	if resp.switchToFallback {
		m.usingFallback = true
	}
	return resp.text, resp.err
}

func (m *mockGenerator) UsingFallback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usingFallback
}

func (m *mockGenerator) ResetToPrimary() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usingFallback = false
	m.resets++
}

type emittedEvent struct {
	name    string
	payload any
}

// mockBus is a mock implementation of jobs.Bus
type mockBus struct {
	events []emittedEvent
	err    error
	// inFlight holds course ids whose notes event is still queued
	inFlight map[string]bool
}

func (m *mockBus) Emit(ctx context.Context, name string, payload any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if p, ok := payload.(models.NotesGeneratePayload); ok && m.inFlight[p.Course.CourseID] {
		return "", jobs.ErrDuplicateEvent
	}
	m.events = append(m.events, emittedEvent{name: name, payload: payload})
	return "event-id", nil
}

// mockStudyContentRepository is a mock implementation of StudyContentRepository
type mockStudyContentRepository struct {
	records   map[string]*models.StudyTypeContent
	createErr error
	resets    int
	// concurrentWinner is stored in place of the caller's write, which then fails with a conflict
	concurrentWinner *models.StudyTypeContent
}

func (m *mockStudyContentRepository) loseRace() error {
	winner := *m.concurrentWinner
	m.records[winner.ID] = &winner
	m.concurrentWinner = nil
	return models.ErrStudyContentConflict
}

func newMockStudyContentRepository(records ...*models.StudyTypeContent) *mockStudyContentRepository {
	m := &mockStudyContentRepository{records: make(map[string]*models.StudyTypeContent)}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *mockStudyContentRepository) Create(ctx context.Context, record *models.StudyTypeContent) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.concurrentWinner != nil {
		return m.loseRace()
	}
	stored := *record
	m.records[record.ID] = &stored
	return nil
}

func (m *mockStudyContentRepository) GetByID(ctx context.Context, id string) (*models.StudyTypeContent, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, models.ErrStudyContentNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockStudyContentRepository) GetByCourseAndType(ctx context.Context, courseID string, studyType models.StudyType) (*models.StudyTypeContent, error) {
	for _, r := range m.records {
		if r.CourseID == courseID && r.Type == studyType {
			copied := *r
			return &copied, nil
		}
	}
	return nil, models.ErrStudyContentNotFound
}

func (m *mockStudyContentRepository) ResetForRegeneration(ctx context.Context, id string) error {
	if m.concurrentWinner != nil {
		return m.loseRace()
	}
	r := m.records[id]
	r.Status = models.StudyContentStatusGenerating
	r.Content = nil
	r.Error = nil
	m.resets++
	return nil
}

func (m *mockStudyContentRepository) MarkReady(ctx context.Context, id string, content *models.StudyContent) error {
	r := m.records[id]
	if r.Status != models.StudyContentStatusGenerating {
		return nil
	}
	r.Status = models.StudyContentStatusReady
	r.Content = content
	r.Error = nil
	return nil
}

func (m *mockStudyContentRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	r := m.records[id]
	if r.Status != models.StudyContentStatusGenerating {
		return nil
	}
	r.Status = models.StudyContentStatusFailed
	r.Content = nil
	r.Error = &reason
	return nil
}

// mockNotifier is a mock implementation of CourseNotifier
type mockNotifier struct {
	notified []string
	err      error
}

func (m *mockNotifier) CourseReady(ctx context.Context, course *models.Course) error {
	m.notified = append(m.notified, course.CourseID)
	return m.err
}

// recordingSleeper records requested sleeps without waiting
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}
