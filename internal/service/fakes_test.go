package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lshigami/learning-insight/internal/model"
	"github.com/lshigami/learning-insight/internal/repository"
	"gorm.io/gorm"
)

var errStorageDown = errors.New("connection refused")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeExamRepo struct {
	mu        sync.Mutex
	exams     map[uint]*model.Exam
	questions map[uint][]model.ExamQuestion
	nextID    uint
	err       error
}

func newFakeExamRepo() *fakeExamRepo {
	return &fakeExamRepo{exams: map[uint]*model.Exam{}, questions: map[uint][]model.ExamQuestion{}}
}

func (r *fakeExamRepo) Create(ctx context.Context, exam *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.nextID++
	exam.ID = r.nextID
	for i := range exam.Questions {
		exam.Questions[i].ID = r.nextID*100 + uint(i) + 1
		exam.Questions[i].ExamID = exam.ID
	}
	stored := *exam
	r.exams[exam.ID] = &stored
	r.questions[exam.ID] = append([]model.ExamQuestion(nil), exam.Questions...)
	return nil
}

func (r *fakeExamRepo) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	exam, ok := r.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *exam
	return &copied, nil
}

func (r *fakeExamRepo) FindByJourneyID(ctx context.Context, journeyID uint) (*model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, exam := range r.exams {
		if exam.JourneyID == journeyID {
			copied := *exam
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeExamRepo) FindQuestions(ctx context.Context, examID uint) ([]model.ExamQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]model.ExamQuestion(nil), r.questions[examID]...), nil
}

type registrationKey struct{ userID, examID uint }

type fakeRegistrationRepo struct {
	mu      sync.Mutex
	rows    map[registrationKey]*model.ExamRegistration
	nextID  uint
	creates int
	findErr error
	markErr error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{rows: map[registrationKey]*model.ExamRegistration{}}
}

func (r *fakeRegistrationRepo) FindByUserAndExam(ctx context.Context, userID, examID uint) (*model.ExamRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	row, ok := r.rows[registrationKey{userID, examID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, registration *model.ExamRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registrationKey{registration.UserID, registration.ExamID}
	if _, exists := r.rows[key]; exists {
		return repository.ErrDuplicate
	}
	r.nextID++
	r.creates++
	registration.ID = r.nextID
	stored := *registration
	r.rows[key] = &stored
	return nil
}

func (r *fakeRegistrationRepo) byID(id uint) *model.ExamRegistration {
	for _, row := range r.rows {
		if row.ID == id {
			return row
		}
	}
	return nil
}

func (r *fakeRegistrationRepo) MarkStarted(ctx context.Context, id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return false, r.markErr
	}
	row := r.byID(id)
	if row == nil || row.StartedAt != nil {
		return false, nil
	}
	row.StartedAt = &at
	return true, nil
}

func (r *fakeRegistrationRepo) MarkFinished(ctx context.Context, id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return false, r.markErr
	}
	row := r.byID(id)
	if row == nil || row.FinishedAt != nil {
		return false, nil
	}
	row.FinishedAt = &at
	return true, nil
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions []model.ExamSubmission
	answers     []model.ExamAnswer
	createErr   error
	answersErr  error
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, submission *model.ExamSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *fakeSubmissionRepo) CreateAnswers(ctx context.Context, answers []model.ExamAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.answersErr != nil {
		return r.answersErr
	}
	r.answers = append(r.answers, answers...)
	return nil
}

func (r *fakeSubmissionRepo) FindAllByUserAndExam(ctx context.Context, userID, examID uint) ([]model.ExamSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ExamSubmission
	for _, s := range r.submissions {
		if s.UserID == userID && s.ExamID == examID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmitTime.After(out[j].SubmitTime) })
	return out, nil
}

func (r *fakeSubmissionRepo) FindAllByUser(ctx context.Context, userID uint) ([]model.ExamSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	var out []model.ExamSubmission
	for _, s := range r.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type trackingKey struct{ userID, tutorialID uint }

type fakeTrackingRepo struct {
	mu        sync.Mutex
	tutorials map[uint]model.Tutorial
	records   map[trackingKey]*model.UserActivityTracking
	nextID    uint
	err       error
}

func newFakeTrackingRepo(tutorials ...model.Tutorial) *fakeTrackingRepo {
	r := &fakeTrackingRepo{tutorials: map[uint]model.Tutorial{}, records: map[trackingKey]*model.UserActivityTracking{}}
	for _, t := range tutorials {
		r.tutorials[t.ID] = t
	}
	return r
}

func (r *fakeTrackingRepo) FindTutorial(ctx context.Context, tutorialID uint) (*model.Tutorial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tutorials[tutorialID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *fakeTrackingRepo) CountTutorialsInJourney(ctx context.Context, journeyID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, t := range r.tutorials {
		if t.JourneyID == journeyID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTrackingRepo) CountCompletedTutorials(ctx context.Context, userID, journeyID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	var n int64
	for _, rec := range r.records {
		if rec.UserID == userID && rec.JourneyID != nil && *rec.JourneyID == journeyID && rec.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeTrackingRepo) FindByUserAndTutorial(ctx context.Context, userID, tutorialID uint) (*model.UserActivityTracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[trackingKey{userID, tutorialID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeTrackingRepo) Create(ctx context.Context, record *model.UserActivityTracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	key := trackingKey{record.UserID, record.TutorialID}
	if _, exists := r.records[key]; exists {
		return repository.ErrDuplicate
	}
	r.nextID++
	record.ID = r.nextID
	stored := *record
	r.records[key] = &stored
	return nil
}

func (r *fakeTrackingRepo) Update(ctx context.Context, record *model.UserActivityTracking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	stored := *record
	r.records[trackingKey{record.UserID, record.TutorialID}] = &stored
	return nil
}

func (r *fakeTrackingRepo) userRecords(userID uint) []model.UserActivityTracking {
	var out []model.UserActivityTracking
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastViewedAt.After(out[j].LastViewedAt) })
	return out
}

func (r *fakeTrackingRepo) FindAllByUser(ctx context.Context, userID uint) ([]model.UserActivityTracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.userRecords(userID), nil
}

func (r *fakeTrackingRepo) FindByUserViewedBetween(ctx context.Context, userID uint, start, end time.Time) ([]model.UserActivityTracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []model.UserActivityTracking
	for _, rec := range r.userRecords(userID) {
		if !rec.LastViewedAt.Before(start) && !rec.LastViewedAt.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeTrackingRepo) FindPageByUser(ctx context.Context, userID uint, limit, offset int) ([]model.UserActivityTracking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	all := r.userRecords(userID)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := all[offset:end]
	for i := range page {
		if t, ok := r.tutorials[page[i].TutorialID]; ok {
			tutorial := t
			page[i].Tutorial = &tutorial
		}
	}
	return page, total, nil
}

type fakeSummaryRepo struct {
	mu      sync.Mutex
	rows    map[uint]model.UserProgressSummary
	upserts int
	err     error
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{rows: map[uint]model.UserProgressSummary{}}
}

func (r *fakeSummaryRepo) Upsert(ctx context.Context, summary *model.UserProgressSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.upserts++
	r.rows[summary.UserID] = *summary
	return nil
}

func (r *fakeSummaryRepo) FindByUserID(ctx context.Context, userID uint) (*model.UserProgressSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	row, ok := r.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

type fakeOracle struct{ complete bool }

func (o fakeOracle) IsJourneyComplete(ctx context.Context, userID, journeyID uint) bool {
	return o.complete
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRefresher) RefreshSummary(ctx context.Context, userID uint) (*model.UserProgressSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.UserProgressSummary{UserID: userID}, nil
}
