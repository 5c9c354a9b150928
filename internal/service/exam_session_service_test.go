package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/learning-insight/config"
	"github.com/lshigami/learning-insight/internal/dto"
	"github.com/lshigami/learning-insight/internal/model"
)

const (
	testUserID = uint(7)
	testExamID = uint(1)
)

type sessionFixture struct {
	svc           *examSessionService
	clock         *fakeClock
	exams         *fakeExamRepo
	registrations *fakeRegistrationRepo
	submissions   *fakeSubmissionRepo
	refresher     *fakeRefresher
}

func newSessionFixture(oracleComplete bool, examCfg config.Exam) *sessionFixture {
	passing := 80
	f := &sessionFixture{
		clock:         newFakeClock(),
		exams:         newFakeExamRepo(),
		registrations: newFakeRegistrationRepo(),
		submissions:   &fakeSubmissionRepo{},
		refresher:     &fakeRefresher{},
	}
	f.exams.exams[testExamID] = &model.Exam{ID: testExamID, JourneyID: 3, Title: "Final Exam", DurationSeconds: 600, PassingScore: &passing}
	f.exams.questions[testExamID] = fiveQuestions()
	f.svc = &examSessionService{
		examRepo:         f.exams,
		registrationRepo: f.registrations,
		submissionRepo:   f.submissions,
		oracle:           fakeOracle{complete: oracleComplete},
		summary:          f.refresher,
		cfg:              examCfg,
		now:              f.clock.now,
	}
	return f
}

func defaultExamConfig() config.Exam {
	return config.Exam{DefaultPassingScore: 70, LateGraceSeconds: 30, LateSubmissionPolicy: config.LatePolicyReject}
}

func fourOfFive() []dto.SubmittedAnswerDTO {
	return []dto.SubmittedAnswerDTO{answer(1, "a1"), answer(2, "b2"), answer(3, "c3"), answer(4, "d4"), answer(5, "b5")}
}

func assertKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s error, got nil", kind)
	}
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected *Error, got %T: %v", err, err)
	}
	if svcErr.Kind != kind {
		t.Fatalf("Expected kind %s, got %s (%v)", kind, svcErr.Kind, err)
	}
	return svcErr
}

func TestStartSessionCreatesRegistration(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())

	session, err := f.svc.StartOrResumeSession(context.Background(), testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.Resumed {
		t.Error("Expected a fresh session not to be marked resumed")
	}
	if session.Exam.RemainingSeconds != 600 || session.Exam.ElapsedSeconds != 0 {
		t.Errorf("Expected 600s remaining and 0 elapsed, got %d / %d", session.Exam.RemainingSeconds, session.Exam.ElapsedSeconds)
	}
	if session.Exam.TotalQuestions != 5 || len(session.Questions) != 5 {
		t.Errorf("Expected 5 questions, got %d / %d", session.Exam.TotalQuestions, len(session.Questions))
	}
	if session.Exam.PassingScore != 80 {
		t.Errorf("Expected passing score 80, got %d", session.Exam.PassingScore)
	}
	if !session.Exam.StartedAt.Equal(f.clock.now()) {
		t.Errorf("Expected started_at %v, got %v", f.clock.now(), session.Exam.StartedAt)
	}
	for i, q := range session.Questions {
		if q.QuestionNo != i+1 || q.QuestionID == 0 || q.OptionA == "" {
			t.Errorf("Unexpected question payload at %d: %+v", i, q)
		}
	}
	if f.registrations.creates != 1 {
		t.Errorf("Expected 1 registration, got %d", f.registrations.creates)
	}
}

func TestStartSessionIsIdempotent(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	first, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.clock.advance(2 * time.Second)
	second, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !first.Exam.StartedAt.Equal(second.Exam.StartedAt) {
		t.Errorf("Expected started_at to stay %v, got %v", first.Exam.StartedAt, second.Exam.StartedAt)
	}
	if second.Resumed {
		t.Error("Expected a start within 5 seconds not to be a resume")
	}

	f.clock.advance(98 * time.Second)
	third, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !third.Resumed || third.Exam.RemainingSeconds != 500 || third.Exam.ElapsedSeconds != 100 {
		t.Errorf("Expected resumed with 500s remaining, got %+v resumed=%v", third.Exam, third.Resumed)
	}
	if f.registrations.creates != 1 {
		t.Errorf("Expected a single registration, got %d", f.registrations.creates)
	}
}

func TestStartSessionRemainingIsMonotonic(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	previous := 601
	for i := 0; i < 10; i++ {
		session, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
		if err != nil {
			t.Fatalf("Unexpected error at step %d: %v", i, err)
		}
		if session.Exam.RemainingSeconds > previous {
			t.Fatalf("Remaining time increased from %d to %d", previous, session.Exam.RemainingSeconds)
		}
		previous = session.Exam.RemainingSeconds
		f.clock.advance(37 * time.Second)
	}
}

func TestStartSessionExpired(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	if _, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.clock.advance(600 * time.Second)

	_, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	svcErr := assertKind(t, err, KindExpired)
	if svcErr.Data["time_expired"] != true || svcErr.Data["elapsed_seconds"] != 600 {
		t.Errorf("Expected expiry data, got %+v", svcErr.Data)
	}
	if _, ok := svcErr.Data["started_at"].(time.Time); !ok {
		t.Errorf("Expected started_at in expiry data, got %+v", svcErr.Data)
	}
}

func TestStartSessionErrors(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(f *sessionFixture)
		enforce bool
		oracle  bool
		want    ErrorKind
	}{
		{"exam missing", func(f *sessionFixture) { delete(f.exams.exams, testExamID) }, false, true, KindNotFound},
		{"exam without questions", func(f *sessionFixture) { f.exams.questions[testExamID] = nil }, false, true, KindNotFound},
		{"storage down", func(f *sessionFixture) { f.exams.err = errStorageDown }, false, true, KindStorage},
		{"prerequisites enforced", func(f *sessionFixture) {}, true, false, KindForbidden},
		{"registration read fails", func(f *sessionFixture) { f.registrations.findErr = errStorageDown }, false, true, KindStorage},
		{"start time write fails", func(f *sessionFixture) { f.registrations.markErr = errStorageDown }, false, true, KindStorage},
		{"already completed", func(f *sessionFixture) {
			finished := f.clock.now()
			started := finished.Add(-time.Minute)
			f.registrations.rows[registrationKey{testUserID, testExamID}] = &model.ExamRegistration{ID: 1, UserID: testUserID, ExamID: testExamID, StartedAt: &started, FinishedAt: &finished}
		}, false, true, KindInvalidState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultExamConfig()
			cfg.EnforcePrerequisites = tc.enforce
			f := newSessionFixture(tc.oracle, cfg)
			tc.setup(f)

			_, err := f.svc.StartOrResumeSession(context.Background(), testExamID, testUserID)
			assertKind(t, err, tc.want)
		})
	}
}

func TestStartSessionUnmetPrerequisitesAllowedByDefault(t *testing.T) {
	f := newSessionFixture(false, defaultExamConfig())

	if _, err := f.svc.StartOrResumeSession(context.Background(), testExamID, testUserID); err != nil {
		t.Fatalf("Expected access without enforcement, got %v", err)
	}
	row := f.registrations.rows[registrationKey{testUserID, testExamID}]
	if row.PrerequisitesMet {
		t.Error("Expected the registration to record unmet prerequisites")
	}
}

func TestStartSessionConcurrentCallsShareOneRegistration(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	starts := make([]time.Time, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
			errs[i] = err
			if err == nil {
				starts[i] = session.Exam.StartedAt
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Caller %d failed: %v", i, err)
		}
		if !starts[i].Equal(starts[0]) {
			t.Errorf("Caller %d saw started_at %v, expected %v", i, starts[i], starts[0])
		}
	}
	if len(f.registrations.rows) != 1 || f.registrations.creates != 1 {
		t.Errorf("Expected exactly one registration row, got %d rows / %d creates", len(f.registrations.rows), f.registrations.creates)
	}
}

func TestSubmitSessionScoresAndPersists(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	if _, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f.clock.advance(300 * time.Second)

	clientDuration := 9999
	result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive(), DurationSeconds: &clientDuration})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Score != 80 || result.CorrectAnswers != 4 || result.TotalQuestions != 5 {
		t.Errorf("Expected 80 (4/5), got %d (%d/%d)", result.Score, result.CorrectAnswers, result.TotalQuestions)
	}
	if !result.Passed {
		t.Error("Expected a score equal to the passing score to pass")
	}
	if result.DurationSeconds == nil || *result.DurationSeconds != 300 {
		t.Errorf("Expected server duration 300, got %v", result.DurationSeconds)
	}
	if result.SubmissionID == nil {
		t.Fatal("Expected a submission id")
	}
	if result.IsLate {
		t.Error("Expected an on-time submission")
	}

	if len(f.submissions.submissions) != 1 {
		t.Fatalf("Expected 1 submission row, got %d", len(f.submissions.submissions))
	}
	stored := f.submissions.submissions[0]
	if stored.DurationSeconds != 300 || *stored.ClientDurationSeconds != 9999 || stored.Score != 80 {
		t.Errorf("Unexpected stored submission: %+v", stored)
	}
	if len(f.submissions.answers) != 5 {
		t.Errorf("Expected 5 answer rows, got %d", len(f.submissions.answers))
	}
	if f.refresher.calls != 1 {
		t.Errorf("Expected 1 summary refresh, got %d", f.refresher.calls)
	}
	row := f.registrations.rows[registrationKey{testUserID, testExamID}]
	if row.FinishedAt == nil {
		t.Error("Expected the registration to be closed")
	}
}

func TestSubmitSessionFailsBelowPassingScore(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)

	result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: []dto.SubmittedAnswerDTO{}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Score != 0 || result.Passed || len(result.Results) != 0 {
		t.Errorf("Expected an empty failing result, got %+v", result)
	}
}

func TestSubmitSessionUsesDefaultPassingScore(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	f.exams.exams[testExamID].PassingScore = nil
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)

	answers := []dto.SubmittedAnswerDTO{answer(1, "a1"), answer(2, "b2"), answer(3, "c3"), answer(4, "x"), answer(5, "x")}
	result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: answers})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.PassingScore != 70 || result.Score != 60 || result.Passed {
		t.Errorf("Expected 60 to fail against default 70, got %+v", result)
	}
}

func TestSubmitSessionTwiceIsRejected(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)

	if _, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})
	assertKind(t, err, KindInvalidState)
	if len(f.submissions.submissions) != 1 {
		t.Errorf("Expected the second submission not to create a row, got %d rows", len(f.submissions.submissions))
	}

	_, err = f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	assertKind(t, err, KindInvalidState)
}

func TestSubmitSessionConcurrentSubmitsCreateOneRow(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || len(f.submissions.submissions) != 1 {
		t.Errorf("Expected exactly one accepted submission, got %d accepted / %d rows", succeeded, len(f.submissions.submissions))
	}
}

func TestSubmitSessionGuards(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(f *sessionFixture)
		req   dto.ExamSubmitDTO
		want  ErrorKind
	}{
		{"answers missing", func(f *sessionFixture) {}, dto.ExamSubmitDTO{}, KindBadRequest},
		{"exam missing", func(f *sessionFixture) { delete(f.exams.exams, testExamID) }, dto.ExamSubmitDTO{Answers: fourOfFive()}, KindNotFound},
		{"no questions", func(f *sessionFixture) { f.exams.questions[testExamID] = nil }, dto.ExamSubmitDTO{Answers: fourOfFive()}, KindInvalidState},
		{"never started", func(f *sessionFixture) {}, dto.ExamSubmitDTO{Answers: fourOfFive()}, KindInvalidState},
		{"registered but not started", func(f *sessionFixture) {
			f.registrations.rows[registrationKey{testUserID, testExamID}] = &model.ExamRegistration{ID: 1, UserID: testUserID, ExamID: testExamID}
		}, dto.ExamSubmitDTO{Answers: fourOfFive()}, KindInvalidState},
		{"registration read fails", func(f *sessionFixture) { f.registrations.findErr = errStorageDown }, dto.ExamSubmitDTO{Answers: fourOfFive()}, KindStorage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(true, defaultExamConfig())
			tc.setup(f)
			_, err := f.svc.SubmitSession(context.Background(), testExamID, testUserID, tc.req)
			assertKind(t, err, tc.want)
			if len(f.submissions.submissions) != 0 {
				t.Errorf("Expected no submission rows, got %d", len(f.submissions.submissions))
			}
		})
	}
}

func TestSubmitSessionLatePolicy(t *testing.T) {
	testCases := []struct {
		name     string
		policy   string
		after    time.Duration
		wantKind ErrorKind
		wantLate bool
	}{
		{"within grace", config.LatePolicyReject, 620 * time.Second, "", false},
		{"late rejected", config.LatePolicyReject, 700 * time.Second, KindExpired, false},
		{"late flagged", config.LatePolicyFlag, 700 * time.Second, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultExamConfig()
			cfg.LateSubmissionPolicy = tc.policy
			f := newSessionFixture(true, cfg)
			ctx := context.Background()
			f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
			f.clock.advance(tc.after)

			result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})
			if tc.wantKind != "" {
				svcErr := assertKind(t, err, tc.wantKind)
				if len(f.submissions.submissions) != 1 {
					t.Fatalf("Expected the rejected attempt to be stored, got %d rows", len(f.submissions.submissions))
				}
				stored := f.submissions.submissions[0]
				if !stored.IsLate || stored.IsPassed || stored.Score != 0 {
					t.Errorf("Expected an auto-failed late row, got %+v", stored)
				}
				if id, ok := svcErr.Data["submission_id"].(*uint); !ok || id == nil || *id != stored.ID {
					t.Errorf("Expected submission_id %d in error data, got %v", stored.ID, svcErr.Data["submission_id"])
				}
				if f.refresher.calls != 1 {
					t.Errorf("Expected summary refresh after a rejected attempt, got %d calls", f.refresher.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.IsLate != tc.wantLate || f.submissions.submissions[0].IsLate != tc.wantLate {
				t.Errorf("Expected is_late=%v, got %v", tc.wantLate, result.IsLate)
			}
		})
	}
}

func TestExpiredSessionSubmitRecordsFailedAttempt(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()

	if _, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID); err != nil {
		t.Fatalf("Unexpected start error: %v", err)
	}
	f.clock.advance(650 * time.Second)

	_, err := f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	assertKind(t, err, KindExpired)

	_, err = f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})
	assertKind(t, err, KindExpired)

	_, err = f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	assertKind(t, err, KindInvalidState)

	submissions, err := f.svc.ListSubmissions(ctx, testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected list error: %v", err)
	}
	if len(submissions) != 1 {
		t.Fatalf("Expected the expired attempt to be listed, got %d", len(submissions))
	}
	if got := submissions[0]; !got.IsLate || got.IsPassed || got.Score != 0 {
		t.Errorf("Expected a late failed submission, got %+v", got)
	}
}

func TestSubmitSessionStorageFailureStillReturnsScore(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	f.submissions.createErr = errStorageDown

	result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})
	if err != nil {
		t.Fatalf("Expected best-effort persistence, got %v", err)
	}
	if result.Score != 80 || !result.Passed {
		t.Errorf("Expected score 80 passed, got %d passed=%v", result.Score, result.Passed)
	}
	if result.SubmissionID != nil {
		t.Errorf("Expected a nil submission id, got %v", *result.SubmissionID)
	}
	if f.refresher.calls != 0 {
		t.Error("Expected no summary refresh without a stored submission")
	}
}

func TestSubmitSessionAnswerAndSummaryFailuresAreIgnored(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	f.submissions.answersErr = errStorageDown
	f.refresher.err = errStorageDown

	result, err := f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.SubmissionID == nil {
		t.Error("Expected the submission id even when answers could not be stored")
	}
}

func TestListSubmissionsAndJourneyExam(t *testing.T) {
	f := newSessionFixture(true, defaultExamConfig())
	ctx := context.Background()
	f.svc.StartOrResumeSession(ctx, testExamID, testUserID)
	f.clock.advance(42 * time.Second)
	f.svc.SubmitSession(ctx, testExamID, testUserID, dto.ExamSubmitDTO{Answers: fourOfFive()})

	list, err := f.svc.ListSubmissions(ctx, testExamID, testUserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].SubmissionID != 1 || list[0].Score != 80 || list[0].DurationSeconds != 42 {
		t.Errorf("Unexpected submission list: %+v", list)
	}

	_, err = f.svc.ListSubmissions(ctx, 99, testUserID)
	assertKind(t, err, KindNotFound)

	journeyExam, err := f.svc.GetJourneyExam(ctx, 3)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if journeyExam.ExamID != testExamID || journeyExam.ExamTitle != "Final Exam" {
		t.Errorf("Unexpected journey exam: %+v", journeyExam)
	}
	_, err = f.svc.GetJourneyExam(ctx, 404)
	assertKind(t, err, KindNotFound)
}
