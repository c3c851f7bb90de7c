package service

import (
	"fmt"
	"testing"
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory implementation of every store interface the
// assessment flow needs. It mirrors the repository contracts: record-not-found
// surfaces as gorm.ErrRecordNotFound, duplicate answers and stale lock
// versions as their conflict sentinels.
type memStore struct {
	templates map[string]*model.AssessmentTemplate
	sessions  map[string]*model.AssessmentSession
	answers   []model.UserAnswer
	results   map[string]*model.TestResult
	users     map[uint]*model.User

	// tamperOnFind, when set, runs once after the next session load to
	// simulate a concurrent writer between load and save.
	tamperOnFind func(id string)
}

func newMemStore() *memStore {
	return &memStore{
		templates: map[string]*model.AssessmentTemplate{},
		sessions:  map[string]*model.AssessmentSession{},
		results:   map[string]*model.TestResult{},
		users:     map[uint]*model.User{},
	}
}

func (m *memStore) FindActiveByType(testType string) (*model.AssessmentTemplate, error) {
	for _, t := range m.templates {
		if t.TestType == testType && t.IsActive {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) FindByID(id string) (*model.AssessmentTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memStore) ListActive() ([]model.AssessmentTemplate, error) {
	var out []model.AssessmentTemplate
	for _, t := range m.templates {
		if t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memStore) Create(s *model.AssessmentSession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memStore) FindSessionByID(id string) (*model.AssessmentSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	if m.tamperOnFind != nil {
		tamper := m.tamperOnFind
		m.tamperOnFind = nil
		tamper(id)
	}
	return &copied, nil
}

func (m *memStore) FindActive(userID uint, templateID string) (*model.AssessmentSession, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.TemplateID == templateID && s.Status == model.SessionInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) HasActive(userID uint, templateID string) (bool, error) {
	_, err := m.FindActive(userID, templateID)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memStore) Save(s *model.AssessmentSession) error {
	stored, ok := m.sessions[s.ID]
	if !ok || stored.LockVersion != s.LockVersion {
		return util.ErrConcurrentUpdate
	}
	s.LockVersion++
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memStore) AppendAnswerAndAdvance(s *model.AssessmentSession, a *model.UserAnswer) error {
	if err := m.Append(a); err != nil {
		return err
	}
	if err := m.Save(s); err != nil {
		m.answers = m.answers[:len(m.answers)-1]
		return err
	}
	return nil
}

func (m *memStore) FindByUser(userID uint) ([]model.AssessmentSession, error) {
	var out []model.AssessmentSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) FindStaleInProgress(cutoff time.Time) ([]model.AssessmentSession, error) {
	var out []model.AssessmentSession
	for _, s := range m.sessions {
		if s.Status == model.SessionInProgress && s.StartedAt.Before(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) Append(a *model.UserAnswer) error {
	for _, existing := range m.answers {
		if existing.SessionID == a.SessionID && existing.QuestionID == a.QuestionID {
			return util.ErrDuplicateAnswer
		}
	}
	m.answers = append(m.answers, *a)
	return nil
}

func (m *memStore) ListBySession(sessionID string) ([]model.UserAnswer, error) {
	var out []model.UserAnswer
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CreateResult(r *model.TestResult) error {
	if _, exists := m.results[r.SessionID]; exists {
		return fmt.Errorf("duplicate result for session %s", r.SessionID)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now()
	copied := *r
	m.results[r.SessionID] = &copied
	return nil
}

func (m *memStore) FindBySessionID(sessionID string) (*model.TestResult, error) {
	r, ok := m.results[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *memStore) FindResultsByUser(userID uint) ([]model.TestResult, error) {
	var out []model.TestResult
	for _, r := range m.results {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) FindUserByID(id uint) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

// Interface adapters: the store interfaces overlap on method names, so each
// gets a thin view over the shared memStore.
type sessionView struct{ *memStore }

func (v sessionView) FindByID(id string) (*model.AssessmentSession, error) {
	return v.FindSessionByID(id)
}

type resultView struct{ *memStore }

func (v resultView) Create(r *model.TestResult) error { return v.CreateResult(r) }
func (v resultView) FindByUser(userID uint) ([]model.TestResult, error) {
	return v.FindResultsByUser(userID)
}

type userView struct{ *memStore }

func (v userView) FindByID(id uint) (*model.User, error) { return v.FindUserByID(id) }

func newTestService(t *testing.T) (*AssessmentService, *memStore, *model.AssessmentTemplate) {
	t.Helper()
	store := newMemStore()

	tmpl := mbtiTestTemplate(t)
	tmpl.ID = "tmpl-mbti"
	tmpl.IsActive = true
	require.NoError(t, tmpl.SetResultTypes(map[string]model.ResultType{
		"ENTJ": {Title: "ENTJ", Nickname: "The Commander", Strengths: []string{"Leadership"}},
	}))
	store.templates[tmpl.ID] = tmpl

	store.users[1] = &model.User{FullName: "Test User", Email: "user@example.com", IsActive: true}
	store.users[1].ID = 1

	svc := NewAssessmentService(store, sessionView{store}, store, resultView{store}, userView{store})
	return svc, store, tmpl
}

func TestStartAssessment_CreatesSession(t *testing.T) {
	svc, store, tmpl := newTestService(t)

	resp, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "MBTI", resp.TestType)
	assert.Equal(t, 1, resp.CurrentQuestion)
	require.NotNil(t, resp.FirstQuestion)
	assert.Equal(t, "q1", resp.FirstQuestion.ID)

	stored := store.sessions[resp.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, model.SessionInProgress, stored.Status)
	assert.Equal(t, tmpl.ID, stored.TemplateID)
}

func TestStartAssessment_QuestionProjectionHidesWeights(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	require.NotNil(t, resp.FirstQuestion)
	require.Len(t, resp.FirstQuestion.Options, 2)
	assert.Equal(t, "a", resp.FirstQuestion.Options[0].ID)
}

func TestStartAssessment_SecondStartConflicts(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.StartAssessment(1, "MBTI")
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrConflict)
}

func TestStartAssessment_UnknownTemplate(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartAssessment(1, "NO_SUCH_TEST")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestStartAssessment_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.StartAssessment(99, "MBTI")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestSubmitAnswer_AdvancesSequentially(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	resp, err := svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.CurrentQuestion)
	assert.InDelta(t, 50.0, resp.CompletionPercentage, 0.01)
	require.NotNil(t, resp.NextQuestion)
	assert.Equal(t, "q2", resp.NextQuestion.ID)

	assert.Equal(t, 1, store.sessions[start.SessionID].CurrentQuestionIndex)
}

func TestSubmitAnswer_ValidationRejectsEmptyAndAmbiguous(t *testing.T) {
	svc, _, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{QuestionID: "q1"})
	assert.ErrorIs(t, err, util.ErrValidation)

	text := "free text"
	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"), AnswerText: &text,
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestSubmitAnswer_DuplicateQuestionRejected(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("b"),
	})
	assert.ErrorIs(t, err, util.ErrConflict)

	// The failed submission must not advance the pointer.
	assert.Equal(t, 1, store.sessions[start.SessionID].CurrentQuestionIndex)
}

func TestSubmitAnswer_OwnershipEnforced(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.users[2] = &model.User{FullName: "Other", Email: "other@example.com", IsActive: true}
	store.users[2].ID = 2

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 2, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestSubmitAnswer_TerminalSessionRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	require.NoError(t, svc.AbandonSession(start.SessionID, 1))

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	assert.ErrorIs(t, err, util.ErrInvalidState)
}

func TestSubmitAnswer_PastLastQuestionRejected(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q2", SelectedOptionID: strptr("a"),
	})
	require.NoError(t, err)

	// The template has two questions; a third submission is out of range.
	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q3", SelectedOptionID: strptr("a"),
	})
	assert.ErrorIs(t, err, util.ErrSessionFinished)

	assert.Equal(t, 2, store.sessions[start.SessionID].CurrentQuestionIndex)
	answers, err := store.ListBySession(start.SessionID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}

func TestSubmitAnswer_ZeroQuestionTemplateRejected(t *testing.T) {
	svc, store, _ := newTestService(t)

	empty := &model.AssessmentTemplate{TestType: "EMPTY", IsActive: true}
	empty.ID = "tmpl-empty"
	require.NoError(t, empty.SetQuestions([]model.TemplateQuestion{}))
	store.templates[empty.ID] = empty

	start, err := svc.StartAssessment(1, "EMPTY")
	require.NoError(t, err)
	assert.Nil(t, start.FirstQuestion)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	assert.ErrorIs(t, err, util.ErrSessionFinished)

	// The pointer never moves past the (empty) question list.
	assert.Equal(t, 0, store.sessions[start.SessionID].CurrentQuestionIndex)
}

func TestCompletionPercentage_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, completionPercentage(0, 0))
	assert.Equal(t, 0.0, completionPercentage(3, 0))
	assert.InDelta(t, 50.0, completionPercentage(1, 2), 0.01)
}

func TestSubmitAnswer_ConcurrentUpdateConflict(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	// Another writer bumps the stored lock version between load and save.
	store.tamperOnFind = func(id string) {
		store.sessions[id].LockVersion++
	}

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"),
	})
	assert.ErrorIs(t, err, util.ErrConflict)

	// The rejected submit must leave no orphan answer behind.
	answers, err := store.ListBySession(start.SessionID)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestCompleteSession_ProducesResult(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q1", SelectedOptionID: strptr("a"), // E+2
	})
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(start.SessionID, 1, SubmitAnswerRequest{
		QuestionID: "q2", SelectedOptionID: strptr("a"), // T+1, J+1
	})
	require.NoError(t, err)

	result, err := svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)
	assert.Equal(t, "ENTJ", result.ResultCode)
	assert.Equal(t, 2, result.Scores["E"])
	assert.Equal(t, "The Commander", result.Summary.Nickname)
	require.NotNil(t, result.CompletedAt)

	assert.Equal(t, model.SessionCompleted, store.sessions[start.SessionID].Status)

	stored := store.results[start.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, "ENTJ", stored.ResultCode)
	assert.True(t, stored.IsCompleted)
}

func TestCompleteSession_FallbackSummaryWhenCodeUnmapped(t *testing.T) {
	svc, _, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	// No answers: ties resolve to INFP, which has no result-type entry.
	result, err := svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)
	assert.Equal(t, "INFP", result.ResultCode)
	assert.Equal(t, "Assessment Complete", result.Summary.Title)
}

func TestCompleteSession_TwiceRejected(t *testing.T) {
	svc, _, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	_, err = svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)

	_, err = svc.CompleteSession(start.SessionID, 1)
	assert.ErrorIs(t, err, util.ErrInvalidState)
}

func TestAbandonSession_TerminalStateImmutable(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	require.NoError(t, svc.AbandonSession(start.SessionID, 1))
	assert.Equal(t, model.SessionAbandoned, store.sessions[start.SessionID].Status)

	err = svc.AbandonSession(start.SessionID, 1)
	assert.ErrorIs(t, err, util.ErrInvalidState)

	_, err = svc.CompleteSession(start.SessionID, 1)
	assert.ErrorIs(t, err, util.ErrInvalidState)
}

func TestAbandonThenRestartAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	require.NoError(t, svc.AbandonSession(first.SessionID, 1))

	second, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestGetCurrentSession_ReturnsInProgress(t *testing.T) {
	svc, _, tmpl := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)

	info, err := svc.GetCurrentSession(1, "MBTI")
	require.NoError(t, err)
	assert.Equal(t, start.SessionID, info.ID)
	assert.Equal(t, tmpl.ID, info.TemplateID)
	assert.Equal(t, string(model.SessionInProgress), info.Status)
}

func TestGetAssessmentResult_SnapshotAndOwnership(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.users[2] = &model.User{FullName: "Other", Email: "other@example.com", IsActive: true}
	store.users[2].ID = 2

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	_, err = svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)

	got, err := svc.GetAssessmentResult(start.SessionID, 1)
	require.NoError(t, err)
	assert.Equal(t, "INFP", got.ResultCode)

	_, err = svc.GetAssessmentResult(start.SessionID, 2)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.GetAssessmentResult("missing-session", 1)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestGetAvailableAssessments_CompletionFlag(t *testing.T) {
	svc, _, _ := newTestService(t)

	items, err := svc.GetAvailableAssessments(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsCompleted)
	assert.Nil(t, items[0].LastAttemptDate)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	_, err = svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)

	items, err = svc.GetAvailableAssessments(1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsCompleted)
	assert.NotNil(t, items[0].LastAttemptDate)
}

func TestExpireStaleSessions(t *testing.T) {
	svc, store, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	store.sessions[start.SessionID].StartedAt = time.Now().Add(-48 * time.Hour)

	count, err := svc.ExpireStaleSessions(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, model.SessionExpired, store.sessions[start.SessionID].Status)

	// A fresh session is untouched.
	second, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	count, err = svc.ExpireStaleSessions(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, model.SessionInProgress, store.sessions[second.SessionID].Status)
}

func TestGetUserAssessmentHistory(t *testing.T) {
	svc, _, _ := newTestService(t)

	start, err := svc.StartAssessment(1, "MBTI")
	require.NoError(t, err)
	_, err = svc.CompleteSession(start.SessionID, 1)
	require.NoError(t, err)

	history, err := svc.GetUserAssessmentHistory(1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(model.SessionCompleted), history[0].Status)
	assert.NotEqual(t, "Unknown Template", history[0].TemplateTitle)
}
