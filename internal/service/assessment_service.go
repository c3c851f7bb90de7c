package service

import (
	"errors"
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/util"
	"zplus_counselling_backend/pkg/logger"
	"zplus_counselling_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store interfaces the assessment flow depends on. Declared here, on the
// consumer side; the GORM repositories are the production implementations.

type TemplateStore interface {
	FindActiveByType(testType string) (*model.AssessmentTemplate, error)
	FindByID(id string) (*model.AssessmentTemplate, error)
	ListActive() ([]model.AssessmentTemplate, error)
}

type SessionStore interface {
	Create(s *model.AssessmentSession) error
	FindByID(id string) (*model.AssessmentSession, error)
	FindActive(userID uint, templateID string) (*model.AssessmentSession, error)
	HasActive(userID uint, templateID string) (bool, error)
	// Save applies session mutations under the optimistic lock version and
	// returns util.ErrConcurrentUpdate when the row changed underneath.
	Save(s *model.AssessmentSession) error
	// AppendAnswerAndAdvance atomically records one answer and persists the
	// advanced question index, within a single transaction boundary.
	AppendAnswerAndAdvance(s *model.AssessmentSession, a *model.UserAnswer) error
	FindByUser(userID uint) ([]model.AssessmentSession, error)
	FindStaleInProgress(cutoff time.Time) ([]model.AssessmentSession, error)
}

type AnswerStore interface {
	Append(a *model.UserAnswer) error
	ListBySession(sessionID string) ([]model.UserAnswer, error)
}

type ResultStore interface {
	Create(r *model.TestResult) error
	FindBySessionID(sessionID string) (*model.TestResult, error)
	FindByUser(userID uint) ([]model.TestResult, error)
}

type UserStore interface {
	FindByID(id uint) (*model.User, error)
}

// AssessmentService orchestrates the session lifecycle: start, sequential
// answer submission, completion and resume. It enforces one active session
// per (user, template), forward-only question progression and terminal-state
// immutability.
type AssessmentService struct {
	Templates TemplateStore
	Sessions  SessionStore
	Answers   AnswerStore
	Results   ResultStore
	Users     UserStore
	Scoring   *ScoringService
	Assembler *ResultAssembler
}

func NewAssessmentService(templates TemplateStore, sessions SessionStore, answers AnswerStore, results ResultStore, users UserStore) *AssessmentService {
	return &AssessmentService{
		Templates: templates,
		Sessions:  sessions,
		Answers:   answers,
		Results:   results,
		Users:     users,
		Scoring:   NewScoringService(),
		Assembler: NewResultAssembler(),
	}
}

// OptionView and QuestionView are the answer-blind projections served to
// clients: no weights, no correct answers, no points.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Type      string       `json:"type"`
	Options   []OptionView `json:"options"`
	Required  bool         `json:"required"`
	Image     string       `json:"image,omitempty"`
	TimeLimit int          `json:"timeLimit,omitempty"`
}

type StartAssessmentResponse struct {
	SessionID       string        `json:"sessionId"`
	TestType        string        `json:"testType"`
	TotalQuestions  int           `json:"totalQuestions"`
	CurrentQuestion int           `json:"currentQuestion"`
	Instructions    []string      `json:"instructions,omitempty"`
	FirstQuestion   *QuestionView `json:"firstQuestion,omitempty"`
}

// SubmitAnswerRequest carries one answer payload. Exactly one of
// selectedOptionId, answerText or numericValue must be set.
type SubmitAnswerRequest struct {
	QuestionID          string  `json:"questionId" binding:"required"`
	SelectedOptionID    *string `json:"selectedOptionId"`
	AnswerText          *string `json:"answerText"`
	NumericValue        *int    `json:"numericValue"`
	ResponseTimeSeconds int64   `json:"responseTimeSeconds"`
}

// Validate rejects empty and ambiguous payloads before they reach the core.
func (r *SubmitAnswerRequest) Validate() error {
	set := 0
	if r.SelectedOptionID != nil {
		set++
	}
	if r.AnswerText != nil {
		set++
	}
	if r.NumericValue != nil {
		set++
	}
	if set == 0 {
		return util.ValidationError("one of selectedOptionId, answerText or numericValue is required")
	}
	if set > 1 {
		return util.ValidationError("only one of selectedOptionId, answerText or numericValue may be set")
	}
	return nil
}

type SubmitAnswerResponse struct {
	CurrentQuestion      int           `json:"currentQuestion"`
	TotalQuestions       int           `json:"totalQuestions"`
	CompletionPercentage float64       `json:"completionPercentage"`
	NextQuestion         *QuestionView `json:"nextQuestion,omitempty"`
}

type AssessmentResultResponse struct {
	ResultID    string            `json:"resultId"`
	ResultCode  string            `json:"resultCode"`
	Scores      model.ScoreVector `json:"scores"`
	Summary     ResultSummary     `json:"summary"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

type SessionInfo struct {
	ID                   string     `json:"id"`
	TemplateID           string     `json:"templateId"`
	TemplateTitle        string     `json:"templateTitle"`
	TemplateType         string     `json:"templateType"`
	Status               string     `json:"status"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	TotalQuestions       int        `json:"totalQuestions"`
	StartedAt            time.Time  `json:"startedAt"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	TimeSpentSeconds     int64      `json:"timeSpentSeconds"`
	ProgressPercentage   float64    `json:"progressPercentage"`
}

type AvailableAssessment struct {
	TestType             string     `json:"testType"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	EstimatedTimeMinutes int        `json:"estimatedTimeMinutes"`
	TotalQuestions       int        `json:"totalQuestions"`
	IsCompleted          bool       `json:"isCompleted"`
	LastAttemptDate      *time.Time `json:"lastAttemptDate,omitempty"`
}

// GetAvailableAssessments lists active templates with the caller's completion
// flag and last attempt, resolved from one session scan.
func (s *AssessmentService) GetAvailableAssessments(userID uint) ([]AvailableAssessment, error) {
	if _, err := s.Users.FindByID(userID); err != nil {
		return nil, asNotFound(err, util.ErrUserNotFound)
	}

	templates, err := s.Templates.ListActive()
	if err != nil {
		return nil, util.StorageError(err)
	}

	sessions, err := s.Sessions.FindByUser(userID)
	if err != nil {
		return nil, util.StorageError(err)
	}

	completed := make(map[string]bool)
	lastAttempt := make(map[string]time.Time)
	for _, sess := range sessions {
		if sess.Status == model.SessionCompleted {
			completed[sess.TemplateID] = true
		}
		if _, ok := lastAttempt[sess.TemplateID]; !ok {
			// Sessions arrive newest first.
			lastAttempt[sess.TemplateID] = sess.StartedAt
		}
	}

	out := make([]AvailableAssessment, 0, len(templates))
	for _, t := range templates {
		item := AvailableAssessment{
			TestType:             t.TestType,
			Title:                t.Title,
			Description:          t.Description,
			Category:             t.Category,
			EstimatedTimeMinutes: t.EstimatedTimeMinutes,
			TotalQuestions:       t.TotalQuestions,
			IsCompleted:          completed[t.ID],
		}
		if at, ok := lastAttempt[t.ID]; ok {
			attempt := at
			item.LastAttemptDate = &attempt
		}
		out = append(out, item)
	}
	return out, nil
}

// StartAssessment opens a new session for (user, template). A second start
// while one is in progress is a conflict: the caller must resume or abandon
// the existing session first.
func (s *AssessmentService) StartAssessment(userID uint, testType string) (*StartAssessmentResponse, error) {
	if _, err := s.Users.FindByID(userID); err != nil {
		return nil, asNotFound(err, util.ErrUserNotFound)
	}

	template, err := s.Templates.FindActiveByType(testType)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}

	hasActive, err := s.Sessions.HasActive(userID, template.ID)
	if err != nil {
		return nil, util.StorageError(err)
	}
	if hasActive {
		return nil, util.ErrActiveSession
	}

	session := &model.AssessmentSession{
		UserID:               userID,
		TemplateID:           template.ID,
		Status:               model.SessionInProgress,
		CurrentQuestionIndex: 0,
		StartedAt:            time.Now(),
	}
	if err := s.Sessions.Create(session); err != nil {
		return nil, util.StorageError(err)
	}

	monitoring.AssessmentsStarted.WithLabelValues(template.TestType).Inc()
	logger.Log.Info("assessment session started",
		zap.String("sessionId", session.ID),
		zap.Uint("userId", userID),
		zap.String("testType", testType))

	questions, _ := template.ParseQuestions()

	return &StartAssessmentResponse{
		SessionID:       session.ID,
		TestType:        template.TestType,
		TotalQuestions:  template.TotalQuestions,
		CurrentQuestion: 1,
		Instructions:    template.ParseInstructions(),
		FirstQuestion:   questionAt(questions, 0),
	}, nil
}

// SubmitAnswer records one answer and advances the session by exactly one
// question. Submission is sequential only: the recorded question number is
// always currentQuestionIndex+1 regardless of which question was answered.
func (s *AssessmentService) SubmitAnswer(sessionID string, userID uint, req SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return nil, asNotFound(err, util.ErrSessionNotFound)
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionNotActive
	}

	template, err := s.Templates.FindByID(session.TemplateID)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}

	if session.CurrentQuestionIndex >= template.TotalQuestions {
		return nil, util.ErrSessionFinished
	}

	answer := &model.UserAnswer{
		SessionID:        session.ID,
		QuestionID:       req.QuestionID,
		QuestionNumber:   session.CurrentQuestionIndex + 1,
		SelectedOptionID: req.SelectedOptionID,
		AnswerText:       req.AnswerText,
		NumericValue:     req.NumericValue,
		TimeSpentSeconds: req.ResponseTimeSeconds,
	}

	session.CurrentQuestionIndex++
	if err := s.Sessions.AppendAnswerAndAdvance(session, answer); err != nil {
		if errors.Is(err, util.ErrConflict) {
			return nil, err
		}
		return nil, util.StorageError(err)
	}

	questions, _ := template.ParseQuestions()

	resp := &SubmitAnswerResponse{
		CurrentQuestion:      session.CurrentQuestionIndex + 1,
		TotalQuestions:       template.TotalQuestions,
		CompletionPercentage: completionPercentage(session.CurrentQuestionIndex, template.TotalQuestions),
		NextQuestion:         questionAt(questions, session.CurrentQuestionIndex),
	}
	return resp, nil
}

// CompleteSession scores the recorded answers, transitions the session to
// COMPLETED and writes the immutable TestResult record. Completing twice is
// rejected rather than recomputed.
func (s *AssessmentService) CompleteSession(sessionID string, userID uint) (*AssessmentResultResponse, error) {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return nil, asNotFound(err, util.ErrSessionNotFound)
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionFinished
	}

	template, err := s.Templates.FindByID(session.TemplateID)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}

	answers, err := s.Answers.ListBySession(session.ID)
	if err != nil {
		return nil, util.StorageError(err)
	}

	scores := s.Scoring.CalculateScores(answers, template)
	resultCode := s.Scoring.DetermineResultCode(scores, template.TestType)
	summary := s.Assembler.MergeResult(resultCode, scores, template)

	session.Complete(time.Now())
	if err := s.Sessions.Save(session); err != nil {
		if errors.Is(err, util.ErrConflict) {
			return nil, err
		}
		return nil, util.StorageError(err)
	}

	result := &model.TestResult{
		UserID:               session.UserID,
		SessionID:            session.ID,
		TestType:             template.TestType,
		TestVersion:          templateVersion(template),
		ResultCode:           resultCode,
		Title:                summary.Title,
		Description:          summary.Description,
		CompletionPercentage: 100,
		DurationMinutes:      int(session.TimeSpentSeconds / 60),
		IsCompleted:          true,
	}
	if err := result.SetScores(scores); err != nil {
		return nil, util.StorageError(err)
	}
	setSnapshotLists(result, summary)

	if err := s.Results.Create(result); err != nil {
		return nil, util.StorageError(err)
	}

	monitoring.AssessmentsCompleted.WithLabelValues(template.TestType, resultCode).Inc()
	logger.Log.Info("assessment session completed",
		zap.String("sessionId", session.ID),
		zap.String("resultCode", resultCode))

	summary.CompletedAt = session.CompletedAt
	return &AssessmentResultResponse{
		ResultID:    session.ID,
		ResultCode:  resultCode,
		Scores:      scores,
		Summary:     summary,
		CompletedAt: session.CompletedAt,
	}, nil
}

// AbandonSession moves an in-progress session to the terminal ABANDONED state.
func (s *AssessmentService) AbandonSession(sessionID string, userID uint) error {
	session, err := s.Sessions.FindByID(sessionID)
	if err != nil {
		return asNotFound(err, util.ErrSessionNotFound)
	}
	if session.UserID != userID {
		return util.ErrPermissionDenied
	}
	if session.Status != model.SessionInProgress {
		return util.ErrSessionFinished
	}

	session.Abandon(time.Now())
	if err := s.Sessions.Save(session); err != nil {
		if errors.Is(err, util.ErrConflict) {
			return err
		}
		return util.StorageError(err)
	}
	return nil
}

// GetCurrentSession resumes: it returns the caller's single in-progress
// session for the given test type, or NotFound.
func (s *AssessmentService) GetCurrentSession(userID uint, testType string) (*SessionInfo, error) {
	template, err := s.Templates.FindActiveByType(testType)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}

	session, err := s.Sessions.FindActive(userID, template.ID)
	if err != nil {
		return nil, asNotFound(err, util.ErrSessionNotFound)
	}

	info := sessionInfo(session, template)
	return &info, nil
}

// GetAssessmentResult returns the stored result for a completed session,
// owner-checked. Results are snapshots: template edits after completion do
// not change what is returned here.
func (s *AssessmentService) GetAssessmentResult(sessionID string, userID uint) (*AssessmentResultResponse, error) {
	result, err := s.Results.FindBySessionID(sessionID)
	if err != nil {
		return nil, asNotFound(err, util.ErrResultNotFound)
	}
	if result.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	scores, err := result.ParseScores()
	if err != nil {
		return nil, util.StorageError(err)
	}

	summary := ResultSummary{
		ResultCode:  result.ResultCode,
		Title:       result.Title,
		Description: result.Description,
		Scores:      scores,
	}
	parseSnapshotLists(result, &summary)

	completedAt := result.CreatedAt
	return &AssessmentResultResponse{
		ResultID:    result.SessionID,
		ResultCode:  result.ResultCode,
		Scores:      scores,
		Summary:     summary,
		CompletedAt: &completedAt,
	}, nil
}

// GetUserAssessmentHistory lists the caller's sessions, newest first.
func (s *AssessmentService) GetUserAssessmentHistory(userID uint) ([]SessionInfo, error) {
	sessions, err := s.Sessions.FindByUser(userID)
	if err != nil {
		return nil, util.StorageError(err)
	}

	out := make([]SessionInfo, 0, len(sessions))
	for i := range sessions {
		template, err := s.Templates.FindByID(sessions[i].TemplateID)
		if err != nil {
			template = nil
		}
		out = append(out, sessionInfo(&sessions[i], template))
	}
	return out, nil
}

// ExpireStaleSessions marks in-progress sessions older than ttl as EXPIRED.
// Used by the background sweep; rows changed concurrently are skipped.
func (s *AssessmentService) ExpireStaleSessions(ttl time.Duration) (int, error) {
	now := time.Now()
	stale, err := s.Sessions.FindStaleInProgress(now.Add(-ttl))
	if err != nil {
		return 0, util.StorageError(err)
	}

	expired := 0
	for i := range stale {
		session := stale[i]
		session.Expire(now)
		if err := s.Sessions.Save(&session); err != nil {
			if errors.Is(err, util.ErrConflict) {
				continue
			}
			return expired, util.StorageError(err)
		}
		expired++
	}

	if expired > 0 {
		logger.Log.Info("expired stale assessment sessions", zap.Int("count", expired))
	}
	return expired, nil
}

// --- helpers ---

// asNotFound maps a record-not-found store error to the domain sentinel and
// wraps anything else as a storage failure.
func asNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return util.StorageError(err)
}

func completionPercentage(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(index) / float64(total) * 100
}

func questionAt(questions []model.TemplateQuestion, index int) *QuestionView {
	if index < 0 || index >= len(questions) {
		return nil
	}
	q := questions[index]
	view := &QuestionView{
		ID:        q.ID,
		Text:      q.Text,
		Type:      q.Type,
		Options:   make([]OptionView, 0, len(q.Options)),
		Required:  true,
		Image:     q.Image,
		TimeLimit: q.TimeLimit,
	}
	for _, opt := range q.Options {
		view.Options = append(view.Options, OptionView{ID: opt.ID, Text: opt.Text})
	}
	return view
}

func sessionInfo(session *model.AssessmentSession, template *model.AssessmentTemplate) SessionInfo {
	info := SessionInfo{
		ID:                   session.ID,
		TemplateID:           session.TemplateID,
		TemplateTitle:        "Unknown Template",
		TemplateType:         "Unknown",
		Status:               string(session.Status),
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		StartedAt:            session.StartedAt,
		CompletedAt:          session.CompletedAt,
		TimeSpentSeconds:     session.TimeSpentSeconds,
	}
	if template != nil {
		info.TemplateTitle = template.Title
		info.TemplateType = template.TestType
		info.TotalQuestions = template.TotalQuestions
		info.ProgressPercentage = completionPercentage(session.CurrentQuestionIndex, template.TotalQuestions)
	}
	return info
}

func templateVersion(t *model.AssessmentTemplate) string {
	if t.Version == "" {
		return "1.0"
	}
	return t.Version
}
