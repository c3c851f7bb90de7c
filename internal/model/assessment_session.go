package model

import (
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
	SessionExpired    SessionStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition may leave this status.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionAbandoned || s == SessionExpired
}

// AssessmentSession is one user's attempt at a template. At most one
// IN_PROGRESS session may exist per (user, template); CurrentQuestionIndex
// only ever moves forward and never past TotalQuestions of the template.
// swagger:model AssessmentSession
type AssessmentSession struct {
	UUIDBase
	UserID               uint          `gorm:"not null;index:idx_sessions_user_template" json:"userId"`
	User                 *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TemplateID           string        `gorm:"size:36;not null;index:idx_sessions_user_template" json:"templateId"`
	Status               SessionStatus `gorm:"size:20;not null;default:'IN_PROGRESS';index" json:"status"`
	CurrentQuestionIndex int           `gorm:"default:0" json:"currentQuestionIndex"`
	StartedAt            time.Time     `gorm:"not null" json:"startedAt"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty"`
	TimeSpentSeconds     int64         `gorm:"default:0" json:"timeSpentSeconds"`
	// LockVersion guards the read-modify-write of CurrentQuestionIndex.
	// Updates must match the loaded version or fail with a conflict.
	LockVersion int `gorm:"default:0" json:"-"`
}

func (AssessmentSession) TableName() string {
	return "assessment_sessions"
}

// Complete transitions the session to COMPLETED and derives the time spent,
// clamped to zero for skewed clocks.
func (s *AssessmentSession) Complete(now time.Time) {
	s.Status = SessionCompleted
	s.finish(now)
}

func (s *AssessmentSession) Abandon(now time.Time) {
	s.Status = SessionAbandoned
	s.finish(now)
}

func (s *AssessmentSession) Expire(now time.Time) {
	s.Status = SessionExpired
	s.finish(now)
}

func (s *AssessmentSession) finish(now time.Time) {
	completed := now
	s.CompletedAt = &completed
	spent := int64(now.Sub(s.StartedAt).Seconds())
	if spent < 0 {
		spent = 0
	}
	s.TimeSpentSeconds = spent
}
