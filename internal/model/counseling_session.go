package model

import (
	"time"
)

type CounselingStatus string

const (
	CounselingScheduled CounselingStatus = "SCHEDULED"
	CounselingConfirmed CounselingStatus = "CONFIRMED"
	CounselingCompleted CounselingStatus = "COMPLETED"
	CounselingCancelled CounselingStatus = "CANCELLED"
)

type CounselingType string

const (
	IndividualCounseling CounselingType = "INDIVIDUAL_COUNSELING"
	CareerCounseling     CounselingType = "CAREER_COUNSELING"
	GroupCounseling      CounselingType = "GROUP_COUNSELING"
)

// swagger:model CounselingSession
type CounselingSession struct {
	UUIDBase
	UserID            uint             `gorm:"not null;index" json:"userId"`
	User              *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CounselorID       uint             `gorm:"not null;index" json:"counselorId"`
	Counselor         *User            `gorm:"foreignKey:CounselorID" json:"counselor,omitempty"`
	ScheduledAt       time.Time        `gorm:"not null" json:"scheduledAt"`
	EndedAt           *time.Time       `json:"endedAt,omitempty"`
	SessionType       CounselingType   `gorm:"size:30;default:'INDIVIDUAL_COUNSELING'" json:"sessionType"`
	Status            CounselingStatus `gorm:"size:20;not null;default:'SCHEDULED';index" json:"status"`
	SessionNotes      string           `gorm:"type:text" json:"sessionNotes,omitempty"`
	DurationMinutes   int              `gorm:"default:60" json:"durationMinutes"`
	MeetingLink       string           `gorm:"size:500" json:"meetingLink,omitempty"`
	SessionRating     *int             `json:"sessionRating,omitempty"`
	ClientFeedback    string           `gorm:"type:text" json:"clientFeedback,omitempty"`
	CounselorFeedback string           `gorm:"type:text" json:"counselorFeedback,omitempty"`
}

func (CounselingSession) TableName() string {
	return "counseling_sessions"
}
