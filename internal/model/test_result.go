package model

import (
	"encoding/json"
)

// TestResult is the immutable historical record written once when a session
// completes. Descriptive fields are snapshotted from the template's result
// type at completion time, so later template edits never rewrite history.
// swagger:model TestResult
type TestResult struct {
	UUIDBase
	UserID               uint            `gorm:"not null;index" json:"userId"`
	SessionID            string          `gorm:"size:36;not null;uniqueIndex" json:"sessionId"`
	TestType             string          `gorm:"size:50;not null" json:"testType"`
	TestVersion          string          `gorm:"size:10;default:'1.0'" json:"testVersion"`
	ResultCode           string          `gorm:"size:10" json:"resultCode"`
	RawScores            json.RawMessage `gorm:"type:json" json:"rawScores,omitempty"` // JSON: ScoreVector
	Title                string          `gorm:"size:255" json:"title"`
	Description          string          `gorm:"type:text" json:"description"`
	Strengths            json.RawMessage `gorm:"type:json" json:"strengths,omitempty"`         // JSON: []string
	Weaknesses           json.RawMessage `gorm:"type:json" json:"weaknesses,omitempty"`        // JSON: []string
	CareerSuggestions    json.RawMessage `gorm:"type:json" json:"careerSuggestions,omitempty"` // JSON: []string
	CompletionPercentage int             `gorm:"default:0" json:"completionPercentage"`
	DurationMinutes      int             `gorm:"default:0" json:"durationMinutes"`
	IsCompleted          bool            `gorm:"default:false" json:"isCompleted"`
}

func (TestResult) TableName() string {
	return "test_results"
}

func (r *TestResult) SetScores(scores ScoreVector) error {
	raw, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	r.RawScores = raw
	return nil
}

func (r *TestResult) ParseScores() (ScoreVector, error) {
	if len(r.RawScores) == 0 {
		return ScoreVector{}, nil
	}
	var scores ScoreVector
	if err := json.Unmarshal(r.RawScores, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
