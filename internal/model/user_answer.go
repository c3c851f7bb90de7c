package model

// UserAnswer is the append-only record of a single answered question inside a
// session. The unique index rejects a second answer for the same question.
// swagger:model UserAnswer
type UserAnswer struct {
	BaseModel
	SessionID        string   `gorm:"size:36;not null;uniqueIndex:idx_answers_session_question" json:"sessionId"`
	QuestionID       string   `gorm:"size:100;not null;uniqueIndex:idx_answers_session_question" json:"questionId"`
	QuestionNumber   int      `gorm:"not null" json:"questionNumber"`
	SelectedOptionID *string  `gorm:"size:100" json:"selectedOptionId,omitempty"`
	AnswerText       *string  `gorm:"type:text" json:"answerText,omitempty"`
	NumericValue     *int     `json:"numericValue,omitempty"`
	ScoreValue       *float64 `json:"scoreValue,omitempty"`
	TimeSpentSeconds int64    `gorm:"default:0" json:"timeSpentSeconds"`
	IsCorrect        *bool    `json:"isCorrect,omitempty"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}

// Answered reports whether the answer carries any payload at all.
func (a *UserAnswer) Answered() bool {
	return a.SelectedOptionID != nil || a.AnswerText != nil || a.NumericValue != nil
}
