package model

import (
	"encoding/json"
)

// ScoreVector maps a dimension code (e.g. "E", "I") to its accumulated weight.
type ScoreVector map[string]int

// AssessmentTemplate is the immutable, versioned definition of one test:
// ordered questions, per-option dimension weights, scoring descriptor and the
// result-type lookup table. Content columns hold JSON documents, matching the
// document shape the original content store used.
// swagger:model AssessmentTemplate
type AssessmentTemplate struct {
	UUIDBase
	TestType             string          `gorm:"size:50;not null;index" json:"testType"` // MBTI, BIG_FIVE, CAREER...
	Version              string          `gorm:"size:10;default:'1.0'" json:"version"`
	Title                string          `gorm:"size:255;not null" json:"title"`
	Description          string          `gorm:"type:text" json:"description"`
	Category             string          `gorm:"size:100" json:"category"`
	EstimatedTimeMinutes int             `gorm:"default:0" json:"estimatedTimeMinutes"`
	TotalQuestions       int             `gorm:"default:0" json:"totalQuestions"`
	IsActive             bool            `gorm:"default:true;index" json:"isActive"`
	Instructions         json.RawMessage `gorm:"type:json" json:"instructions,omitempty"`     // JSON: []string
	Dimensions           json.RawMessage `gorm:"type:json" json:"dimensions,omitempty"`       // JSON: []TemplateDimension
	Questions            json.RawMessage `gorm:"type:json" json:"questions,omitempty"`        // JSON: []TemplateQuestion
	ScoringAlgorithm     json.RawMessage `gorm:"type:json" json:"scoringAlgorithm,omitempty"` // JSON: ScoringAlgorithm
	ResultTypes          json.RawMessage `gorm:"type:json" json:"resultTypes,omitempty"`      // JSON: map[code]ResultType
}

func (AssessmentTemplate) TableName() string {
	return "assessment_templates"
}

type TemplateDimension struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type TemplateQuestion struct {
	ID            string           `json:"id"`
	Text          string           `json:"text"`
	Type          string           `json:"type"` // MULTIPLE_CHOICE, SCALE, TEXT
	Options       []TemplateOption `json:"options,omitempty"`
	Dimension     string           `json:"dimension,omitempty"` // flat-points fallback target
	Required      bool             `json:"required,omitempty"`
	Category      string           `json:"category,omitempty"`
	Image         string           `json:"image,omitempty"`
	TimeLimit     int              `json:"timeLimit,omitempty"`
	CorrectAnswer string           `json:"correctAnswer,omitempty"`
	Points        int              `json:"points,omitempty"`
}

type TemplateOption struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Weights map[string]int `json:"weights,omitempty"` // dimension code -> contribution
}

type ScoringAlgorithm struct {
	Type       string         `json:"type"`
	Method     string         `json:"method"`
	Thresholds map[string]int `json:"thresholds,omitempty"`
}

// ResultType is the descriptive metadata for one derived result code.
type ResultType struct {
	Title             string   `json:"title"`
	Nickname          string   `json:"nickname,omitempty"`
	Description       string   `json:"description,omitempty"`
	Strengths         []string `json:"strengths,omitempty"`
	Weaknesses        []string `json:"weaknesses,omitempty"`
	CareerSuggestions []string `json:"careerSuggestions,omitempty"`
	DevelopmentAreas  []string `json:"developmentAreas,omitempty"`
}

// ParseQuestions decodes the template's question document. An empty column
// yields an empty slice, not an error.
func (t *AssessmentTemplate) ParseQuestions() ([]TemplateQuestion, error) {
	if len(t.Questions) == 0 {
		return nil, nil
	}
	var qs []TemplateQuestion
	if err := json.Unmarshal(t.Questions, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (t *AssessmentTemplate) ParseResultTypes() (map[string]ResultType, error) {
	if len(t.ResultTypes) == 0 {
		return map[string]ResultType{}, nil
	}
	var rts map[string]ResultType
	if err := json.Unmarshal(t.ResultTypes, &rts); err != nil {
		return nil, err
	}
	return rts, nil
}

func (t *AssessmentTemplate) ParseInstructions() []string {
	if len(t.Instructions) == 0 {
		return nil
	}
	var ins []string
	if err := json.Unmarshal(t.Instructions, &ins); err != nil {
		return nil
	}
	return ins
}

func (t *AssessmentTemplate) SetQuestions(qs []TemplateQuestion) error {
	raw, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	t.Questions = raw
	return nil
}

func (t *AssessmentTemplate) SetResultTypes(rts map[string]ResultType) error {
	raw, err := json.Marshal(rts)
	if err != nil {
		return err
	}
	t.ResultTypes = raw
	return nil
}

func (t *AssessmentTemplate) SetInstructions(ins []string) error {
	raw, err := json.Marshal(ins)
	if err != nil {
		return err
	}
	t.Instructions = raw
	return nil
}
