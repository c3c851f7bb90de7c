package service

import (
	"encoding/json"
	"time"

	"zplus_counselling_backend/internal/model"

	"github.com/jinzhu/copier"
)

// ResultSummary is the presentable outcome of a completed assessment.
type ResultSummary struct {
	ResultCode        string            `json:"resultCode"`
	Title             string            `json:"title"`
	Nickname          string            `json:"nickname,omitempty"`
	Description       string            `json:"description,omitempty"`
	Strengths         []string          `json:"strengths,omitempty"`
	Weaknesses        []string          `json:"weaknesses,omitempty"`
	CareerSuggestions []string          `json:"careerSuggestions,omitempty"`
	DevelopmentAreas  []string          `json:"developmentAreas,omitempty"`
	Scores            model.ScoreVector `json:"scores"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
}

// ResultAssembler joins a derived result code with the template's descriptive
// result-type metadata. It never fails: a missing or unparseable entry falls
// back to a generic completion summary.
type ResultAssembler struct{}

func NewResultAssembler() *ResultAssembler {
	return &ResultAssembler{}
}

func (a *ResultAssembler) MergeResult(resultCode string, scores model.ScoreVector, template *model.AssessmentTemplate) ResultSummary {
	summary := ResultSummary{
		ResultCode: resultCode,
		Scores:     scores,
	}

	resultTypes, err := template.ParseResultTypes()
	if err == nil {
		if rt, ok := resultTypes[resultCode]; ok {
			if err := copier.Copy(&summary, &rt); err == nil {
				return summary
			}
		}
	}

	summary.Title = "Assessment Complete"
	summary.Description = "Your assessment has been completed successfully."
	return summary
}

// setSnapshotLists copies the descriptive lists into the stored result row.
func setSnapshotLists(result *model.TestResult, summary ResultSummary) {
	result.Strengths = marshalList(summary.Strengths)
	result.Weaknesses = marshalList(summary.Weaknesses)
	result.CareerSuggestions = marshalList(summary.CareerSuggestions)
}

// parseSnapshotLists restores the descriptive lists from a stored result row.
func parseSnapshotLists(result *model.TestResult, summary *ResultSummary) {
	summary.Strengths = unmarshalList(result.Strengths)
	summary.Weaknesses = unmarshalList(result.Weaknesses)
	summary.CareerSuggestions = unmarshalList(result.CareerSuggestions)
}

func marshalList(items []string) json.RawMessage {
	if len(items) == 0 {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil
	}
	return raw
}

func unmarshalList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
