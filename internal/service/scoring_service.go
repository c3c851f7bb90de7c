package service

import (
	"encoding/json"

	"zplus_counselling_backend/internal/model"
)

// UnknownResultCode is returned for test types the engine has no
// result-derivation rule for. Completion must not fail on them.
const UnknownResultCode = "UNKNOWN"

// dichotomyAxis is one axis of a dichotomous scheme. A strictly greater score
// on First yields the First letter; ties and everything else yield Second.
// The tie poles spell INFP, the convention the MBTI content was written for.
type dichotomyAxis struct {
	First  string
	Second string
}

var mbtiAxes = [4]dichotomyAxis{
	{First: "E", Second: "I"},
	{First: "S", Second: "N"},
	{First: "T", Second: "F"},
	{First: "J", Second: "P"},
}

// ScoringService is the pure scoring engine: answers + template content in,
// dimension scores and a derived result code out. It holds no state and
// touches no store, so it is safe to share across concurrent requests.
type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// CalculateScores accumulates option weights into a score vector.
//
// Every dimension code the template declares (in its dimension list, in any
// option's weights map or as a question's fallback dimension) starts at zero
// so downstream comparisons never miss a key. Answers referencing unknown
// questions or options are skipped rather than failing the pass: partial or
// stale historical data must not block a user from seeing a result.
// Accumulation is commutative, so the answer order cannot change the sums.
func (s *ScoringService) CalculateScores(answers []model.UserAnswer, template *model.AssessmentTemplate) model.ScoreVector {
	scores := model.ScoreVector{}

	var dims []model.TemplateDimension
	if len(template.Dimensions) > 0 {
		// Malformed dimension JSON degrades to option-derived codes only.
		_ = json.Unmarshal(template.Dimensions, &dims)
	}
	for _, d := range dims {
		scores[d.Code] = 0
	}

	questions, err := template.ParseQuestions()
	if err != nil {
		return scores
	}

	questionsByID := make(map[string]model.TemplateQuestion, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
		if q.Dimension != "" {
			if _, ok := scores[q.Dimension]; !ok {
				scores[q.Dimension] = 0
			}
		}
		for _, opt := range q.Options {
			for dim := range opt.Weights {
				if _, ok := scores[dim]; !ok {
					scores[dim] = 0
				}
			}
		}
	}

	for _, answer := range answers {
		if answer.SelectedOptionID == nil {
			continue
		}

		question, ok := questionsByID[answer.QuestionID]
		if !ok {
			continue
		}

		var selected *model.TemplateOption
		for i := range question.Options {
			if question.Options[i].ID == *answer.SelectedOptionID {
				selected = &question.Options[i]
				break
			}
		}
		if selected == nil {
			continue
		}

		if len(selected.Weights) > 0 {
			for dim, weight := range selected.Weights {
				scores[dim] += weight
			}
		} else if question.Dimension != "" {
			// Flat-points fallback for simple point-based tests.
			points := question.Points
			if points == 0 {
				points = 1
			}
			scores[question.Dimension] += points
		}
	}

	return scores
}

// DetermineResultCode derives the categorical result from a score vector.
// For MBTI each axis contributes the letter of the strictly higher pole;
// the tie pole per axis is fixed by the mbtiAxes table, so the same vector
// always yields the same code. Unsupported test types yield UnknownResultCode.
func (s *ScoringService) DetermineResultCode(scores model.ScoreVector, testType string) string {
	if testType != "MBTI" {
		return UnknownResultCode
	}

	code := make([]byte, 0, 4)
	for _, axis := range mbtiAxes {
		if scores[axis.First] > scores[axis.Second] {
			code = append(code, axis.First...)
		} else {
			code = append(code, axis.Second...)
		}
	}
	return string(code)
}
