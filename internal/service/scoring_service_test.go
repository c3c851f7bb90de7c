package service

import (
	"testing"

	"zplus_counselling_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func mbtiTestTemplate(t *testing.T) *model.AssessmentTemplate {
	t.Helper()
	tmpl := &model.AssessmentTemplate{TestType: "MBTI", TotalQuestions: 2}
	err := tmpl.SetQuestions([]model.TemplateQuestion{
		{
			ID: "q1", Text: "first", Type: "MULTIPLE_CHOICE",
			Options: []model.TemplateOption{
				{ID: "a", Weights: map[string]int{"E": 2}},
				{ID: "b", Weights: map[string]int{"I": 2}},
			},
		},
		{
			ID: "q2", Text: "second", Type: "MULTIPLE_CHOICE",
			Options: []model.TemplateOption{
				{ID: "a", Weights: map[string]int{"T": 1, "J": 1}},
				{ID: "b", Weights: map[string]int{"F": 1, "P": 1}},
			},
		},
	})
	require.NoError(t, err)
	return tmpl
}

func TestCalculateScores_AccumulatesOptionWeights(t *testing.T) {
	s := NewScoringService()
	tmpl := mbtiTestTemplate(t)

	answers := []model.UserAnswer{
		{QuestionID: "q1", SelectedOptionID: strptr("a")},
		{QuestionID: "q2", SelectedOptionID: strptr("a")},
	}

	scores := s.CalculateScores(answers, tmpl)
	assert.Equal(t, 2, scores["E"])
	assert.Equal(t, 0, scores["I"])
	assert.Equal(t, 1, scores["T"])
	assert.Equal(t, 1, scores["J"])
}

func TestCalculateScores_InitializesAllReferencedDimensions(t *testing.T) {
	s := NewScoringService()
	tmpl := mbtiTestTemplate(t)

	scores := s.CalculateScores(nil, tmpl)
	for _, dim := range []string{"E", "I", "T", "F", "J", "P"} {
		v, ok := scores[dim]
		assert.True(t, ok, "dimension %s should be initialized", dim)
		assert.Equal(t, 0, v)
	}
}

func TestCalculateScores_OrderIndependent(t *testing.T) {
	s := NewScoringService()
	tmpl := mbtiTestTemplate(t)

	forward := []model.UserAnswer{
		{QuestionID: "q1", SelectedOptionID: strptr("a")},
		{QuestionID: "q2", SelectedOptionID: strptr("b")},
	}
	backward := []model.UserAnswer{
		{QuestionID: "q2", SelectedOptionID: strptr("b")},
		{QuestionID: "q1", SelectedOptionID: strptr("a")},
	}

	assert.Equal(t, s.CalculateScores(forward, tmpl), s.CalculateScores(backward, tmpl))
}

func TestCalculateScores_SkipsUnknownReferences(t *testing.T) {
	s := NewScoringService()
	tmpl := mbtiTestTemplate(t)

	answers := []model.UserAnswer{
		{QuestionID: "ghost", SelectedOptionID: strptr("a")},
		{QuestionID: "q1", SelectedOptionID: strptr("zz")},
		{QuestionID: "q1"}, // no option selected
		{QuestionID: "q1", SelectedOptionID: strptr("b")},
	}

	scores := s.CalculateScores(answers, tmpl)
	assert.Equal(t, 0, scores["E"])
	assert.Equal(t, 2, scores["I"])
}

func TestCalculateScores_FlatPointsFallback(t *testing.T) {
	s := NewScoringService()
	tmpl := &model.AssessmentTemplate{TestType: "IQ"}
	require.NoError(t, tmpl.SetQuestions([]model.TemplateQuestion{
		{
			ID: "p1", Dimension: "LOGIC", Points: 3,
			Options: []model.TemplateOption{{ID: "a"}, {ID: "b"}},
		},
		{
			ID: "p2", Dimension: "LOGIC", // no points set, defaults to 1
			Options: []model.TemplateOption{{ID: "a"}},
		},
	}))

	answers := []model.UserAnswer{
		{QuestionID: "p1", SelectedOptionID: strptr("b")},
		{QuestionID: "p2", SelectedOptionID: strptr("a")},
	}

	scores := s.CalculateScores(answers, tmpl)
	assert.Equal(t, 4, scores["LOGIC"])
}

func TestDetermineResultCode_PicksStrictlyHigherPole(t *testing.T) {
	s := NewScoringService()

	code := s.DetermineResultCode(model.ScoreVector{
		"E": 5, "I": 2,
		"S": 1, "N": 4,
		"T": 6, "F": 3,
		"J": 0, "P": 7,
	}, "MBTI")
	assert.Equal(t, "ENTP", code)
}

func TestDetermineResultCode_TiesResolveToSecondPole(t *testing.T) {
	s := NewScoringService()

	code := s.DetermineResultCode(model.ScoreVector{}, "MBTI")
	assert.Equal(t, "INFP", code)

	code = s.DetermineResultCode(model.ScoreVector{"E": 3, "I": 3, "S": 2, "N": 2}, "MBTI")
	assert.Equal(t, "INFP", code)
}

func TestDetermineResultCode_UnsupportedTestType(t *testing.T) {
	s := NewScoringService()

	assert.Equal(t, UnknownResultCode, s.DetermineResultCode(model.ScoreVector{"LOGIC": 9}, "IQ"))
}

func TestDetermineResultCode_Deterministic(t *testing.T) {
	s := NewScoringService()
	scores := model.ScoreVector{"E": 4, "I": 1, "S": 3, "N": 3, "T": 2, "F": 5, "J": 1, "P": 1}

	first := s.DetermineResultCode(scores, "MBTI")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.DetermineResultCode(scores, "MBTI"))
	}
	assert.Equal(t, "ENFP", first)
}
