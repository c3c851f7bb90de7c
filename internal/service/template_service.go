package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/util"
	"zplus_counselling_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TemplateService is the admin surface for assessment templates: create,
// update, activate, list, plus first-boot seeding of the built-in tests.
type TemplateService struct {
	Templates *repository.TemplateRepository
}

func NewTemplateService(templates *repository.TemplateRepository) *TemplateService {
	return &TemplateService{Templates: templates}
}

type CreateTemplateRequest struct {
	TestType             string                      `json:"testType" binding:"required"`
	Version              string                      `json:"version"`
	Title                string                      `json:"title" binding:"required"`
	Description          string                      `json:"description"`
	Category             string                      `json:"category"`
	EstimatedTimeMinutes int                         `json:"estimatedTimeMinutes"`
	Instructions         []string                    `json:"instructions"`
	Dimensions           []model.TemplateDimension   `json:"dimensions"`
	Questions            []model.TemplateQuestion    `json:"questions" binding:"required"`
	ScoringAlgorithm     *model.ScoringAlgorithm     `json:"scoringAlgorithm"`
	ResultTypes          map[string]model.ResultType `json:"resultTypes"`
}

type UpdateTemplateRequest struct {
	Title                string                      `json:"title"`
	Description          string                      `json:"description"`
	Category             string                      `json:"category"`
	EstimatedTimeMinutes int                         `json:"estimatedTimeMinutes"`
	Instructions         []string                    `json:"instructions"`
	Questions            []model.TemplateQuestion    `json:"questions"`
	ResultTypes          map[string]model.ResultType `json:"resultTypes"`
}

func (s *TemplateService) CreateTemplate(req CreateTemplateRequest) (*model.AssessmentTemplate, error) {
	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}

	t := &model.AssessmentTemplate{
		TestType:             req.TestType,
		Version:              req.Version,
		Title:                req.Title,
		Description:          req.Description,
		Category:             req.Category,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		TotalQuestions:       len(req.Questions),
		IsActive:             true,
	}
	if err := fillDocuments(t, req.Instructions, req.Dimensions, req.Questions, req.ScoringAlgorithm, req.ResultTypes); err != nil {
		return nil, util.StorageError(err)
	}

	if err := s.Templates.Create(t); err != nil {
		return nil, util.StorageError(err)
	}
	logger.Log.Info("assessment template created",
		zap.String("templateId", t.ID), zap.String("testType", t.TestType))
	return t, nil
}

func (s *TemplateService) UpdateTemplate(id string, req UpdateTemplateRequest) (*model.AssessmentTemplate, error) {
	t, err := s.Templates.FindByID(id)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}

	if req.Title != "" {
		t.Title = req.Title
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.Category != "" {
		t.Category = req.Category
	}
	if req.EstimatedTimeMinutes > 0 {
		t.EstimatedTimeMinutes = req.EstimatedTimeMinutes
	}
	if req.Instructions != nil {
		if err := t.SetInstructions(req.Instructions); err != nil {
			return nil, util.StorageError(err)
		}
	}
	if req.Questions != nil {
		if err := validateQuestions(req.Questions); err != nil {
			return nil, err
		}
		if err := t.SetQuestions(req.Questions); err != nil {
			return nil, util.StorageError(err)
		}
		t.TotalQuestions = len(req.Questions)
	}
	if req.ResultTypes != nil {
		if err := t.SetResultTypes(req.ResultTypes); err != nil {
			return nil, util.StorageError(err)
		}
	}

	if err := s.Templates.Update(t); err != nil {
		return nil, util.StorageError(err)
	}
	return t, nil
}

func (s *TemplateService) GetTemplate(id string) (*model.AssessmentTemplate, error) {
	t, err := s.Templates.FindByID(id)
	if err != nil {
		return nil, asNotFound(err, util.ErrTemplateNotFound)
	}
	return t, nil
}

func (s *TemplateService) ListTemplates(page, limit int) ([]model.AssessmentTemplate, int64, error) {
	ts, total, err := s.Templates.List(page, limit)
	if err != nil {
		return nil, 0, util.StorageError(err)
	}
	return ts, total, nil
}

func (s *TemplateService) SetTemplateActive(id string, active bool) error {
	if err := s.Templates.SetActive(id, active); err != nil {
		return asNotFound(err, util.ErrTemplateNotFound)
	}
	return nil
}

func validateQuestions(qs []model.TemplateQuestion) error {
	if len(qs) == 0 {
		return util.ValidationError("template requires at least one question")
	}
	seen := make(map[string]bool, len(qs))
	for i, q := range qs {
		if q.ID == "" {
			return util.ValidationError(fmt.Sprintf("question %d is missing an id", i+1))
		}
		if seen[q.ID] {
			return util.ValidationError(fmt.Sprintf("duplicate question id %q", q.ID))
		}
		seen[q.ID] = true
	}
	return nil
}

func fillDocuments(t *model.AssessmentTemplate, instructions []string, dimensions []model.TemplateDimension,
	questions []model.TemplateQuestion, algorithm *model.ScoringAlgorithm, resultTypes map[string]model.ResultType) error {
	if instructions != nil {
		if err := t.SetInstructions(instructions); err != nil {
			return err
		}
	}
	if dimensions != nil {
		raw, err := json.Marshal(dimensions)
		if err != nil {
			return err
		}
		t.Dimensions = raw
	}
	if err := t.SetQuestions(questions); err != nil {
		return err
	}
	if algorithm != nil {
		raw, err := json.Marshal(algorithm)
		if err != nil {
			return err
		}
		t.ScoringAlgorithm = raw
	}
	if resultTypes != nil {
		if err := t.SetResultTypes(resultTypes); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultTemplates installs the built-in MBTI and IQ templates on first
// boot. Seeding is idempotent: a test type already present is left alone.
func (s *TemplateService) SeedDefaultTemplates() error {
	seeds := []*model.AssessmentTemplate{mbtiTemplate(), iqTemplate()}
	for _, seed := range seeds {
		count, err := s.Templates.CountByType(seed.TestType)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return util.StorageError(err)
		}
		if count > 0 {
			continue
		}
		if err := s.Templates.Create(seed); err != nil {
			return util.StorageError(err)
		}
		logger.Log.Info("seeded assessment template", zap.String("testType", seed.TestType))
	}
	return nil
}

func mbtiTemplate() *model.AssessmentTemplate {
	t := &model.AssessmentTemplate{
		TestType:             "MBTI",
		Version:              "1.0",
		Title:                "MBTI Personality Assessment",
		Description:          "Discover your personality type across four dichotomies.",
		Category:             "personality",
		EstimatedTimeMinutes: 15,
		IsActive:             true,
	}
	_ = t.SetInstructions([]string{
		"Answer every question honestly; there are no right or wrong answers.",
		"Pick the option that describes you most of the time, not in one situation.",
	})

	dims := []model.TemplateDimension{
		{Code: "E", Name: "Extraversion"}, {Code: "I", Name: "Introversion"},
		{Code: "S", Name: "Sensing"}, {Code: "N", Name: "Intuition"},
		{Code: "T", Name: "Thinking"}, {Code: "F", Name: "Feeling"},
		{Code: "J", Name: "Judging"}, {Code: "P", Name: "Perceiving"},
	}
	raw, _ := json.Marshal(dims)
	t.Dimensions = raw

	questions := []model.TemplateQuestion{
		{
			ID: "mbti_q1", Text: "At a party you usually", Type: "MULTIPLE_CHOICE", Required: true,
			Options: []model.TemplateOption{
				{ID: "a", Text: "Talk with many people, including strangers", Weights: map[string]int{"E": 2}},
				{ID: "b", Text: "Stay with a few people you already know", Weights: map[string]int{"I": 2}},
			},
		},
		{
			ID: "mbti_q2", Text: "When learning something new you prefer", Type: "MULTIPLE_CHOICE", Required: true,
			Options: []model.TemplateOption{
				{ID: "a", Text: "Concrete facts and proven methods", Weights: map[string]int{"S": 2}},
				{ID: "b", Text: "Concepts, patterns and possibilities", Weights: map[string]int{"N": 2}},
			},
		},
		{
			ID: "mbti_q3", Text: "Decisions are best made by", Type: "MULTIPLE_CHOICE", Required: true,
			Options: []model.TemplateOption{
				{ID: "a", Text: "Weighing the logic of the situation", Weights: map[string]int{"T": 2}},
				{ID: "b", Text: "Considering how people will be affected", Weights: map[string]int{"F": 2}},
			},
		},
		{
			ID: "mbti_q4", Text: "Your work style is closer to", Type: "MULTIPLE_CHOICE", Required: true,
			Options: []model.TemplateOption{
				{ID: "a", Text: "Planned, scheduled and settled", Weights: map[string]int{"J": 2}},
				{ID: "b", Text: "Flexible, spontaneous and open", Weights: map[string]int{"P": 2}},
			},
		},
	}
	_ = t.SetQuestions(questions)
	t.TotalQuestions = len(questions)

	algo, _ := json.Marshal(model.ScoringAlgorithm{Type: "DICHOTOMY", Method: "WEIGHTED_SUM"})
	t.ScoringAlgorithm = algo

	_ = t.SetResultTypes(map[string]model.ResultType{
		"INFP": {
			Title:             "INFP",
			Nickname:          "The Mediator",
			Description:       "Idealistic and loyal to their values, curious and adaptable.",
			Strengths:         []string{"Empathy", "Creativity", "Open-mindedness"},
			Weaknesses:        []string{"Overly idealistic", "Conflict-averse"},
			CareerSuggestions: []string{"Writer", "Counselor", "Designer"},
		},
		"ESTJ": {
			Title:             "ESTJ",
			Nickname:          "The Executive",
			Description:       "Organized, decisive and direct, at home managing people and projects.",
			Strengths:         []string{"Organization", "Dedication", "Directness"},
			Weaknesses:        []string{"Inflexible", "Impatient with ambiguity"},
			CareerSuggestions: []string{"Project Manager", "Operations Lead", "Administrator"},
		},
	})
	return t
}

func iqTemplate() *model.AssessmentTemplate {
	t := &model.AssessmentTemplate{
		TestType:             "IQ",
		Version:              "1.0",
		Title:                "Logical Reasoning Test",
		Description:          "A short logical reasoning exercise scored by points per correct pattern.",
		Category:             "cognitive",
		EstimatedTimeMinutes: 10,
		IsActive:             true,
	}
	_ = t.SetInstructions([]string{"Each question has one best answer. Work quickly but carefully."})

	// Point-based questions carry a dimension and flat points instead of
	// per-option weights.
	questions := []model.TemplateQuestion{
		{
			ID: "iq_q1", Text: "2, 4, 8, 16, ... what comes next?", Type: "MULTIPLE_CHOICE",
			Dimension: "LOGIC", Points: 2, Required: true,
			Options: []model.TemplateOption{
				{ID: "a", Text: "24"}, {ID: "b", Text: "32"}, {ID: "c", Text: "30"},
			},
			CorrectAnswer: "b",
		},
		{
			ID: "iq_q2", Text: "Which shape completes the sequence?", Type: "MULTIPLE_CHOICE",
			Dimension: "PATTERN", Points: 3, Required: true, TimeLimit: 60,
			Options: []model.TemplateOption{
				{ID: "a", Text: "Triangle"}, {ID: "b", Text: "Square"}, {ID: "c", Text: "Circle"},
			},
			CorrectAnswer: "a",
		},
	}
	_ = t.SetQuestions(questions)
	t.TotalQuestions = len(questions)

	algo, _ := json.Marshal(model.ScoringAlgorithm{Type: "POINTS", Method: "SUM"})
	t.ScoringAlgorithm = algo
	return t
}
