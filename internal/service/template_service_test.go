package service

import (
	"testing"
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newTemplateService(t *testing.T) *TemplateService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.AssessmentTemplate{}))

	return NewTemplateService(repository.NewTemplateRepository(db, nil, time.Minute))
}

func TestSeedDefaultTemplates_Idempotent(t *testing.T) {
	svc := newTemplateService(t)

	require.NoError(t, svc.SeedDefaultTemplates())
	_, firstTotal, err := svc.ListTemplates(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), firstTotal)

	require.NoError(t, svc.SeedDefaultTemplates())
	_, secondTotal, err := svc.ListTemplates(1, 10)
	require.NoError(t, err)
	assert.Equal(t, firstTotal, secondTotal)
}

func TestSeededMBTITemplate_ScoresEndToEnd(t *testing.T) {
	svc := newTemplateService(t)
	require.NoError(t, svc.SeedDefaultTemplates())

	tmpl, err := svc.Templates.FindActiveByType("MBTI")
	require.NoError(t, err)
	assert.Equal(t, 4, tmpl.TotalQuestions)

	questions, err := tmpl.ParseQuestions()
	require.NoError(t, err)

	// Answer every question with its first option.
	scoring := NewScoringService()
	var answers []model.UserAnswer
	for _, q := range questions {
		opt := q.Options[0].ID
		answers = append(answers, model.UserAnswer{QuestionID: q.ID, SelectedOptionID: &opt})
	}

	scores := scoring.CalculateScores(answers, tmpl)
	assert.Equal(t, "ESTJ", scoring.DetermineResultCode(scores, "MBTI"))
}

func TestCreateTemplate_Validation(t *testing.T) {
	svc := newTemplateService(t)

	_, err := svc.CreateTemplate(CreateTemplateRequest{
		TestType: "CUSTOM", Title: "Custom",
	})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.CreateTemplate(CreateTemplateRequest{
		TestType: "CUSTOM", Title: "Custom",
		Questions: []model.TemplateQuestion{{ID: "q1"}, {ID: "q1"}},
	})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestCreateAndUpdateTemplate(t *testing.T) {
	svc := newTemplateService(t)

	created, err := svc.CreateTemplate(CreateTemplateRequest{
		TestType: "CUSTOM", Title: "Custom",
		Questions: []model.TemplateQuestion{{ID: "q1", Text: "one"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.TotalQuestions)
	assert.True(t, created.IsActive)

	updated, err := svc.UpdateTemplate(created.ID, UpdateTemplateRequest{
		Title: "Renamed",
		Questions: []model.TemplateQuestion{
			{ID: "q1", Text: "one"},
			{ID: "q2", Text: "two"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2, updated.TotalQuestions)

	_, err = svc.UpdateTemplate("missing", UpdateTemplateRequest{Title: "x"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}
