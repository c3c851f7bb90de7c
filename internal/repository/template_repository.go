package repository

import (
	"context"
	"encoding/json"
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const templateCacheKeyPrefix = "assessment:template:type:"

// TemplateRepository reads and writes assessment templates. Active-template
// lookups by test type are cached in Redis since every session operation
// loads the template; admin writes invalidate the cached entry.
type TemplateRepository struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewTemplateRepository(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *TemplateRepository {
	return &TemplateRepository{DB: db, Redis: rdb, CacheTTL: cacheTTL}
}

func (r *TemplateRepository) Create(t *model.AssessmentTemplate) error {
	if err := r.DB.Create(t).Error; err != nil {
		return err
	}
	r.invalidate(t.TestType)
	return nil
}

func (r *TemplateRepository) Update(t *model.AssessmentTemplate) error {
	if err := r.DB.Save(t).Error; err != nil {
		return err
	}
	r.invalidate(t.TestType)
	return nil
}

func (r *TemplateRepository) FindByID(id string) (*model.AssessmentTemplate, error) {
	var t model.AssessmentTemplate
	err := r.DB.Where("id = ?", id).First(&t).Error
	return &t, err
}

func (r *TemplateRepository) FindActiveByType(testType string) (*model.AssessmentTemplate, error) {
	if cached := r.fromCache(testType); cached != nil {
		return cached, nil
	}

	var t model.AssessmentTemplate
	err := r.DB.Where("test_type = ? AND is_active = ?", testType, true).First(&t).Error
	if err != nil {
		return nil, err
	}

	r.toCache(&t)
	return &t, nil
}

func (r *TemplateRepository) ListActive() ([]model.AssessmentTemplate, error) {
	var ts []model.AssessmentTemplate
	err := r.DB.Where("is_active = ?", true).Order("created_at desc").Find(&ts).Error
	return ts, err
}

func (r *TemplateRepository) List(page, limit int) ([]model.AssessmentTemplate, int64, error) {
	var ts []model.AssessmentTemplate
	var total int64
	query := r.DB.Model(&model.AssessmentTemplate{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ts).Error
	return ts, total, err
}

func (r *TemplateRepository) SetActive(id string, active bool) error {
	var t model.AssessmentTemplate
	if err := r.DB.Select("test_type").Where("id = ?", id).First(&t).Error; err != nil {
		return err
	}
	if err := r.DB.Model(&model.AssessmentTemplate{}).Where("id = ?", id).
		Update("is_active", active).Error; err != nil {
		return err
	}
	r.invalidate(t.TestType)
	return nil
}

func (r *TemplateRepository) CountByType(testType string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentTemplate{}).
		Where("test_type = ?", testType).Count(&count).Error
	return count, err
}

func (r *TemplateRepository) fromCache(testType string) *model.AssessmentTemplate {
	if r.Redis == nil {
		return nil
	}
	ctx := context.Background()
	val, err := r.Redis.Get(ctx, templateCacheKeyPrefix+testType).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Log.Warn("template cache read failed", zap.Error(err))
		return nil
	}
	var t model.AssessmentTemplate
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil
	}
	return &t
}

func (r *TemplateRepository) toCache(t *model.AssessmentTemplate) {
	if r.Redis == nil {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	ctx := context.Background()
	if err := r.Redis.Set(ctx, templateCacheKeyPrefix+t.TestType, raw, r.CacheTTL).Err(); err != nil {
		logger.Log.Warn("template cache write failed", zap.Error(err))
	}
}

func (r *TemplateRepository) invalidate(testType string) {
	if r.Redis == nil {
		return
	}
	r.Redis.Del(context.Background(), templateCacheKeyPrefix+testType)
}
