package repository

import (
	"zplus_counselling_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(result *model.TestResult) error {
	return r.DB.Create(result).Error
}

func (r *ResultRepository) FindBySessionID(sessionID string) (*model.TestResult, error) {
	var result model.TestResult
	err := r.DB.Where("session_id = ?", sessionID).First(&result).Error
	return &result, err
}

func (r *ResultRepository) FindByUser(userID uint) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at desc").Find(&results).Error
	return results, err
}

func (r *ResultRepository) ExistsByUserAndTestType(userID uint, testType string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TestResult{}).
		Where("user_id = ? AND test_type = ? AND is_completed = ?", userID, testType, true).
		Count(&count).Error
	return count > 0, err
}
