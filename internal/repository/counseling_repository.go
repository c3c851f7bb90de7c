package repository

import (
	"zplus_counselling_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounselingRepository struct {
	DB *gorm.DB
}

func NewCounselingRepository(db *gorm.DB) *CounselingRepository {
	return &CounselingRepository{DB: db}
}

func (r *CounselingRepository) Create(s *model.CounselingSession) error {
	return r.DB.Create(s).Error
}

func (r *CounselingRepository) FindByID(id string) (*model.CounselingSession, error) {
	var s model.CounselingSession
	err := r.DB.Preload("User").Preload("Counselor").Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *CounselingRepository) FindByUser(userID uint, page, limit int) ([]model.CounselingSession, int64, error) {
	var ss []model.CounselingSession
	var total int64
	query := r.DB.Model(&model.CounselingSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Counselor").Order("scheduled_at desc").
		Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

func (r *CounselingRepository) FindByCounselor(counselorID uint, page, limit int) ([]model.CounselingSession, int64, error) {
	var ss []model.CounselingSession
	var total int64
	query := r.DB.Model(&model.CounselingSession{}).Where("counselor_id = ?", counselorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("User").Order("scheduled_at desc").
		Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

// Save persists the session's own columns; preloaded associations are never
// written back.
func (r *CounselingRepository) Save(s *model.CounselingSession) error {
	return r.DB.Omit(clause.Associations).Save(s).Error
}
