package repository

import (
	"errors"
	"strings"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/util"

	"gorm.io/gorm"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Append stores one answer. The (session, question) unique index keeps the
// log append-only: a second answer for the same question is rejected.
func (r *AnswerRepository) Append(a *model.UserAnswer) error {
	err := r.DB.Create(a).Error
	if err != nil && isDuplicateKey(err) {
		return util.ErrDuplicateAnswer
	}
	return err
}

func (r *AnswerRepository) ListBySession(sessionID string) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Where("session_id = ?", sessionID).
		Order("question_number asc").Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserAnswer{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// isDuplicateKey matches the driver-specific unique violation message
// (MySQL 1062 "Duplicate entry", SQLite "UNIQUE constraint failed").
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
