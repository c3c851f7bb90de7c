package repository

import (
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/util"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.AssessmentSession) error {
	return r.DB.Create(s).Error
}

func (r *SessionRepository) FindByID(id string) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *SessionRepository) FindActive(userID uint, templateID string) (*model.AssessmentSession, error) {
	var s model.AssessmentSession
	err := r.DB.Where("user_id = ? AND template_id = ? AND status = ?",
		userID, templateID, model.SessionInProgress).First(&s).Error
	return &s, err
}

func (r *SessionRepository) HasActive(userID uint, templateID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentSession{}).
		Where("user_id = ? AND template_id = ? AND status = ?",
			userID, templateID, model.SessionInProgress).
		Count(&count).Error
	return count > 0, err
}

// Save persists session mutations guarded by the optimistic lock version.
// When the row was modified since it was loaded no rows match and the write
// is rejected with a conflict; on success the in-memory version advances so
// the same instance can be saved again.
func (r *SessionRepository) Save(s *model.AssessmentSession) error {
	res := r.DB.Model(&model.AssessmentSession{}).
		Where("id = ? AND lock_version = ?", s.ID, s.LockVersion).
		Updates(map[string]interface{}{
			"status":                 s.Status,
			"current_question_index": s.CurrentQuestionIndex,
			"completed_at":           s.CompletedAt,
			"time_spent_seconds":     s.TimeSpentSeconds,
			"lock_version":           s.LockVersion + 1,
			"updated_at":             time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrentUpdate
	}
	s.LockVersion++
	return nil
}

// AppendAnswerAndAdvance records one answer and persists the advanced
// question index in a single transaction, so a rejected answer never leaves
// the session pointer moved and vice versa. The session must already carry
// the incremented index.
func (r *SessionRepository) AppendAnswerAndAdvance(s *model.AssessmentSession, a *model.UserAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			if isDuplicateKey(err) {
				return util.ErrDuplicateAnswer
			}
			return err
		}
		res := tx.Model(&model.AssessmentSession{}).
			Where("id = ? AND lock_version = ?", s.ID, s.LockVersion).
			Updates(map[string]interface{}{
				"current_question_index": s.CurrentQuestionIndex,
				"lock_version":           s.LockVersion + 1,
				"updated_at":             time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrConcurrentUpdate
		}
		s.LockVersion++
		return nil
	})
}

func (r *SessionRepository) FindByUser(userID uint) ([]model.AssessmentSession, error) {
	var ss []model.AssessmentSession
	err := r.DB.Where("user_id = ?", userID).
		Order("started_at desc").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) FindByUserAndStatus(userID uint, status model.SessionStatus) ([]model.AssessmentSession, error) {
	var ss []model.AssessmentSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, status).
		Order("started_at desc").Find(&ss).Error
	return ss, err
}

// FindStaleInProgress returns in-progress sessions started before the cutoff,
// for the expiry sweep.
func (r *SessionRepository) FindStaleInProgress(cutoff time.Time) ([]model.AssessmentSession, error) {
	var ss []model.AssessmentSession
	err := r.DB.Where("status = ? AND started_at < ?", model.SessionInProgress, cutoff).
		Find(&ss).Error
	return ss, err
}
