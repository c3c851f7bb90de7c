package service

import (
	"time"

	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/util"
)

// CounselingService books and manages one-on-one counselling appointments.
type CounselingService struct {
	Sessions *repository.CounselingRepository
	Users    *repository.UserRepository
}

func NewCounselingService(sessions *repository.CounselingRepository, users *repository.UserRepository) *CounselingService {
	return &CounselingService{Sessions: sessions, Users: users}
}

type BookSessionRequest struct {
	CounselorID     uint      `json:"counselorId" binding:"required"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	SessionType     string    `json:"sessionType"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes"`
}

type FeedbackRequest struct {
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Feedback string `json:"feedback"`
}

func (s *CounselingService) BookSession(userID uint, req BookSessionRequest) (*model.CounselingSession, error) {
	counselor, err := s.Users.FindByID(req.CounselorID)
	if err != nil {
		return nil, asNotFound(err, util.ErrUserNotFound)
	}
	if counselor.Role != model.RoleCounselor || !counselor.IsActive {
		return nil, util.ValidationError("selected user is not an available counselor")
	}
	if req.ScheduledAt.Before(time.Now()) {
		return nil, util.ValidationError("scheduledAt must be in the future")
	}

	session := &model.CounselingSession{
		UserID:          userID,
		CounselorID:     req.CounselorID,
		ScheduledAt:     req.ScheduledAt,
		SessionType:     model.IndividualCounseling,
		Status:          model.CounselingScheduled,
		SessionNotes:    req.Notes,
		DurationMinutes: 60,
	}
	if req.SessionType != "" {
		session.SessionType = model.CounselingType(req.SessionType)
	}
	if req.DurationMinutes > 0 {
		session.DurationMinutes = req.DurationMinutes
	}

	if err := s.Sessions.Create(session); err != nil {
		return nil, util.StorageError(err)
	}
	return session, nil
}

func (s *CounselingService) GetSession(id string, requesterID uint) (*model.CounselingSession, error) {
	session, err := s.Sessions.FindByID(id)
	if err != nil {
		return nil, asNotFound(err, util.ErrBookingNotFound)
	}
	if session.UserID != requesterID && session.CounselorID != requesterID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *CounselingService) ListUserSessions(userID uint, page, limit int) ([]model.CounselingSession, int64, error) {
	sessions, total, err := s.Sessions.FindByUser(userID, page, limit)
	if err != nil {
		return nil, 0, util.StorageError(err)
	}
	return sessions, total, nil
}

func (s *CounselingService) ListCounselorSessions(counselorID uint, page, limit int) ([]model.CounselingSession, int64, error) {
	sessions, total, err := s.Sessions.FindByCounselor(counselorID, page, limit)
	if err != nil {
		return nil, 0, util.StorageError(err)
	}
	return sessions, total, nil
}

// UpdateStatus moves an appointment through its lifecycle. Only the assigned
// counselor may confirm or complete; either party may cancel.
func (s *CounselingService) UpdateStatus(id string, requesterID uint, status model.CounselingStatus) (*model.CounselingSession, error) {
	session, err := s.Sessions.FindByID(id)
	if err != nil {
		return nil, asNotFound(err, util.ErrBookingNotFound)
	}

	switch status {
	case model.CounselingConfirmed, model.CounselingCompleted:
		if session.CounselorID != requesterID {
			return nil, util.ErrPermissionDenied
		}
	case model.CounselingCancelled:
		if session.UserID != requesterID && session.CounselorID != requesterID {
			return nil, util.ErrPermissionDenied
		}
	default:
		return nil, util.ValidationError("unsupported status transition")
	}

	if session.Status == model.CounselingCompleted || session.Status == model.CounselingCancelled {
		return nil, util.ErrSessionFinished
	}

	session.Status = status
	if status == model.CounselingCompleted {
		now := time.Now()
		session.EndedAt = &now
	}

	if err := s.Sessions.Save(session); err != nil {
		return nil, util.StorageError(err)
	}
	return session, nil
}

func (s *CounselingService) AddFeedback(id string, userID uint, req FeedbackRequest) (*model.CounselingSession, error) {
	session, err := s.Sessions.FindByID(id)
	if err != nil {
		return nil, asNotFound(err, util.ErrBookingNotFound)
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if session.Status != model.CounselingCompleted {
		return nil, util.ErrSessionNotActive
	}

	rating := req.Rating
	session.SessionRating = &rating
	session.ClientFeedback = req.Feedback

	if err := s.Sessions.Save(session); err != nil {
		return nil, util.StorageError(err)
	}
	return session, nil
}
