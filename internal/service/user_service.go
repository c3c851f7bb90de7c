package service

import (
	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/util"
)

type UserService struct {
	Users *repository.UserRepository
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{Users: users}
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar"`
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, asNotFound(err, util.ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, asNotFound(err, util.ErrUserNotFound)
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.Users.Update(user); err != nil {
		return nil, util.StorageError(err)
	}
	return user, nil
}

func (s *UserService) ListCounselors() ([]model.User, error) {
	counselors, err := s.Users.ListCounselors()
	if err != nil {
		return nil, util.StorageError(err)
	}
	return counselors, nil
}
