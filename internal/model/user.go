package model

import (
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleCounselor UserRole = "counselor"
	RoleAdmin     UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	FullName        string    `gorm:"size:100;not null" json:"fullName"`
	Email           string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"size:100;not null" json:"-"`
	Role            UserRole  `gorm:"size:20;default:'user'" json:"role"`
	Phone           string    `gorm:"size:20" json:"phone,omitempty"`
	Avatar          string    `gorm:"size:255" json:"avatar,omitempty"`
	IsActive        bool      `gorm:"default:true" json:"isActive"`
	IsEmailVerified bool      `gorm:"default:false" json:"isEmailVerified"`
	LastLogin       time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
