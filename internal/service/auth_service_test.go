package service

import (
	"testing"
	"time"

	"zplus_counselling_backend/internal/config"
	"zplus_counselling_backend/internal/model"
	"zplus_counselling_backend/internal/repository"
	"zplus_counselling_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	reg, err := svc.Register(RegisterRequest{
		FullName: "Test User",
		Email:    "user@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, model.RoleUser, reg.User.Role)

	claims, err := util.ParseJWT(reg.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	login, err := svc.Login(LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(RegisterRequest{
		FullName: "Test User", Email: "user@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{
		FullName: "Second", Email: "user@example.com", Password: "password456",
	})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(RegisterRequest{
		FullName: "Test User", Email: "user@example.com", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredential)

	_, err = svc.Login(LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, util.ErrInvalidCredential)
}
