package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
)

// TestRegister 测试用户注册功能
func TestRegister(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	user := &model.User{
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "password123",
	}

	// 测试成功注册
	mockRepo.On("FindByUsername", "testuser").Return(nil, nil)
	mockRepo.On("Create", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.Register(user)
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash)
	mockRepo.AssertExpectations(t)

	// 测试用户名已存在
	mockRepo.On("FindByUsername", "existinguser").Return(&model.User{}, nil)
	user.Username = "existinguser"
	err = service.Register(user)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserExists))
}

// TestLogin 测试用户登录功能
func TestLogin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:           1,
		Email:        "test@example.com",
		PasswordHash: string(hash),
	}

	mockRepo.On("FindByEmail", "test@example.com").Return(user, nil)

	// 测试成功登录
	got, err := service.Login("test@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, 1, got.ID)

	// 测试密码错误
	_, err = service.Login("test@example.com", "wrongpassword")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	// 测试未知邮箱
	mockRepo.On("FindByEmail", "unknown@example.com").Return(nil, nil)
	_, err = service.Login("unknown@example.com", "password123")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

// TestUpdateProfile 测试更新用户资料功能
func TestUpdateProfile(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	user := &model.User{
		ID:       1,
		Username: "updateduser",
		Bio:      "Updated bio",
	}

	// 测试成功更新
	mockRepo.On("FindByID", 1).Return(user, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.User")).Return(nil)

	err := service.UpdateUser(user)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// 测试用户不存在
	mockRepo.On("FindByID", 999).Return(nil, nil)
	user.ID = 999
	err = service.UpdateUser(user)
	assert.Error(t, err)
}

// TestDeleteAccount 测试注销账户：删除委托给仓库级联清理
func TestDeleteAccount(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	mockRepo.On("FindByID", 1).Return(&model.User{ID: 1}, nil)
	mockRepo.On("Delete", 1).Return(nil)

	assert.NoError(t, service.DeleteAccount(1))
	mockRepo.AssertExpectations(t)

	// 不存在的用户
	mockRepo.On("FindByID", 999).Return(nil, nil)
	err := service.DeleteAccount(999)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserNotFound))
}

// TestTokenBlacklist 测试令牌黑名单
func TestTokenBlacklist(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo)

	assert.False(t, service.IsTokenBlacklisted("some-token"))

	assert.NoError(t, service.Logout("some-token"))
	assert.True(t, service.IsTokenBlacklisted("some-token"))
	assert.False(t, service.IsTokenBlacklisted("other-token"))
}
