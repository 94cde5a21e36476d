package service

import (
	"github.com/stretchr/testify/mock"

	"github.com/personage-hub/YaTube/internal/model"
)

// MockUserRepository 是 UserRepository 接口的模拟实现
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(username string) (*model.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserRepository) Count() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// MockBlogRepository 是 BlogRepository 接口的模拟实现
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) CreatePost(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockBlogRepository) GetPostByID(id int) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockBlogRepository) UpdatePost(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockBlogRepository) DeletePost(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockBlogRepository) ListPosts(page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockBlogRepository) ListGroupPosts(groupID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(groupID, page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockBlogRepository) ListAuthorPosts(authorID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(authorID, page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockBlogRepository) ListFollowingPosts(followerID, page, pageSize int) ([]*model.Post, int, error) {
	args := m.Called(followerID, page, pageSize)
	return args.Get(0).([]*model.Post), args.Int(1), args.Error(2)
}

func (m *MockBlogRepository) CreateGroup(group *model.Group) error {
	args := m.Called(group)
	return args.Error(0)
}

func (m *MockBlogRepository) GetGroupByID(id int) (*model.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockBlogRepository) GetGroupBySlug(slug string) (*model.Group, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockBlogRepository) ListGroups() ([]*model.Group, error) {
	args := m.Called()
	return args.Get(0).([]*model.Group), args.Error(1)
}

func (m *MockBlogRepository) DeleteGroup(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockBlogRepository) CreateComment(comment *model.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockBlogRepository) GetCommentsByPostID(postID int) ([]*model.Comment, error) {
	args := m.Called(postID)
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockBlogRepository) CountComments(postID int) (int, error) {
	args := m.Called(postID)
	return args.Int(0), args.Error(1)
}

func (m *MockBlogRepository) CreateFollow(follow *model.Follow) error {
	args := m.Called(follow)
	return args.Error(0)
}

func (m *MockBlogRepository) DeleteFollow(followerID, authorID int) error {
	args := m.Called(followerID, authorID)
	return args.Error(0)
}

func (m *MockBlogRepository) IsFollowing(followerID, authorID int) (bool, error) {
	args := m.Called(followerID, authorID)
	return args.Bool(0), args.Error(1)
}
