package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
)

func makePosts(n int) []*model.Post {
	posts := make([]*model.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = &model.Post{
			ID:       i + 1,
			Text:     fmt.Sprintf("post %d", i+1),
			AuthorID: 1,
		}
	}
	return posts
}

// TestHomeFeedPagination 测试首页信息流分页：15条帖子、每页10条应分为两页
func TestHomeFeedPagination(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	mockBlog.On("ListPosts", 1, 10).Return(makePosts(10), 15, nil)

	page, err := service.HomeFeed(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 15, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	mockBlog.On("ListPosts", 2, 10).Return(makePosts(5), 15, nil)

	page, err = service.HomeFeed(2)
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrevious)

	mockBlog.AssertExpectations(t)
}

// TestHomeFeedPageClamping 测试页码钳制：非法页码回落到1，超出范围收敛到最后一页
func TestHomeFeedPageClamping(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	// 页码小于1回落到第1页
	mockBlog.On("ListPosts", 1, 10).Return(makePosts(10), 15, nil)

	page, err := service.HomeFeed(0)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Number)

	page, err = service.HomeFeed(-3)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Number)

	// 超出范围的页码收敛到最后一页并重新取数
	mockBlog.On("ListPosts", 99, 10).Return([]*model.Post{}, 15, nil)
	mockBlog.On("ListPosts", 2, 10).Return(makePosts(5), 15, nil)

	page, err = service.HomeFeed(99)
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Items, 5)

	mockBlog.AssertExpectations(t)
}

// TestHomeFeedHugePageNumber 测试天文数字页码：首次取数前被压到上限，
// 仓库永远不会收到会导致 OFFSET 溢出的页码，最终仍收敛到最后一页
func TestHomeFeedHugePageNumber(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	mockBlog.On("ListPosts", maxPageNumber, 10).Return([]*model.Post{}, 15, nil)
	mockBlog.On("ListPosts", 2, 10).Return(makePosts(5), 15, nil)

	page, err := service.HomeFeed(maxPageNumber * 1024)
	assert.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Len(t, page.Items, 5)

	mockBlog.AssertExpectations(t)
}

// TestHomeFeedEmpty 测试空结果集：视为一页空页而不是错误
func TestHomeFeedEmpty(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	mockBlog.On("ListPosts", 1, 10).Return([]*model.Post{}, 0, nil)

	page, err := service.HomeFeed(1)
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

// TestGroupFeed 测试社区信息流：存在的社区返回帖子页，不存在的返回404类错误
func TestGroupFeed(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	group := &model.Group{ID: 3, Title: "Go 爱好者", Slug: "golang"}
	mockBlog.On("GetGroupBySlug", "golang").Return(group, nil)
	mockBlog.On("ListGroupPosts", 3, 1, 10).Return(makePosts(4), 4, nil)

	got, page, err := service.GroupFeed("golang", 1)
	assert.NoError(t, err)
	assert.Equal(t, group, got)
	assert.Len(t, page.Items, 4)

	mockBlog.On("GetGroupBySlug", "missing").Return(nil, nil)

	_, _, err = service.GroupFeed("missing", 1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGroupNotFound))

	mockBlog.AssertExpectations(t)
}

// TestProfileFeed 测试个人主页信息流
func TestProfileFeed(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	author := &model.User{ID: 7, Username: "leo"}
	mockUser.On("FindByUsername", "leo").Return(author, nil)
	mockBlog.On("ListAuthorPosts", 7, 1, 10).Return(makePosts(3), 3, nil)

	got, page, err := service.ProfileFeed("leo", 1)
	assert.NoError(t, err)
	assert.Equal(t, author, got)
	assert.Equal(t, 3, page.TotalItems)

	mockUser.On("FindByUsername", "ghost").Return(nil, nil)

	_, _, err = service.ProfileFeed("ghost", 1)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUserNotFound))

	mockUser.AssertExpectations(t)
	mockBlog.AssertExpectations(t)
}

// TestFollowingFeed 测试关注信息流只包含被关注作者的帖子
func TestFollowingFeed(t *testing.T) {
	mockBlog := new(MockBlogRepository)
	mockUser := new(MockUserRepository)
	service := NewFeedService(mockBlog, mockUser, 10)

	mockBlog.On("ListFollowingPosts", 5, 1, 10).Return(makePosts(2), 2, nil)

	page, err := service.FollowingFeed(5, 1)
	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)

	// 没有关注任何人时返回空页
	mockBlog.On("ListFollowingPosts", 6, 1, 10).Return([]*model.Post{}, 0, nil)

	page, err = service.FollowingFeed(6, 1)
	assert.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)

	mockBlog.AssertExpectations(t)
}
