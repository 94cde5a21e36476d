package service

import (
	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/repository/interfaces"
)

// FeedService 组装四类视图的分页帖子列表，是纯读路径
type FeedService struct {
	blogRepo interfaces.BlogRepository
	userRepo interfaces.UserRepository
	pageSize int
}

func NewFeedService(blogRepo interfaces.BlogRepository, userRepo interfaces.UserRepository, pageSize int) *FeedService {
	return &FeedService{
		blogRepo: blogRepo,
		userRepo: userRepo,
		pageSize: pageSize,
	}
}

// PageSize 返回配置的每页条数
func (s *FeedService) PageSize() int {
	return s.pageSize
}

type fetchFunc func(page, pageSize int) ([]*model.Post, int, error)

// maxPageNumber 限制首次取数的页码上限，防止 (page-1)*pageSize
// 的 OFFSET 计算溢出；真实页码随后仍会收敛到最后一页
const maxPageNumber = 1 << 20

// paginate 把仓库的 LIMIT/OFFSET 查询包装为页对象。
// 页码从1开始，非法页码回落到1，超出范围收敛到最后一页而不是报错；
// 空结果集视为一页空页。
func (s *FeedService) paginate(fetch fetchFunc, pageNumber int) (*model.Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > maxPageNumber {
		pageNumber = maxPageNumber
	}

	posts, total, err := fetch(pageNumber, s.pageSize)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "获取帖子列表失败", err)
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if pageNumber > totalPages {
		pageNumber = totalPages
		posts, total, err = fetch(pageNumber, s.pageSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "获取帖子列表失败", err)
		}
	}

	if posts == nil {
		posts = []*model.Post{}
	}

	return &model.Page{
		Items:       posts,
		Number:      pageNumber,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     pageNumber < totalPages,
		HasPrevious: pageNumber > 1,
	}, nil
}

// HomeFeed 返回全部帖子，按创建时间倒序
func (s *FeedService) HomeFeed(pageNumber int) (*model.Page, error) {
	return s.paginate(s.blogRepo.ListPosts, pageNumber)
}

// GroupFeed 返回指定社区的帖子；slug 不存在时返回 ErrGroupNotFound
func (s *FeedService) GroupFeed(slug string, pageNumber int) (*model.Group, *model.Page, error) {
	group, err := s.blogRepo.GetGroupBySlug(slug)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, "查询社区失败", err)
	}
	if group == nil {
		return nil, nil, errors.New(errors.ErrGroupNotFound, "社区不存在")
	}

	page, err := s.paginate(func(p, size int) ([]*model.Post, int, error) {
		return s.blogRepo.ListGroupPosts(group.ID, p, size)
	}, pageNumber)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// ProfileFeed 返回指定作者的帖子；用户名不存在时返回 ErrUserNotFound
func (s *FeedService) ProfileFeed(username string, pageNumber int) (*model.User, *model.Page, error) {
	author, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if author == nil {
		return nil, nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}

	page, err := s.paginate(func(p, size int) ([]*model.Post, int, error) {
		return s.blogRepo.ListAuthorPosts(author.ID, p, size)
	}, pageNumber)
	if err != nil {
		return nil, nil, err
	}
	return author, page, nil
}

// FollowingFeed 返回当前用户关注的作者的帖子，需要已认证的查看者
func (s *FeedService) FollowingFeed(viewerID, pageNumber int) (*model.Page, error) {
	return s.paginate(func(p, size int) ([]*model.Post, int, error) {
		return s.blogRepo.ListFollowingPosts(viewerID, p, size)
	}, pageNumber)
}
