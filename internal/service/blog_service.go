package service

import (
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/repository/interfaces"
	"github.com/personage-hub/YaTube/internal/util"
)

// BlogService 处理帖子、评论、社区与关注相关的业务逻辑
type BlogService struct {
	blogRepo interfaces.BlogRepository
	userRepo interfaces.UserRepository
}

func NewBlogService(blogRepo interfaces.BlogRepository, userRepo interfaces.UserRepository) *BlogService {
	return &BlogService{
		blogRepo: blogRepo,
		userRepo: userRepo,
	}
}

func (s *BlogService) CreatePost(post *model.Post) error {
	return s.blogRepo.CreatePost(post)
}

// GetPost 返回指定帖子；不存在时返回 ErrPostNotFound
func (s *BlogService) GetPost(id int) (*model.Post, error) {
	post, err := s.blogRepo.GetPostByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询帖子失败", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrPostNotFound, "请求的帖子不存在")
	}
	return post, nil
}

// GetAuthorPost 按用户名和帖子ID取帖子；两者不匹配视为不存在
func (s *BlogService) GetAuthorPost(username string, postID int) (*model.Post, error) {
	author, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if author == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}

	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != author.ID {
		return nil, errors.New(errors.ErrPostNotFound, "请求的帖子不存在")
	}
	return post, nil
}

// EditPost 更新帖子内容；非作者的请求返回 ErrNotAuthor，不产生任何修改
func (s *BlogService) EditPost(viewerID int, post *model.Post) error {
	existing, err := s.GetPost(post.ID)
	if err != nil {
		return err
	}
	if existing.AuthorID != viewerID {
		util.Logger.Warn("非作者尝试编辑帖子",
			zap.Int("viewer_id", viewerID),
			zap.Int("post_id", post.ID),
			zap.Int("author_id", existing.AuthorID))
		return errors.New(errors.ErrNotAuthor, "只有作者可以编辑帖子")
	}

	existing.Text = post.Text
	existing.GroupID = post.GroupID
	if post.Image != "" {
		existing.Image = post.Image
	}
	return s.blogRepo.UpdatePost(existing)
}

// DeletePost 删除帖子及其评论；非作者的请求返回 ErrNotAuthor
func (s *BlogService) DeletePost(viewerID, postID int) error {
	existing, err := s.GetPost(postID)
	if err != nil {
		return err
	}
	if existing.AuthorID != viewerID {
		return errors.New(errors.ErrNotAuthor, "只有作者可以删除帖子")
	}
	return s.blogRepo.DeletePost(postID)
}

// AddComment 给帖子添加评论；帖子不存在时返回 ErrPostNotFound
func (s *BlogService) AddComment(comment *model.Comment) error {
	if _, err := s.GetPost(comment.PostID); err != nil {
		return err
	}
	return s.blogRepo.CreateComment(comment)
}

func (s *BlogService) GetComments(postID int) ([]*model.Comment, error) {
	return s.blogRepo.GetCommentsByPostID(postID)
}

func (s *BlogService) CountComments(postID int) (int, error) {
	return s.blogRepo.CountComments(postID)
}

func (s *BlogService) CreateGroup(group *model.Group) error {
	return s.blogRepo.CreateGroup(group)
}

func (s *BlogService) GetGroupByID(id int) (*model.Group, error) {
	return s.blogRepo.GetGroupByID(id)
}

func (s *BlogService) ListGroups() ([]*model.Group, error) {
	return s.blogRepo.ListGroups()
}

// DeleteGroup 删除社区；依赖帖子保留并失去社区引用
func (s *BlogService) DeleteGroup(id int) error {
	group, err := s.blogRepo.GetGroupByID(id)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询社区失败", err)
	}
	if group == nil {
		return errors.New(errors.ErrGroupNotFound, "社区不存在")
	}
	return s.blogRepo.DeleteGroup(id)
}

// Follow 关注指定作者。操作是幂等的：重复关注和自关注都静默忽略，
// 这是策略而不是被吞掉的异常。
func (s *BlogService) Follow(followerID int, username string) error {
	author, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if author == nil {
		return errors.New(errors.ErrUserNotFound, "用户不存在")
	}

	follow := &model.Follow{FollowerID: followerID, AuthorID: author.ID}
	if err := s.blogRepo.CreateFollow(follow); err != nil {
		if errors.Is(err, errors.ErrSelfFollow) || errors.Is(err, errors.ErrDuplicateFollow) {
			return nil
		}
		return err
	}
	return nil
}

// Unfollow 取消关注，同样是幂等操作
func (s *BlogService) Unfollow(followerID int, username string) error {
	author, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if author == nil {
		return errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return s.blogRepo.DeleteFollow(followerID, author.ID)
}

func (s *BlogService) IsFollowing(followerID int, authorID int) (bool, error) {
	return s.blogRepo.IsFollowing(followerID, authorID)
}
