package interfaces

import "github.com/personage-hub/YaTube/internal/model"

// BlogRepository 定义了帖子、社区、评论与关注相关的数据库操作接口。
// 列表方法按创建时间倒序返回一页数据和总数。
type BlogRepository interface {
	CreatePost(post *model.Post) error
	GetPostByID(id int) (*model.Post, error)
	UpdatePost(post *model.Post) error
	// DeletePost 删除帖子并级联删除其全部评论
	DeletePost(id int) error
	ListPosts(page, pageSize int) ([]*model.Post, int, error)
	ListGroupPosts(groupID, page, pageSize int) ([]*model.Post, int, error)
	ListAuthorPosts(authorID, page, pageSize int) ([]*model.Post, int, error)
	ListFollowingPosts(followerID, page, pageSize int) ([]*model.Post, int, error)

	CreateGroup(group *model.Group) error
	GetGroupByID(id int) (*model.Group, error)
	GetGroupBySlug(slug string) (*model.Group, error)
	ListGroups() ([]*model.Group, error)
	// DeleteGroup 删除社区并把依赖帖子的 group_id 置空，不删除帖子
	DeleteGroup(id int) error

	CreateComment(comment *model.Comment) error
	GetCommentsByPostID(postID int) ([]*model.Comment, error)
	CountComments(postID int) (int, error)

	// CreateFollow 在写入时拒绝自关注和重复关注
	CreateFollow(follow *model.Follow) error
	DeleteFollow(followerID, authorID int) error
	IsFollowing(followerID, authorID int) (bool, error)
}
