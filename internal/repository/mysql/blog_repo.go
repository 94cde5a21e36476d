package mysql

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/util"
)

type blogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *blogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) CreatePost(post *model.Post) error {
	query := `INSERT INTO posts (text, author_id, group_id, image, created_at, updated_at)
              VALUES (?, ?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, post.Text, post.AuthorID, post.GroupID, post.Image)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return err
	}

	postID, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新帖子ID失败", zap.Error(err))
		return err
	}
	post.ID = int(postID)

	util.Logger.Info("帖子创建成功", zap.Int("post_id", post.ID))
	return nil
}

func (r *blogRepository) GetPostByID(id int) (*model.Post, error) {
	query := `
        SELECT p.id, p.text, p.author_id, p.group_id, p.image, p.created_at, p.updated_at,
               u.username, u.email, u.avatar_url, u.bio,
               g.id, g.title, g.slug, g.description
        FROM posts p
        LEFT JOIN users u ON p.author_id = u.id
        LEFT JOIN groups_ g ON p.group_id = g.id
        WHERE p.id = ?`

	var post model.Post
	var author model.User
	var groupID sql.NullInt64
	var groupTitle, groupSlug, groupDescription sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&post.ID, &post.Text, &post.AuthorID, &post.GroupID, &post.Image,
		&post.CreatedAt, &post.UpdatedAt,
		&author.Username, &author.Email, &author.AvatarURL, &author.Bio,
		&groupID, &groupTitle, &groupSlug, &groupDescription,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	author.ID = post.AuthorID
	post.Author = &author

	if groupID.Valid {
		post.Group = &model.Group{
			ID:          int(groupID.Int64),
			Title:       groupTitle.String,
			Slug:        groupSlug.String,
			Description: groupDescription.String,
		}
	}

	return &post, nil
}

func (r *blogRepository) UpdatePost(post *model.Post) error {
	query := `UPDATE posts SET text = ?, group_id = ?, image = ?, updated_at = NOW() WHERE id = ?`
	_, err := r.db.Exec(query, post.Text, post.GroupID, post.Image, post.ID)
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.Int("post_id", post.ID))
		return err
	}
	return nil
}

// DeletePost 在同一事务中删除帖子及其全部评论
func (r *blogRepository) DeletePost(id int) error {
	util.Logger.Info("开始删除帖子", zap.Int("post_id", id))

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		util.Logger.Error("级联删除评论失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}

	if _, err := tx.Exec(`DELETE FROM posts WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.Int("post_id", id))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("帖子删除成功", zap.Int("post_id", id))
	return nil
}

const postColumns = `
        SELECT p.id, p.text, p.author_id, p.group_id, p.image, p.created_at, p.updated_at,
               u.username, u.email, u.avatar_url, u.bio
        FROM posts p
        LEFT JOIN users u ON p.author_id = u.id`

func (r *blogRepository) scanPosts(rows *sql.Rows) ([]*model.Post, error) {
	var posts []*model.Post
	for rows.Next() {
		var post model.Post
		var author model.User
		err := rows.Scan(
			&post.ID, &post.Text, &post.AuthorID, &post.GroupID, &post.Image,
			&post.CreatedAt, &post.UpdatedAt,
			&author.Username, &author.Email, &author.AvatarURL, &author.Bio,
		)
		if err != nil {
			return nil, err
		}
		author.ID = post.AuthorID
		post.Author = &author
		posts = append(posts, &post)
	}
	return posts, rows.Err()
}

func (r *blogRepository) ListPosts(page, pageSize int) ([]*model.Post, int, error) {
	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := postColumns + `
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := r.scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) ListGroupPosts(groupID, page, pageSize int) ([]*model.Post, int, error) {
	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts WHERE group_id = ?", groupID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := postColumns + `
        WHERE p.group_id = ?
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, groupID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := r.scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) ListAuthorPosts(authorID, page, pageSize int) ([]*model.Post, int, error) {
	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts WHERE author_id = ?", authorID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := postColumns + `
        WHERE p.author_id = ?
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, authorID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := r.scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListFollowingPosts 返回当前用户关注的作者的帖子
func (r *blogRepository) ListFollowingPosts(followerID, page, pageSize int) ([]*model.Post, int, error) {
	var total int
	countQuery := `
        SELECT COUNT(*)
        FROM posts p
        JOIN follows f ON p.author_id = f.author_id
        WHERE f.follower_id = ?`
	err := r.db.QueryRow(countQuery, followerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `
        SELECT p.id, p.text, p.author_id, p.group_id, p.image, p.created_at, p.updated_at,
               u.username, u.email, u.avatar_url, u.bio
        FROM posts p
        JOIN follows f ON p.author_id = f.author_id
        JOIN users u ON p.author_id = u.id
        WHERE f.follower_id = ?
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, followerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := r.scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *blogRepository) CreateGroup(group *model.Group) error {
	query := `INSERT INTO groups_ (title, slug, description) VALUES (?, ?, ?)`
	result, err := r.db.Exec(query, group.Title, group.Slug, group.Description)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return errors.New(errors.ErrResourceExists, "社区 slug 已存在")
		}
		util.Logger.Error("创建社区失败", zap.Error(err))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	group.ID = int(id)
	return nil
}

func (r *blogRepository) GetGroupByID(id int) (*model.Group, error) {
	query := `SELECT id, title, slug, description FROM groups_ WHERE id = ?`
	var group model.Group
	err := r.db.QueryRow(query, id).Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *blogRepository) GetGroupBySlug(slug string) (*model.Group, error) {
	query := `SELECT id, title, slug, description FROM groups_ WHERE slug = ?`
	var group model.Group
	err := r.db.QueryRow(query, slug).Scan(&group.ID, &group.Title, &group.Slug, &group.Description)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *blogRepository) ListGroups() ([]*model.Group, error) {
	rows, err := r.db.Query(`SELECT id, title, slug, description FROM groups_ ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*model.Group
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(&group.ID, &group.Title, &group.Slug, &group.Description); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}
	return groups, rows.Err()
}

// DeleteGroup 删除社区并把依赖帖子的 group_id 置空，帖子本身保留
func (r *blogRepository) DeleteGroup(id int) error {
	util.Logger.Info("开始删除社区", zap.Int("group_id", id))

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE posts SET group_id = NULL WHERE group_id = ?`, id); err != nil {
		util.Logger.Error("置空帖子社区引用失败", zap.Error(err), zap.Int("group_id", id))
		return err
	}

	if _, err := tx.Exec(`DELETE FROM groups_ WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除社区失败", zap.Error(err), zap.Int("group_id", id))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("社区删除成功", zap.Int("group_id", id))
	return nil
}

func (r *blogRepository) CreateComment(comment *model.Comment) error {
	query := `INSERT INTO comments (post_id, author_id, text, created_at)
              VALUES (?, ?, ?, NOW())`
	result, err := r.db.Exec(query, comment.PostID, comment.AuthorID, comment.Text)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err), zap.Int("post_id", comment.PostID))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新评论ID失败", zap.Error(err))
		return err
	}
	comment.ID = int(id)

	util.Logger.Info("评论创建成功", zap.Int("comment_id", comment.ID))
	return nil
}

func (r *blogRepository) GetCommentsByPostID(postID int) ([]*model.Comment, error) {
	query := `
        SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
               u.username, u.email, u.avatar_url, u.bio
        FROM comments c
        LEFT JOIN users u ON c.author_id = u.id
        WHERE c.post_id = ?
        ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.db.Query(query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		var comment model.Comment
		var author model.User
		err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID, &comment.Text, &comment.CreatedAt,
			&author.Username, &author.Email, &author.AvatarURL, &author.Bio,
		)
		if err != nil {
			return nil, err
		}
		author.ID = comment.AuthorID
		comment.Author = &author
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func (r *blogRepository) CountComments(postID int) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM comments WHERE post_id = ?", postID).Scan(&count)
	return count, err
}

// CreateFollow 在写入时拒绝自关注；(follower, author) 由唯一索引兜底
func (r *blogRepository) CreateFollow(follow *model.Follow) error {
	if follow.FollowerID == follow.AuthorID {
		return errors.New(errors.ErrSelfFollow, "不能关注自己")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM follows
            WHERE follower_id = ? AND author_id = ?
        )`, follow.FollowerID, follow.AuthorID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return errors.New(errors.ErrDuplicateFollow, "已经关注了该作者")
	}

	query := `INSERT INTO follows (follower_id, author_id, created_at) VALUES (?, ?, NOW())`
	result, err := tx.Exec(query, follow.FollowerID, follow.AuthorID)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return errors.New(errors.ErrDuplicateFollow, "已经关注了该作者")
		}
		util.Logger.Error("创建关注失败", zap.Error(err))
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	follow.ID = int(id)

	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("关注创建成功",
		zap.Int("follower_id", follow.FollowerID),
		zap.Int("author_id", follow.AuthorID))
	return nil
}

func (r *blogRepository) DeleteFollow(followerID, authorID int) error {
	query := `DELETE FROM follows WHERE follower_id = ? AND author_id = ?`
	_, err := r.db.Exec(query, followerID, authorID)
	if err != nil {
		util.Logger.Error("删除关注失败", zap.Error(err))
		return err
	}

	util.Logger.Info("关注删除成功",
		zap.Int("follower_id", followerID),
		zap.Int("author_id", authorID))
	return nil
}

func (r *blogRepository) IsFollowing(followerID, authorID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM follows
            WHERE follower_id = ? AND author_id = ?
        )
    `, followerID, authorID).Scan(&exists)
	return exists, err
}
