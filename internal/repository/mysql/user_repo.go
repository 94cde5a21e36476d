package mysql

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/util"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, avatar_url, bio, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, NOW(), NOW())`
	result, err := r.db.Exec(query, user.Username, user.Email, user.PasswordHash, user.AvatarURL, user.Bio)
	if err != nil {
		util.Logger.Error("创建用户失败", zap.Error(err), zap.String("username", user.Username))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		util.Logger.Error("获取新用户ID失败", zap.Error(err))
		return err
	}
	user.ID = int(id)
	util.Logger.Info("用户创建成功", zap.Int("user_id", user.ID))
	return nil
}

// FindByID 通过ID查找用户
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, avatar_url, bio, created_at, updated_at
              FROM users WHERE id = ?`
	var user model.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.Bio,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail 通过邮箱查找用户
func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, avatar_url, bio, created_at, updated_at
              FROM users WHERE email = ?`
	var user model.User
	err := r.db.QueryRow(query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.Bio,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, avatar_url, bio, created_at, updated_at
              FROM users WHERE username = ?`
	var user model.User
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.Bio,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Update 更新用户信息
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET username = ?, email = ?, avatar_url = ?, bio = ?, updated_at = ?
		WHERE id = ?`,
		user.Username, user.Email, user.AvatarURL, user.Bio, time.Now(), user.ID)
	return err
}

// Delete 在同一事务中删除用户及其帖子、评论和两个方向的关注边。
// 其帖子下他人的评论随帖子一并删除。
func (r *userRepository) Delete(id int) error {
	util.Logger.Info("开始删除用户", zap.Int("user_id", id))

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE author_id = ?)`, id); err != nil {
		util.Logger.Error("删除用户帖子下的评论失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE author_id = ?`, id); err != nil {
		util.Logger.Error("删除用户评论失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE author_id = ?`, id); err != nil {
		util.Logger.Error("删除用户帖子失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM follows WHERE follower_id = ? OR author_id = ?`, id, id); err != nil {
		util.Logger.Error("删除用户关注边失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}
	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id); err != nil {
		util.Logger.Error("删除用户失败", zap.Error(err), zap.Int("user_id", id))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	util.Logger.Info("用户删除成功", zap.Int("user_id", id))
	return nil
}

// Count 返回用户总数
func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
