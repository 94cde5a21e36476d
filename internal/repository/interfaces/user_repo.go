package interfaces

import "github.com/personage-hub/YaTube/internal/model"

// UserRepository 定义了用户相关的数据库操作接口
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	// Delete 删除用户并级联清理其帖子、评论和两个方向的关注边
	Delete(id int) error
	Count() (int, error)
}
