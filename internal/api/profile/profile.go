package profile

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/storage"
	"github.com/personage-hub/YaTube/internal/util"
)

type ProfileHandler struct {
	blogService *service.BlogService
	userService service.UserServiceInterface
	storage     storage.Uploader
}

func NewProfileHandler(blogService *service.BlogService, userService service.UserServiceInterface, storage storage.Uploader) *ProfileHandler {
	return &ProfileHandler{
		blogService: blogService,
		userService: userService,
		storage:     storage,
	}
}

// Follow 关注指定作者。操作幂等：重复关注和自关注静默忽略
func (h *ProfileHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetInt("user_id")

	if err := h.blogService.Follow(viewerID, username); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "关注成功")
}

// Unfollow 取消关注，同样幂等
func (h *ProfileHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetInt("user_id")

	if err := h.blogService.Unfollow(viewerID, username); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "已取消关注")
}

// FollowStatus 返回当前用户对指定作者的关注状态
func (h *ProfileHandler) FollowStatus(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetInt("user_id")

	author, err := h.userService.GetUserByUsername(username)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	isFollowing, err := h.blogService.IsFollowing(viewerID, author.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrDatabase, "查询关注状态失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{"is_following": isFollowing}, "")
}

// UploadAvatar 上传用户头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "缺少头像文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%d/%s", userID, filename)
	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("头像上传失败", zap.Error(err), zap.Int("user_id", userID))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "头像上传失败", err))
		return
	}

	if err := h.userService.UpdateAvatar(userID, avatarURL); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"avatar_url": avatarURL}, "头像更新成功")
}

// DeleteAccount 注销账户，级联清理用户的帖子、评论和关注边
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetInt("user_id")

	if err := h.userService.DeleteAccount(userID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "账户已注销")
}
