package post

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/forms"
	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/storage"
	"github.com/personage-hub/YaTube/internal/util"
)

type PostHandler struct {
	blogService *service.BlogService
	storage     storage.Uploader
}

func NewPostHandler(blogService *service.BlogService, storage storage.Uploader) *PostHandler {
	return &PostHandler{
		blogService: blogService,
		storage:     storage,
	}
}

// postViewPath 是帖子详情页的路径，所有权校验失败时重定向到这里
func postViewPath(username string, postID int) string {
	return fmt.Sprintf("/profile/%s/posts/%d", username, postID)
}

// parsePostForm 从 multipart 表单解析帖子字段
func parsePostForm(c *gin.Context) *forms.PostForm {
	form := &forms.PostForm{
		Text: c.PostForm("text"),
	}
	if raw := c.PostForm("group_id"); raw != "" {
		if groupID, err := strconv.Atoi(raw); err == nil {
			form.GroupID = &groupID
		}
	}
	if file, err := c.FormFile("image"); err == nil {
		form.Image = file
	}
	return form
}

// uploadImage 上传帖子图片并返回存储引用
func (h *PostHandler) uploadImage(form *forms.PostForm, authorID int) (string, error) {
	if form.Image == nil {
		return "", nil
	}
	filename := util.GenerateUniqueFilename(form.Image.Filename)
	path := fmt.Sprintf("posts/%d/%s", authorID, filename)
	return h.storage.UploadFile(form.Image, path)
}

// Create 处理新帖子提交。校验失败时不产生持久化记录，
// 返回字段级错误供表单层重新渲染
func (h *PostHandler) Create(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法解析表单数据", err))
		return
	}

	form := parsePostForm(c)
	record, fieldErrors := forms.ValidatePost(form, h.blogService)
	if fieldErrors != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   http.StatusBadRequest,
			"errors": fieldErrors,
			"form":   gin.H{"text": form.Text, "group_id": form.GroupID},
		})
		return
	}

	// 作者来自会话，不由表单校验器赋值
	record.AuthorID = c.GetInt("user_id")

	imageRef, err := h.uploadImage(form, record.AuthorID)
	if err != nil {
		util.Logger.Error("图片上传失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "图片上传失败", err))
		return
	}
	record.Image = imageRef

	if err := h.blogService.CreatePost(record); err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "创建帖子失败", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": record,
	})
}

// Detail 返回帖子详情和它的评论列表
func (h *PostHandler) Detail(c *gin.Context) {
	username := c.Param("username")
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	post, err := h.blogService.GetAuthorPost(username, postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	comments, err := h.blogService.GetComments(postID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrDatabase, "获取评论失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"post":     post,
		"author":   post.Author,
		"comments": comments,
	}, "")
}

// EditForm 返回编辑表单的上下文。非作者的请求被重定向回帖子详情，
// 不展示错误页，也不产生任何修改
func (h *PostHandler) EditForm(c *gin.Context) {
	username := c.Param("username")
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	post, err := h.blogService.GetAuthorPost(username, postID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	viewerID := c.GetInt("user_id")
	if post.AuthorID != viewerID {
		c.Redirect(http.StatusFound, postViewPath(username, postID))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"post":      post,
		"edit_post": true,
	}, "")
}

// Update 处理帖子编辑提交；非作者的请求被重定向回帖子详情
func (h *PostHandler) Update(c *gin.Context) {
	username := c.Param("username")
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法解析表单数据", err))
		return
	}

	form := parsePostForm(c)
	record, fieldErrors := forms.ValidatePost(form, h.blogService)
	if fieldErrors != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   http.StatusBadRequest,
			"errors": fieldErrors,
			"form":   gin.H{"text": form.Text, "group_id": form.GroupID},
		})
		return
	}

	viewerID := c.GetInt("user_id")

	imageRef, err := h.uploadImage(form, viewerID)
	if err != nil {
		util.Logger.Error("图片上传失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "图片上传失败", err))
		return
	}

	record.ID = postID
	record.Image = imageRef
	if err := h.blogService.EditPost(viewerID, record); err != nil {
		if errors.Is(err, errors.ErrNotAuthor) {
			c.Redirect(http.StatusFound, postViewPath(username, postID))
			return
		}
		errors.HandleError(c, err)
		return
	}

	// 编辑完成后回到帖子详情
	c.Redirect(http.StatusFound, postViewPath(username, postID))
}

// Delete 删除帖子及其评论；只有作者可以删除
func (h *PostHandler) Delete(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	viewerID := c.GetInt("user_id")
	if err := h.blogService.DeletePost(viewerID, postID); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "帖子删除成功")
}

// AddComment 给帖子添加评论
func (h *PostHandler) AddComment(c *gin.Context) {
	username := c.Param("username")
	postID, err := strconv.Atoi(c.Param("post_id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的帖子ID"))
		return
	}

	// 确认帖子属于URL中的作者
	if _, err := h.blogService.GetAuthorPost(username, postID); err != nil {
		errors.HandleError(c, err)
		return
	}

	form := &forms.CommentForm{Text: c.PostForm("text")}
	record, fieldErrors := forms.ValidateComment(form)
	if fieldErrors != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   http.StatusBadRequest,
			"errors": fieldErrors,
			"form":   gin.H{"text": form.Text},
		})
		return
	}

	record.PostID = postID
	record.AuthorID = c.GetInt("user_id")

	if err := h.blogService.AddComment(record); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": record,
	})
}
