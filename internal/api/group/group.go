package group

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/service"
)

type GroupHandler struct {
	blogService *service.BlogService
}

func NewGroupHandler(blogService *service.BlogService) *GroupHandler {
	return &GroupHandler{blogService: blogService}
}

// List 返回全部社区，供发帖表单的社区选择器使用
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.blogService.ListGroups()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrDatabase, "获取社区列表失败", err))
		return
	}
	errors.HandleSuccess(c, gin.H{"groups": groups}, "")
}

// Create 创建新社区
func (h *GroupHandler) Create(c *gin.Context) {
	var groupData struct {
		Title       string `json:"title" binding:"required"`
		Slug        string `json:"slug" binding:"required,slug"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&groupData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	group := &model.Group{
		Title:       groupData.Title,
		Slug:        groupData.Slug,
		Description: groupData.Description,
	}

	if err := h.blogService.CreateGroup(group); err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code": http.StatusCreated,
		"data": group,
	})
}

// Delete 删除社区；依赖帖子保留并失去社区引用
func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的社区ID"))
		return
	}

	if err := h.blogService.DeleteGroup(id); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "社区删除成功")
}
