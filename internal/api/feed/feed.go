package feed

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/cache"
	"github.com/personage-hub/YaTube/internal/errors"
	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/util"
)

// indexCacheKey 只包含裸路由：首页第1页之外的请求不参与缓存
const indexCacheKey = "/"

type FeedHandler struct {
	feedService *service.FeedService
	blogService *service.BlogService
	pageCache   cache.PageCache
	cacheTTL    time.Duration
}

func NewFeedHandler(feedService *service.FeedService, blogService *service.BlogService, pageCache cache.PageCache, cacheTTL time.Duration) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		blogService: blogService,
		pageCache:   pageCache,
		cacheTTL:    cacheTTL,
	}
}

// parsePage 解析 page 查询参数；缺失或非法时回落到第1页
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Index 返回首页帖子列表。第1页的响应整体缓存一个有效期：
// 写操作不主动失效，有效期内的过期内容是既定策略
func (h *FeedHandler) Index(c *gin.Context) {
	page := parsePage(c)

	if page == 1 {
		if body, ok := h.pageCache.Get(c.Request.Context(), indexCacheKey); ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			return
		}
	}

	feedPage, err := h.feedService.HomeFeed(page)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	resp := errors.SuccessResponse{
		Code: http.StatusOK,
		Data: gin.H{"page": feedPage},
	}
	body, err := json.Marshal(resp)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "序列化首页失败", err))
		return
	}

	if page == 1 {
		if err := h.pageCache.Set(c.Request.Context(), indexCacheKey, body, h.cacheTTL); err != nil {
			util.Logger.Error("写入首页缓存失败", zap.Error(err))
		}
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GroupFeed 返回指定社区的帖子列表；slug 未知时返回404
func (h *FeedHandler) GroupFeed(c *gin.Context) {
	slug := c.Param("slug")
	page := parsePage(c)

	group, feedPage, err := h.feedService.GroupFeed(slug, page)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"group": group,
		"page":  feedPage,
	}, "")
}

// ProfileFeed 返回指定作者的帖子列表；用户名未知时返回404
func (h *FeedHandler) ProfileFeed(c *gin.Context) {
	username := c.Param("username")
	page := parsePage(c)

	author, feedPage, err := h.feedService.ProfileFeed(username, page)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	data := gin.H{
		"author": author,
		"page":   feedPage,
	}

	// 已认证的查看者附带关注状态
	if viewerID, exists := c.Get("user_id"); exists {
		isFollowing, err := h.blogService.IsFollowing(viewerID.(int), author.ID)
		if err == nil {
			data["is_following"] = isFollowing
		}
	}

	errors.HandleSuccess(c, data, "")
}

// FollowingFeed 返回当前用户关注的作者的帖子列表（需要认证）
func (h *FeedHandler) FollowingFeed(c *gin.Context) {
	viewerID := c.GetInt("user_id")
	page := parsePage(c)

	feedPage, err := h.feedService.FollowingFeed(viewerID, page)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"page": feedPage}, "")
}
