package feed

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/personage-hub/YaTube/internal/cache"
	"github.com/personage-hub/YaTube/internal/model"
	"github.com/personage-hub/YaTube/internal/repository/interfaces"
	"github.com/personage-hub/YaTube/internal/service"
)

// stubBlogRepo 只实现测试需要的方法，其余方法走向嵌入的 nil 接口
type stubBlogRepo struct {
	interfaces.BlogRepository
	listCalls int
	posts     []*model.Post
}

func (s *stubBlogRepo) ListPosts(page, pageSize int) ([]*model.Post, int, error) {
	s.listCalls++
	return s.posts, len(s.posts), nil
}

func newTestRouter(repo *stubBlogRepo, pageCache cache.PageCache, ttl time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	feedService := service.NewFeedService(repo, nil, 10)
	handler := NewFeedHandler(feedService, nil, pageCache, ttl)

	router := gin.New()
	router.GET("/", handler.Index)
	return router
}

// TestIndexCacheHit 测试首页缓存：有效期内的第二次请求返回完全相同的
// 字节且不再访问数据库
func TestIndexCacheHit(t *testing.T) {
	repo := &stubBlogRepo{posts: []*model.Post{{ID: 1, Text: "第一篇", AuthorID: 1}}}
	router := newTestRouter(repo, cache.NewMemoryCache(), 20*time.Second)

	req, _ := http.NewRequest("GET", "/", nil)
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req)
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	assert.Equal(t, w1.Body.Bytes(), w2.Body.Bytes())
	assert.Equal(t, 1, repo.listCalls)
}

// TestIndexCacheExpiry 测试首页缓存过期后重新渲染
func TestIndexCacheExpiry(t *testing.T) {
	repo := &stubBlogRepo{posts: []*model.Post{{ID: 1, Text: "第一篇", AuthorID: 1}}}
	router := newTestRouter(repo, cache.NewMemoryCache(), 10*time.Millisecond)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 1, repo.listCalls)

	time.Sleep(20 * time.Millisecond)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, repo.listCalls)
}

// TestIndexCacheStaleAfterWrite 测试写操作不使缓存失效：
// 缓存命中时新发布的帖子在有效期内不可见
func TestIndexCacheStaleAfterWrite(t *testing.T) {
	repo := &stubBlogRepo{posts: []*model.Post{{ID: 1, Text: "旧帖子", AuthorID: 1}}}
	router := newTestRouter(repo, cache.NewMemoryCache(), 20*time.Second)

	req, _ := http.NewRequest("GET", "/", nil)
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req)

	// 模拟新帖子发布
	repo.posts = append(repo.posts, &model.Post{ID: 2, Text: "新帖子", AuthorID: 1})

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, w1.Body.Bytes(), w2.Body.Bytes())
	assert.NotContains(t, w2.Body.String(), "新帖子")
}

// TestIndexSecondPageNotCached 测试只有第1页参与缓存
func TestIndexSecondPageNotCached(t *testing.T) {
	repo := &stubBlogRepo{posts: []*model.Post{{ID: 1, Text: "第一篇", AuthorID: 1}}}
	router := newTestRouter(repo, cache.NewMemoryCache(), 20*time.Second)

	req, _ := http.NewRequest("GET", "/?page=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 第2页每次都访问数据库（钳制回第1页的重取也计入）
	assert.True(t, repo.listCalls >= 2)
}
