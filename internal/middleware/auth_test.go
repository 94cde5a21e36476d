package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/personage-hub/YaTube/config"
	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/util"
)

// stubUserService 只实现中间件需要的方法
type stubUserService struct {
	service.UserServiceInterface
	blacklisted map[string]bool
}

func (s *stubUserService) IsTokenBlacklisted(token string) bool {
	return s.blacklisted[token]
}

func newAuthRouter(userService service.UserServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/posts", AuthMiddleware(userService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt("user_id")})
	})
	return router
}

// TestAuthMiddlewareRedirectsAnonymous 测试未认证的写请求被重定向到
// 登录入口并携带原始路径
func TestAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	router := newAuthRouter(&stubUserService{})

	req, _ := http.NewRequest("POST", "/posts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath+"?next=%2Fposts", w.Header().Get("Location"))
}

// TestAuthMiddlewareAcceptsCookie 测试会话 cookie 中的有效令牌
func TestAuthMiddlewareAcceptsCookie(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	router := newAuthRouter(&stubUserService{})

	token, err := util.GenerateToken(7)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/posts", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

// TestAuthMiddlewareAcceptsBearer 测试 Authorization 头中的有效令牌
func TestAuthMiddlewareAcceptsBearer(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	router := newAuthRouter(&stubUserService{})

	token, err := util.GenerateToken(7)
	assert.NoError(t, err)

	req, _ := http.NewRequest("POST", "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAuthMiddlewareRejectsBlacklisted 测试已注销的令牌被拒绝
func TestAuthMiddlewareRejectsBlacklisted(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"

	token, err := util.GenerateToken(7)
	assert.NoError(t, err)

	router := newAuthRouter(&stubUserService{blacklisted: map[string]bool{token: true}})

	req, _ := http.NewRequest("POST", "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}

// TestOptionalAuthAllowsAnonymous 测试读路径不要求认证
func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", OptionalAuthMiddleware(&stubUserService{}), func(c *gin.Context) {
		_, authed := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"authenticated": authed})
	})

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}
