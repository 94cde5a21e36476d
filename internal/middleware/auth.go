package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/util"
)

const authCookieName = "auth_token"

// LoginPath 是未认证写操作被重定向到的登录入口
const LoginPath = "/auth/login"

// extractToken 依次尝试 Authorization 头和会话 cookie
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware 保护写操作；未认证的请求被重定向到登录入口，
// 并携带原始路径作为 next 参数
func AuthMiddleware(userService service.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			redirectToLogin(c)
			return
		}

		if userService.IsTokenBlacklisted(token) {
			util.Logger.Warn("令牌已被撤销", zap.String("path", c.Request.URL.Path))
			redirectToLogin(c)
			return
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			util.Logger.Warn("无效或过期的令牌",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path))
			redirectToLogin(c)
			return
		}

		c.Set("user_id", userID)
		c.Set("auth_token", token)
		c.Next()
	}
}

// OptionalAuthMiddleware 为读路径附加查看者身份；无有效令牌时继续匿名访问
func OptionalAuthMiddleware(userService service.UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" && !userService.IsTokenBlacklisted(token) {
			if userID, err := util.ValidateToken(token); err == nil {
				c.Set("user_id", userID)
				c.Set("auth_token", token)
			}
		}
		c.Next()
	}
}

func redirectToLogin(c *gin.Context) {
	next := url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, LoginPath+"?next="+next)
	c.Abort()
}
