package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/personage-hub/YaTube/config"
	"github.com/personage-hub/YaTube/internal/api/feed"
	"github.com/personage-hub/YaTube/internal/api/group"
	"github.com/personage-hub/YaTube/internal/api/post"
	"github.com/personage-hub/YaTube/internal/api/profile"
	"github.com/personage-hub/YaTube/internal/api/user"
	"github.com/personage-hub/YaTube/internal/cache"
	"github.com/personage-hub/YaTube/internal/middleware"
	"github.com/personage-hub/YaTube/internal/repository/mysql"
	"github.com/personage-hub/YaTube/internal/service"
	"github.com/personage-hub/YaTube/internal/storage"
	"github.com/personage-hub/YaTube/internal/util"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	util.Logger.Info("数据库连接池配置完成")

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("slug", util.ValidateSlug)
	}

	// 确保上传文件夹存在
	ensureUploadsFolder()

	// 初始化文件存储后端
	uploader, err := storage.NewUploader(config.AppConfig)
	if err != nil {
		util.Logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 初始化页面缓存后端
	pageCache, err := newPageCache()
	if err != nil {
		util.Logger.Fatal("初始化页面缓存失败", zap.Error(err))
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	blogRepo := mysql.NewBlogRepository(db)

	userService := service.NewUserService(userRepo)
	blogService := service.NewBlogService(blogRepo, userRepo)
	feedService := service.NewFeedService(blogRepo, userRepo, config.AppConfig.ItemsPerPage)

	authHandler := user.NewAuthHandler(userService)
	feedHandler := feed.NewFeedHandler(feedService, blogService, pageCache, config.AppConfig.IndexCacheTTL)
	postHandler := post.NewPostHandler(blogService, uploader)
	groupHandler := group.NewGroupHandler(blogService)
	profileHandler := profile.NewProfileHandler(blogService, userService, uploader)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.Default()

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Access-Control-Allow-Origin",
	}

	r.Use(cors.New(corsConfig))

	// 静态文件的CORS处理
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			c.Header("Access-Control-Allow-Origin", config.AppConfig.FrontendURL)
			c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
		}
		c.Next()
	})

	// 配置静态文件服务
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	authRequired := middleware.AuthMiddleware(userService)
	authOptional := middleware.OptionalAuthMiddleware(userService)

	// 认证相关路由
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authRequired, authHandler.Logout)
		auth.POST("/refresh-token", authRequired, authHandler.RefreshToken)
		auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// 信息流路由
	r.GET("/", authOptional, feedHandler.Index)
	r.GET("/group/:slug", authOptional, feedHandler.GroupFeed)
	r.GET("/follow", authRequired, feedHandler.FollowingFeed)

	// 社区路由
	r.GET("/groups", groupHandler.List)
	r.POST("/groups", authRequired, groupHandler.Create)
	r.DELETE("/groups/:id", authRequired, groupHandler.Delete)

	// 帖子路由
	r.POST("/posts", authRequired, postHandler.Create)

	// 个人主页路由
	p := r.Group("/profile/:username")
	{
		p.GET("", authOptional, feedHandler.ProfileFeed)
		p.POST("/follow", authRequired, profileHandler.Follow)
		p.DELETE("/follow", authRequired, profileHandler.Unfollow)
		p.GET("/follow/status", authRequired, profileHandler.FollowStatus)

		p.GET("/posts/:post_id", authOptional, postHandler.Detail)
		p.GET("/posts/:post_id/edit", authRequired, postHandler.EditForm)
		p.PUT("/posts/:post_id", authRequired, postHandler.Update)
		p.DELETE("/posts/:post_id", authRequired, postHandler.Delete)
		p.POST("/posts/:post_id/comments", authRequired, postHandler.AddComment)
	}

	// 账号相关路由
	account := r.Group("/account", authRequired)
	{
		account.POST("/avatar", profileHandler.UploadAvatar)
		account.DELETE("", profileHandler.DeleteAccount)
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}

// newPageCache 按配置选择首页缓存的后端实现
func newPageCache() (cache.PageCache, error) {
	switch config.AppConfig.CacheBackend {
	case "redis":
		return cache.NewRedisCache(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword)
	default:
		return cache.NewMemoryCache(), nil
	}
}

// 确保上传文件夹存在
func ensureUploadsFolder() {
	uploadsPath := config.AppConfig.LocalStoragePath
	if err := os.MkdirAll(uploadsPath, 0755); err != nil {
		util.Logger.Fatal("创建上传文件夹失败", zap.Error(err), zap.String("path", uploadsPath))
	}
	util.Logger.Info("上传文件夹已创建或已存在", zap.String("path", uploadsPath))
}
