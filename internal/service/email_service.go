package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"

	"github.com/personage-hub/YaTube/config"
	"github.com/personage-hub/YaTube/internal/common"
	"github.com/personage-hub/YaTube/internal/repository/interfaces"
	"github.com/personage-hub/YaTube/internal/util"
)

type EmailService struct {
	smtpHost   string
	smtpPort   int
	username   string
	password   string
	userRepo   interfaces.UserRepository
	jwtSecret  string
	domainName string
}

func NewEmailService(userRepo interfaces.UserRepository) *EmailService {
	return &EmailService{
		smtpHost:   config.AppConfig.SMTPHost,
		smtpPort:   config.AppConfig.SMTPPort,
		username:   config.AppConfig.SMTPUsername,
		password:   config.AppConfig.SMTPPassword,
		userRepo:   userRepo,
		jwtSecret:  config.AppConfig.JWTSecret,
		domainName: config.AppConfig.DomainName,
	}
}

// SendWelcomeEmail 异步发送注册欢迎邮件，失败只记录日志，不阻塞注册流程
func (s *EmailService) SendWelcomeEmail(email, username string) {
	subject := "欢迎加入 YaTube"
	body := fmt.Sprintf("亲爱的 %s，\n\n欢迎加入 YaTube！现在就去发布你的第一篇帖子，或者关注感兴趣的作者吧。", username)
	s.sendEmailAsync(email, subject, body)
}

func (s *EmailService) SendPasswordResetEmail(email string) error {
	token, err := s.generatePasswordResetToken(email)
	if err != nil {
		util.Logger.Error("生成密码重置令牌失败", zap.Error(err))
		return fmt.Errorf("生成密码重置令牌失败: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", config.AppConfig.FrontendURL, token)

	subject := "重置您的密码 - YaTube"
	body := fmt.Sprintf("我们收到了您的密码重置请求。如果这不是您本人操作，请忽略此邮件。\n\n请点击以下链接重置密码：\n%s\n\n此链接将在1小时后过期。", resetLink)

	return s.sendEmail(email, subject, body)
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		if err := s.sendEmail(to, subject, body); err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	// SMTP 连接偶发超时，重试三次
	err := common.WithRetry(func() error {
		return d.DialAndSend(m)
	}, 3)
	if err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}

func (s *EmailService) generatePasswordResetToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(1 * time.Hour).Unix(),
		"type":  "password_reset",
		"jti":   uuid.NewString(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *EmailService) VerifyPasswordResetToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		util.Logger.Error("解析密码重置令牌失败", zap.Error(err))
		return "", fmt.Errorf("无效的令牌: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		email, ok := claims["email"].(string)
		if !ok {
			util.Logger.Error("令牌中缺少邮箱信息")
			return "", fmt.Errorf("无效的令牌: 缺少邮箱信息")
		}

		tokenType, ok := claims["type"].(string)
		if !ok || tokenType != "password_reset" {
			util.Logger.Error("无效的令牌类型")
			return "", fmt.Errorf("无效的令牌类型")
		}

		return email, nil
	}

	return "", fmt.Errorf("无效的令牌")
}
