package forms

import (
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/personage-hub/YaTube/internal/model"
)

// GroupGetter 提供社区存在性校验所需的查询能力
type GroupGetter interface {
	GetGroupByID(id int) (*model.Group, error)
}

var validate = validator.New()

// FieldError 描述单个表单字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// PostForm 表示帖子提交表单；作者由调用方在持久化前附加
type PostForm struct {
	Text    string                `form:"text" validate:"required"`
	GroupID *int                  `form:"group_id"`
	Image   *multipart.FileHeader `form:"-"`
}

// CommentForm 表示评论提交表单
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

// ValidatePost 校验帖子表单并返回规范化后的记录。
// 提交了不存在的社区ID时校验失败，任何字段错误都不会产生持久化记录。
func ValidatePost(form *PostForm, groups GroupGetter) (*model.Post, []FieldError) {
	var fieldErrors []FieldError

	form.Text = strings.TrimSpace(form.Text)
	if err := validate.Struct(form); err != nil {
		for _, verr := range err.(validator.ValidationErrors) {
			if verr.Field() == "Text" {
				fieldErrors = append(fieldErrors, FieldError{
					Field:   "text",
					Message: "写点什么吧",
				})
			}
		}
	}

	if form.GroupID != nil {
		group, err := groups.GetGroupByID(*form.GroupID)
		if err != nil {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   "group_id",
				Message: "校验社区失败",
			})
		} else if group == nil {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   "group_id",
				Message: "社区不存在",
			})
		}
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	return &model.Post{
		Text:    form.Text,
		GroupID: form.GroupID,
	}, nil
}

// ValidateComment 校验评论表单并返回规范化后的记录
func ValidateComment(form *CommentForm) (*model.Comment, []FieldError) {
	form.Text = strings.TrimSpace(form.Text)
	if err := validate.Struct(form); err != nil {
		var fieldErrors []FieldError
		for _, verr := range err.(validator.ValidationErrors) {
			if verr.Field() == "Text" {
				fieldErrors = append(fieldErrors, FieldError{
					Field:   "text",
					Message: "写点什么吧",
				})
			}
		}
		return nil, fieldErrors
	}

	return &model.Comment{Text: form.Text}, nil
}
