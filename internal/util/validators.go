package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug 验证社区 slug 格式
func ValidateSlug(fl validator.FieldLevel) bool {
	slug, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return slugPattern.MatchString(slug)
}
