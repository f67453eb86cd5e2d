// Package requests 处理请求数据和表单验证
package requests

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// ValidationError 自定义验证错误
type ValidationError struct {
	Errors url.Values
}

// Error 实现 error 接口
func (v ValidationError) Error() string {
	return fmt.Sprintf("验证错误: %v", v.Errors)
}

// Validate 通用的请求绑定与验证
// 先绑定 JSON，再按规则验证结构体
func Validate[T any](c *gin.Context, rules govalidator.MapData, messages govalidator.MapData) (*T, error) {
	var req T

	// 1. 解析请求体
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	// 2. 验证规则
	opts := govalidator.Options{
		Data:     &req,
		Rules:    rules,
		Messages: messages,
	}

	if errs := govalidator.New(opts).ValidateStruct(); len(errs) > 0 {
		return nil, ValidationError{Errors: errs}
	}

	return &req, nil
}
