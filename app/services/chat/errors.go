package chat

import "fmt"

// ValidationError 请求内容校验失败，发生在任何副作用之前
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError 会话范围对应的用户或伴侣不存在
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// QuotaExceededError 今日配额已用完，携带上限与当前计数供客户端展示
type QuotaExceededError struct {
	Limit int
	Count int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("今日提问次数已达上限（%d/%d）", e.Count, e.Limit)
}
