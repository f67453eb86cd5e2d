// Package sse 提供 Server-Sent Events 的响应写入
//
// 事件帧格式：每条事件为 `data: ` 前缀 + JSON + 空行。
// 首次写入时才设置流式响应头，因此在写入前发生的错误
// 仍然可以走普通的 JSON 错误响应。
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Writer SSE 事件写入器
type Writer struct {
	c       *gin.Context
	flusher http.Flusher
	started bool
}

// NewWriter 创建事件写入器，不会立刻写响应头
func NewWriter(c *gin.Context) *Writer {
	flusher, _ := c.Writer.(http.Flusher)
	return &Writer{c: c, flusher: flusher}
}

// Started 是否已经开始输出事件流
func (w *Writer) Started() bool {
	return w.started
}

// Write 序列化事件并推送给客户端
func (w *Writer) Write(event interface{}) error {
	if !w.started {
		w.c.Header("Content-Type", "text/event-stream")
		w.c.Header("Cache-Control", "no-cache")
		w.c.Header("Connection", "keep-alive")
		w.c.Writer.WriteHeader(http.StatusOK)
		w.started = true
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("sse marshal event: %w", err)
	}

	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("sse write event: %w", err)
	}

	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}
