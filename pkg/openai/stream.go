package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Stream 一次性、只进的回复片段序列
// Events 通道关闭后，通过 Err 判断流是正常结束还是中途失败
type Stream interface {
	// Events 回复片段通道，按产出顺序推送非空文本片段
	Events() <-chan string
	// Err 流结束后的错误信息，正常走完返回 nil
	Err() error
}

// chatStream 基于 SSE 响应体的 Stream 实现
type chatStream struct {
	body   io.ReadCloser
	events chan string
	err    error
}

func newChatStream(body io.ReadCloser) *chatStream {
	return &chatStream{
		body:   body,
		events: make(chan string),
	}
}

func (s *chatStream) Events() <-chan string {
	return s.events
}

func (s *chatStream) Err() error {
	return s.err
}

// consume 逐行解析上游的 SSE 响应
// 每行格式为 `data: {json}`，终止标记为 `data: [DONE]`；
// 无法解析为 JSON 的行按协议约定直接忽略
func (s *chatStream) consume(ctx context.Context) {
	defer close(s.events)
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	// 单条 data 行可能超过默认缓冲
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}

		for _, choice := range chunk.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			select {
			case s.events <- choice.Delta.Content:
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		s.err = err
	}
}
