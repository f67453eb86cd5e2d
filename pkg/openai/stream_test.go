package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(&Config{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "gpt-4o-mini",
		Timeout:   5 * time.Second,
		MaxTokens: 100,
	})
}

// sseHandler 按给定行序列回放 SSE 响应
func sseHandler(lines []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	}
}

func collect(t *testing.T, stream Stream) []string {
	t.Helper()
	var chunks []string
	for chunk := range stream.Events() {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestStreamChatParsesDeltas(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[{"delta":{"content":"今天"}}]}`,
		`data: {"choices":[{"delta":{"content":"适合休息"}}]}`,
		`data: [DONE]`,
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).StreamChat(context.Background(), []Message{
		{Role: RoleUser, Content: "你好"},
	})
	require.NoError(t, err)

	chunks := collect(t, stream)
	assert.Equal(t, []string{"今天", "适合休息"}, chunks)
	assert.NoError(t, stream.Err())
}

func TestStreamChatSkipsMalformedLines(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{
		`: keep-alive comment`,
		`data: {not valid json`,
		`data: {"choices":[{"delta":{"content":"有效片段"}}]}`,
		`event: something`,
		`data: [DONE]`,
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).StreamChat(context.Background(), nil)
	require.NoError(t, err)

	// 无法解析的行直接忽略，不中断流
	chunks := collect(t, stream)
	assert.Equal(t, []string{"有效片段"}, chunks)
	assert.NoError(t, stream.Err())
}

func TestStreamChatNon200FailsWithoutFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).StreamChat(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, stream)
}

func TestStreamChatStopsWithoutDoneMarker(t *testing.T) {
	// 上游连接提前结束（没有 [DONE]），已产出的片段保留，流正常收尾
	srv := httptest.NewServer(sseHandler([]string{
		`data: {"choices":[{"delta":{"content":"部分内容"}}]}`,
	}))
	defer srv.Close()

	stream, err := testClient(srv.URL).StreamChat(context.Background(), nil)
	require.NoError(t, err)

	chunks := collect(t, stream)
	assert.Equal(t, []string{"部分内容"}, chunks)
}

func TestStreamChatContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"第一段\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"第二段\"}}]}\n\n")
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := testClient(srv.URL).StreamChat(ctx, nil)
	require.NoError(t, err)

	// 消费首个片段后取消，消费协程应退出并关闭通道
	first := <-stream.Events()
	assert.Equal(t, "第一段", first)
	cancel()

	for range stream.Events() {
	}
}

func TestStreamChatNotBoundByBlockingTimeout(t *testing.T) {
	// 阻塞调用的整体超时不应限制流式响应的读取时长
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"第一段\"}}]}\n\n")
		flusher.Flush()
		time.Sleep(150 * time.Millisecond)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"第二段\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	client := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
		Timeout: 50 * time.Millisecond,
	})

	stream, err := client.StreamChat(context.Background(), nil)
	require.NoError(t, err)

	chunks := collect(t, stream)
	assert.Equal(t, []string{"第一段", "第二段"}, chunks)
	assert.NoError(t, stream.Err())
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewClient(&Config{}))
	assert.Nil(t, NewClient(nil))
	assert.NotNil(t, NewClient(&Config{APIKey: "k"}))
}
