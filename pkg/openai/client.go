// Package openai 封装与 OpenAI 兼容接口的交互
//
// 支持两种调用模式：
// 1. Complete：阻塞等待完整回复（用于后台任务，如每日音频文稿）
// 2. StreamChat：流式逐段返回回复（用于聊天的 SSE 推送）
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"luna/pkg/config"
)

// DefaultBaseURL 默认接口地址，可通过配置覆盖为兼容网关
const DefaultBaseURL = "https://api.openai.com/v1"

// Config 客户端配置
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	MaxTokens int
}

// Client OpenAI API 客户端
type Client struct {
	client       *resty.Client
	streamClient *resty.Client
	config       *Config
}

// NewClient 创建客户端实例，配置不完整时返回 nil
func NewClient(cfg *Config) *Client {
	if cfg == nil || cfg.APIKey == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	// 流式响应的读取时长由调用方的 context 约束，
	// 整体超时会把长回复的流中途掐断，这里不设
	streamClient := resty.New().
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client:       client,
		streamClient: streamClient,
		config:       cfg,
	}
}

// NewClientFromConfig 从配置文件创建客户端实例
func NewClientFromConfig() *Client {
	return NewClient(&Config{
		APIKey:    config.GetString("openai.api_key"),
		BaseURL:   config.GetString("openai.base_url", DefaultBaseURL),
		Model:     config.GetString("openai.model", "gpt-4o-mini"),
		Timeout:   time.Duration(config.GetInt("openai.timeout", 90)) * time.Second,
		MaxTokens: config.GetInt("openai.max_tokens", 500),
	})
}

// Complete 阻塞调用，返回完整回复文本
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := chatRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post(c.config.BaseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai complete: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("openai complete: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var chatResp chatResponse
	if err := json.Unmarshal(resp.Body(), &chatResp); err != nil {
		return "", fmt.Errorf("openai complete: unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("openai complete: empty choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// StreamChat 流式调用
//
// 请求失败或上游返回非 200 时立即返回错误，不产生任何片段。
// 成功后返回的 Stream 只能被消费一次；中途出错的信息在片段
// 通道关闭后通过 Err() 暴露，已产出的片段由调用方自行处理。
func (c *Client) StreamChat(ctx context.Context, messages []Message) (Stream, error) {
	reqBody := chatRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
		Stream:    true,
	}

	resp, err := c.streamClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetBody(reqBody).
		Post(c.config.BaseURL + "/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}

	rawBody := resp.RawBody()
	if resp.StatusCode() != 200 {
		defer rawBody.Close()
		return nil, fmt.Errorf("openai stream: status %d", resp.StatusCode())
	}

	stream := newChatStream(rawBody)
	go stream.consume(ctx)
	return stream, nil
}
