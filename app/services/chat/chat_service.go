// Package chat 提问编排服务
//
// 每次提问按固定流程推进：校验 → 配额 → 落库问题 → 流式生成 →
// 落库回答。配额消耗与问题落库一旦完成就不回滚，上游生成失败
// 只影响回答部分。
package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"luna/app/models/conversation"
	"luna/app/models/identity"
	"luna/app/repositories"
	"luna/pkg/config"
	"luna/pkg/logger"
	"luna/pkg/openai"
)

// 兜底值，正常部署下以配置为准
const (
	DefaultCeiling       = 3
	DefaultContextLimit  = 30
	DefaultHistoryLimit  = 50
	DefaultMaxChars      = 500
	DefaultStreamTimeout = 120 * time.Second
	DefaultFirstTimeout  = 30 * time.Second
)

// 流式生成失败时对用户的提示
const streamErrorMessage = "回复生成失败，请稍后重试"

// CompletionGateway 流式生成网关
type CompletionGateway interface {
	StreamChat(ctx context.Context, messages []openai.Message) (openai.Stream, error)
}

// StreamEvent 推送给客户端的单条事件
// 三种形态互斥：文本增量、终止信号、错误信号
type StreamEvent struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Relay 事件中继回调，返回错误表示客户端已断开
type Relay func(StreamEvent) error

// Options 编排服务配置
type Options struct {
	PlanLimits        map[string]int // 套餐 -> 每日提问上限
	PartnerDailyLimit int            // 伴侣问答固定每日上限
	MaxQuestionChars  int            // 个人聊天单问最大字符数
	ContextLimit      int            // 构建提示词时携带的历史条数
	StreamTimeout     time.Duration  // 整体流式时长上限
	FirstChunkTimeout time.Duration  // 首个片段的等待上限
}

// OptionsFromConfig 从配置文件加载编排配置
func OptionsFromConfig() Options {
	return Options{
		PlanLimits: map[string]int{
			identity.PlanEssencia:  config.GetInt("chat.plan_limits.essencia", 3),
			identity.PlanConexao:   config.GetInt("chat.plan_limits.conexao", 10),
			identity.PlanPlenitude: config.GetInt("chat.plan_limits.plenitude", 10),
		},
		PartnerDailyLimit: config.GetInt("chat.partner_daily_limit", 3),
		MaxQuestionChars:  config.GetInt("chat.max_question_chars", DefaultMaxChars),
		ContextLimit:      config.GetInt("chat.context_limit", DefaultContextLimit),
		StreamTimeout:     time.Duration(config.GetInt("chat.stream_timeout", 120)) * time.Second,
		FirstChunkTimeout: time.Duration(config.GetInt("chat.first_chunk_timeout", 30)) * time.Second,
	}
}

// Service 提问编排服务
type Service struct {
	identities *repositories.IdentityRepository
	partners   *repositories.PartnerRepository
	messages   *repositories.MessageRepository
	quotas     *repositories.QuotaRepository
	gateway    CompletionGateway
	opts       Options
}

// NewService 创建编排服务实例
func NewService(gateway CompletionGateway, opts Options) *Service {
	if opts.MaxQuestionChars <= 0 {
		opts.MaxQuestionChars = DefaultMaxChars
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = DefaultContextLimit
	}
	if opts.PartnerDailyLimit <= 0 {
		opts.PartnerDailyLimit = DefaultCeiling
	}
	if opts.StreamTimeout <= 0 {
		opts.StreamTimeout = DefaultStreamTimeout
	}
	if opts.FirstChunkTimeout <= 0 {
		opts.FirstChunkTimeout = DefaultFirstTimeout
	}

	return &Service{
		identities: repositories.NewIdentityRepository(),
		partners:   repositories.NewPartnerRepository(),
		messages:   repositories.NewMessageRepository(),
		quotas:     repositories.NewQuotaRepository(),
		gateway:    gateway,
		opts:       opts,
	}
}

// NewServiceFromConfig 按配置文件创建编排服务
func NewServiceFromConfig() *Service {
	return NewService(openai.NewClientFromConfig(), OptionsFromConfig())
}

// AskInput 一次提问的输入
type AskInput struct {
	Scope   conversation.Scope
	Content string
	AskerID string // 伴侣范围下的提问用户，个人范围留空
}

// Ask 处理一次提问
//
// 进入流式阶段之前的失败通过返回值报告（此时不产生任何副作用，
// 可走普通 HTTP 错误响应）；流式阶段开始后的失败通过 relay 的
// 错误事件报告，已消耗的配额和已落库的问题不回滚。
func (s *Service) Ask(ctx context.Context, in AskInput, relay Relay) error {
	// 1. 输入校验
	if strings.TrimSpace(in.Content) == "" {
		return &ValidationError{Message: "问题不能为空"}
	}
	if in.Scope.Type == conversation.ScopePersonal &&
		utf8.RuneCountInString(in.Content) > s.opts.MaxQuestionChars {
		return &ValidationError{Message: "问题过长，请控制在 500 字以内"}
	}

	// 2. 解析会话范围，确定系统提示和配额上限
	systemPrompt, ceiling, err := s.resolveScope(ctx, in)
	if err != nil {
		return err
	}

	// 3. 原子消耗今日配额
	accepted, count, err := s.quotas.TryConsume(ctx, in.Scope, ceiling)
	if err != nil {
		return err
	}
	if !accepted {
		return &QuotaExceededError{Limit: ceiling, Count: count}
	}

	// 4. 落库问题。问题是用户的真实动作，此后不再回滚
	if _, err := s.messages.Append(ctx, in.Scope, conversation.RoleUser, in.Content, in.AskerID); err != nil {
		return err
	}

	// 5. 构建提示词：人设 + 用户上下文 + 最近历史（含刚落库的问题）
	history, err := s.messages.History(ctx, in.Scope, s.opts.ContextLimit)
	if err != nil {
		return err
	}
	prompt := buildPromptMessages(systemPrompt, history)

	// 6. 流式生成并中继
	s.streamAndPersist(ctx, in, prompt, relay)
	return nil
}

// resolveScope 解析会话范围，返回系统提示和适用的每日上限
func (s *Service) resolveScope(ctx context.Context, in AskInput) (string, int, error) {
	switch in.Scope.Type {
	case conversation.ScopePersonal:
		ident, err := s.identities.GetByID(ctx, in.Scope.ID)
		if err != nil {
			return "", 0, err
		}
		if ident == nil {
			return "", 0, &NotFoundError{Message: "用户不存在"}
		}
		return PersonaPrompt + "\n\n" + identityContext(ident), s.planCeiling(ident.Plan), nil

	case conversation.ScopePartner:
		p, err := s.partners.GetByID(ctx, in.Scope.ID)
		if err != nil {
			return "", 0, err
		}
		if p == nil {
			return "", 0, &NotFoundError{Message: "伴侣档案不存在"}
		}

		// 提问用户的信息仅用于丰富上下文，缺失不阻断流程
		var asker *identity.Identity
		if in.AskerID != "" {
			asker, _ = s.identities.GetByID(ctx, in.AskerID)
		}
		return PersonaPrompt + "\n\n" + partnerContext(p, asker), s.opts.PartnerDailyLimit, nil
	}

	return "", 0, &ValidationError{Message: "无效的会话范围"}
}

// planCeiling 套餐对应的每日提问上限
func (s *Service) planCeiling(plan string) int {
	if ceiling, ok := s.opts.PlanLimits[plan]; ok {
		return ceiling
	}
	return DefaultCeiling
}

// streamAndPersist 调用网关流式生成，逐片段中继并在结束后落库回答
//
// 失败语义：
// - 产出任何片段之前失败：只推送错误事件，不落库回答
// - 产出部分片段后失败：已累积的内容作为（截断的）回答落库，再推送错误事件
// - 客户端断开：停止中继，已累积内容照常落库
func (s *Service) streamAndPersist(ctx context.Context, in AskInput, prompt []openai.Message, relay Relay) {
	streamCtx, cancel := context.WithTimeout(ctx, s.opts.StreamTimeout)
	defer cancel()

	stream, err := s.gateway.StreamChat(streamCtx, prompt)
	if err != nil {
		logger.ErrorString("Chat", "Stream", "上游调用失败："+err.Error())
		_ = relay(StreamEvent{Error: streamErrorMessage})
		return
	}

	var (
		full         strings.Builder
		clientGone   bool
		firstTimeout = time.After(s.opts.FirstChunkTimeout)
	)

receive:
	for {
		// 首片段设置单独的等待上限，之后只受整体超时约束
		if full.Len() == 0 {
			select {
			case delta, ok := <-stream.Events():
				if !ok {
					break receive
				}
				full.WriteString(delta)
				if err := relay(StreamEvent{Content: delta}); err != nil {
					clientGone = true
					cancel()
				}
			case <-firstTimeout:
				cancel()
				logger.WarnString("Chat", "Stream", "等待首个片段超时")
				_ = relay(StreamEvent{Error: streamErrorMessage})
				return
			}
			continue
		}

		delta, ok := <-stream.Events()
		if !ok {
			break receive
		}
		full.WriteString(delta)
		if !clientGone {
			if err := relay(StreamEvent{Content: delta}); err != nil {
				clientGone = true
				cancel()
			}
		}
	}

	streamErr := stream.Err()
	if clientGone {
		streamErr = nil // 断开导致的取消不算上游失败
	}

	// 已累积的内容无论流是否走完都要落库，保住对话上下文。
	// 客户端断开会取消请求上下文，落库要剥离取消信号后执行
	if full.Len() > 0 {
		persistCtx, persistCancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer persistCancel()
		if _, err := s.messages.Append(persistCtx, in.Scope, conversation.RoleAssistant, full.String(), ""); err != nil {
			logger.ErrorString("Chat", "Persist", "回答落库失败："+err.Error())
			if !clientGone {
				_ = relay(StreamEvent{Error: streamErrorMessage})
			}
			return
		}
	}

	if clientGone {
		return
	}

	if streamErr != nil {
		logger.ErrorString("Chat", "Stream", "流式生成中断："+streamErr.Error())
		_ = relay(StreamEvent{Error: streamErrorMessage})
		return
	}

	if full.Len() == 0 {
		// 上游正常结束但没有任何内容，视为生成失败
		_ = relay(StreamEvent{Error: streamErrorMessage})
		return
	}

	_ = relay(StreamEvent{Done: true})
}

// buildPromptMessages 组装发给模型的消息序列
func buildPromptMessages(systemPrompt string, history []conversation.Message) []openai.Message {
	messages := make([]openai.Message, 0, len(history)+1)
	messages = append(messages, openai.Message{Role: openai.RoleSystem, Content: systemPrompt})

	for _, m := range history {
		role := openai.RoleUser
		if m.Role == conversation.RoleAssistant {
			role = openai.RoleAssistant
		}
		messages = append(messages, openai.Message{Role: role, Content: m.Content})
	}
	return messages
}
