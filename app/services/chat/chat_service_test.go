package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"luna/app/models/conversation"
	"luna/app/models/identity"
	"luna/app/models/partner"
	"luna/app/repositories"
	"luna/pkg/database"
	"luna/pkg/database/migrations"
	"luna/pkg/logger"
	"luna/pkg/openai"
)

// fakeStream 按脚本回放片段的流
type fakeStream struct {
	events chan string
	err    error
}

func (s *fakeStream) Events() <-chan string { return s.events }
func (s *fakeStream) Err() error            { return s.err }

// fakeGateway 按脚本响应的生成网关
type fakeGateway struct {
	chunks    []string
	streamErr error // 片段发完后由 Err() 报告的错误
	callErr   error // StreamChat 直接返回的错误
	prompts   [][]openai.Message
}

func (g *fakeGateway) StreamChat(ctx context.Context, messages []openai.Message) (openai.Stream, error) {
	g.prompts = append(g.prompts, messages)
	if g.callErr != nil {
		return nil, g.callErr
	}

	stream := &fakeStream{events: make(chan string, len(g.chunks)), err: g.streamErr}
	for _, chunk := range g.chunks {
		stream.events <- chunk
	}
	close(stream.events)
	return stream, nil
}

func setupTestDB(t *testing.T) {
	t.Helper()

	logger.Logger = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(migrations.RegisterTables()...))
	database.DB = db
}

func testOptions() Options {
	return Options{
		PlanLimits: map[string]int{
			identity.PlanEssencia:  3,
			identity.PlanConexao:   10,
			identity.PlanPlenitude: 10,
		},
		PartnerDailyLimit: 3,
		MaxQuestionChars:  500,
		ContextLimit:      30,
		StreamTimeout:     5 * time.Second,
		FirstChunkTimeout: 2 * time.Second,
	}
}

func createIdentity(t *testing.T, plan string) *identity.Identity {
	t.Helper()
	repo := repositories.NewIdentityRepository()
	ident := &identity.Identity{
		Email:     fmt.Sprintf("%s@example.com", t.Name()),
		Whatsapp:  "+5511999990000",
		FullName:  "Maria Silva",
		BirthDate: "1995-06-15",
		BirthCity: "São Paulo",
		Plan:      plan,
	}
	require.NoError(t, repo.Create(context.Background(), ident))
	return ident
}

func collectEvents(events *[]StreamEvent) Relay {
	return func(e StreamEvent) error {
		*events = append(*events, e)
		return nil
	}
}

func TestAskStreamsAndPersistsAnswer(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	gateway := &fakeGateway{chunks: []string{"今天", "适合", "休息"}}
	service := NewService(gateway, testOptions())

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   conversation.PersonalScope(ident.ID),
		Content: "我今天运势如何？",
	}, collectEvents(&events))
	require.NoError(t, err)

	// 片段逐条转发，最后以 done 结束
	require.Len(t, events, 4)
	assert.Equal(t, "今天", events[0].Content)
	assert.Equal(t, "适合", events[1].Content)
	assert.Equal(t, "休息", events[2].Content)
	assert.True(t, events[3].Done)

	// 问题和完整回答都已落库
	history, err := repositories.NewMessageRepository().History(
		context.Background(), conversation.PersonalScope(ident.ID), 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
	assert.Equal(t, "我今天运势如何？", history[0].Content)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.Equal(t, "今天适合休息", history[1].Content)

	// 配额消耗一次
	count, err := repositories.NewQuotaRepository().CountToday(
		context.Background(), conversation.PersonalScope(ident.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAskBuildsPromptWithPersonaAndHistory(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	gateway := &fakeGateway{chunks: []string{"好的"}}
	service := NewService(gateway, testOptions())

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   conversation.PersonalScope(ident.ID),
		Content: "你好",
	}, collectEvents(&events))
	require.NoError(t, err)

	require.Len(t, gateway.prompts, 1)
	prompt := gateway.prompts[0]
	require.GreaterOrEqual(t, len(prompt), 2)

	// 系统提示带人设和用户信息，最后一条是刚提出的问题
	assert.Equal(t, openai.RoleSystem, prompt[0].Role)
	assert.Contains(t, prompt[0].Content, "Luna")
	assert.Contains(t, prompt[0].Content, ident.FullName)
	assert.Equal(t, openai.RoleUser, prompt[len(prompt)-1].Role)
	assert.Equal(t, "你好", prompt[len(prompt)-1].Content)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)
	service := NewService(&fakeGateway{}, testOptions())

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   conversation.PersonalScope(ident.ID),
		Content: "   ",
	}, collectEvents(&events))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, events)

	// 校验失败不产生任何副作用
	count, err := repositories.NewQuotaRepository().CountToday(
		context.Background(), conversation.PersonalScope(ident.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestAskRejectsOverlongQuestion(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)
	service := NewService(&fakeGateway{}, testOptions())

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   conversation.PersonalScope(ident.ID),
		Content: strings.Repeat("问", 501),
	}, collectEvents(&events))

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, events)
}

func TestAskUnknownIdentity(t *testing.T) {
	setupTestDB(t)
	service := NewService(&fakeGateway{}, testOptions())

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   conversation.PersonalScope("missing"),
		Content: "你好",
	}, collectEvents(&events))

	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Empty(t, events)
}

func TestAskQuotaExhausted(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	opts := testOptions()
	opts.PlanLimits[identity.PlanEssencia] = 1

	gateway := &fakeGateway{chunks: []string{"回答"}}
	service := NewService(gateway, opts)
	scope := conversation.PersonalScope(ident.ID)

	var events []StreamEvent
	require.NoError(t, service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "第一问",
	}, collectEvents(&events)))

	// 第二问触发配额上限
	err := service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "第二问",
	}, collectEvents(&events))

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 1, quotaErr.Limit)
	assert.Equal(t, 1, quotaErr.Count)

	// 被拒绝的问题不落库
	history, err := repositories.NewMessageRepository().History(context.Background(), scope, 50)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAskMidStreamFailurePersistsPartialAnswer(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	gateway := &fakeGateway{
		chunks:    []string{"开头部分"},
		streamErr: errors.New("upstream reset"),
	}
	service := NewService(gateway, testOptions())
	scope := conversation.PersonalScope(ident.ID)

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "问题",
	}, collectEvents(&events))
	require.NoError(t, err)

	// 已转发的片段之后是错误事件，不出现 done
	require.Len(t, events, 2)
	assert.Equal(t, "开头部分", events[0].Content)
	assert.NotEmpty(t, events[1].Error)
	assert.False(t, events[1].Done)

	// 截断的回答照常落库，配额不回滚
	history, err := repositories.NewMessageRepository().History(context.Background(), scope, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "开头部分", history[1].Content)

	count, err := repositories.NewQuotaRepository().CountToday(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAskGatewayCallFailure(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	gateway := &fakeGateway{callErr: errors.New("connection refused")}
	service := NewService(gateway, testOptions())
	scope := conversation.PersonalScope(ident.ID)

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "问题",
	}, collectEvents(&events))
	require.NoError(t, err)

	// 只有错误事件，没有回答落库，问题保留
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].Error)

	history, err := repositories.NewMessageRepository().History(context.Background(), scope, 50)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, conversation.RoleUser, history[0].Role)
}

func TestAskEmptyStreamReportsError(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	// 上游正常结束但没有产出任何内容
	gateway := &fakeGateway{chunks: nil}
	service := NewService(gateway, testOptions())
	scope := conversation.PersonalScope(ident.ID)

	var events []StreamEvent
	err := service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "问题",
	}, collectEvents(&events))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].Error)

	history, err := repositories.NewMessageRepository().History(context.Background(), scope, 50)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestAskPartnerScopeUsesPartnerLimit(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanPlenitude)

	partnerRepo := repositories.NewPartnerRepository()
	p := &partner.Partner{
		IdentityID: ident.ID,
		Name:       "João",
		BirthDate:  "1993-02-20",
		BirthCity:  "Rio de Janeiro",
	}
	require.NoError(t, partnerRepo.Create(context.Background(), p))

	opts := testOptions()
	opts.PartnerDailyLimit = 1

	gateway := &fakeGateway{chunks: []string{"回答"}}
	service := NewService(gateway, opts)
	scope := conversation.PartnerScope(p.ID)

	var events []StreamEvent
	require.NoError(t, service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "我们合适吗？",
		AskerID: ident.ID,
	}, collectEvents(&events)))

	// 伴侣范围受独立的固定上限约束，与套餐无关
	err := service.Ask(context.Background(), AskInput{
		Scope:   scope,
		Content: "再问一个",
		AskerID: ident.ID,
	}, collectEvents(&events))

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 1, quotaErr.Limit)

	// 系统提示使用伴侣上下文
	require.NotEmpty(t, gateway.prompts)
	assert.Contains(t, gateway.prompts[0][0].Content, p.Name)
}

func TestAskClientDisconnectStillPersists(t *testing.T) {
	setupTestDB(t)
	ident := createIdentity(t, identity.PlanEssencia)

	gateway := &fakeGateway{chunks: []string{"第一段", "第二段"}}
	service := NewService(gateway, testOptions())
	scope := conversation.PersonalScope(ident.ID)

	// 第一次转发即失败并取消请求上下文，与 gin 在客户端断开时的行为一致
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayErr := errors.New("client gone")
	err := service.Ask(ctx, AskInput{
		Scope:   scope,
		Content: "问题",
	}, func(StreamEvent) error {
		cancel()
		return relayErr
	})
	require.NoError(t, err)

	// 已累积的内容照常落库
	history, err := repositories.NewMessageRepository().History(context.Background(), scope, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, conversation.RoleAssistant, history[1].Role)
	assert.NotEmpty(t, history[1].Content)
}
