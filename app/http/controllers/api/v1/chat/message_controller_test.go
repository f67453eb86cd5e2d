package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"luna/app/models/conversation"
	"luna/app/models/identity"
	"luna/app/repositories"
	chatservice "luna/app/services/chat"
	"luna/pkg/database"
	"luna/pkg/database/migrations"
	"luna/pkg/logger"
	"luna/pkg/openai"
)

type fakeStream struct {
	events chan string
	err    error
}

func (s *fakeStream) Events() <-chan string { return s.events }
func (s *fakeStream) Err() error            { return s.err }

type fakeGateway struct {
	chunks []string
}

func (g *fakeGateway) StreamChat(ctx context.Context, messages []openai.Message) (openai.Stream, error) {
	stream := &fakeStream{events: make(chan string, len(g.chunks))}
	for _, chunk := range g.chunks {
		stream.events <- chunk
	}
	close(stream.events)
	return stream, nil
}

func setupTest(t *testing.T, gateway chatservice.CompletionGateway, opts chatservice.Options) *MessageController {
	t.Helper()

	gin.SetMode(gin.TestMode)
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

	return &MessageController{
		service:    chatservice.NewService(gateway, opts),
		identities: repositories.NewIdentityRepository(),
		messages:   repositories.NewMessageRepository(),
		quotas:     repositories.NewQuotaRepository(),
	}
}

func testOptions() chatservice.Options {
	return chatservice.Options{
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

func createIdentity(t *testing.T) *identity.Identity {
	t.Helper()
	ident := &identity.Identity{
		Email:     fmt.Sprintf("%s@example.com", t.Name()),
		Whatsapp:  "+5511988887777",
		FullName:  "Ana Costa",
		BirthDate: "1992-09-01",
		BirthCity: "Curitiba",
		Plan:      identity.PlanEssencia,
	}
	require.NoError(t, repositories.NewIdentityRepository().Create(context.Background(), ident))
	return ident
}

func newRouter(mc *MessageController) *gin.Engine {
	router := gin.New()
	router.POST("/v1/identities/:id/messages", mc.Store)
	router.GET("/v1/identities/:id/messages", mc.Index)
	router.GET("/v1/identities/:id/questions/count", mc.QuestionCount)
	return router
}

func postJSON(router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestStoreStreamsAnswerAsSSE(t *testing.T) {
	mc := setupTest(t, &fakeGateway{chunks: []string{"今天", "很顺利"}}, testOptions())
	ident := createIdentity(t)
	router := newRouter(mc)

	w := postJSON(router, "/v1/identities/"+ident.ID+"/messages", `{"content":"我今天运势如何？"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `data: {"content":"今天"}`)
	assert.Contains(t, body, `data: {"content":"很顺利"}`)
	assert.Contains(t, body, `data: {"done":true}`)

	// 每条事件后跟空行
	assert.Contains(t, body, "}\n\n")
}

func TestStoreQuotaExceededReturns429(t *testing.T) {
	opts := testOptions()
	opts.PlanLimits[identity.PlanEssencia] = 1

	mc := setupTest(t, &fakeGateway{chunks: []string{"回答"}}, opts)
	ident := createIdentity(t)
	router := newRouter(mc)

	first := postJSON(router, "/v1/identities/"+ident.ID+"/messages", `{"content":"第一问"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := postJSON(router, "/v1/identities/"+ident.ID+"/messages", `{"content":"第二问"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	var payload struct {
		Error string `json:"error"`
		Limit int    `json:"limit"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload.Error)
	assert.Equal(t, 1, payload.Limit)
	assert.Equal(t, 1, payload.Count)
}

func TestStoreUnknownUserReturns404(t *testing.T) {
	mc := setupTest(t, &fakeGateway{}, testOptions())
	router := newRouter(mc)

	w := postJSON(router, "/v1/identities/missing/messages", `{"content":"你好"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreEmptyContentReturns400(t *testing.T) {
	mc := setupTest(t, &fakeGateway{}, testOptions())
	ident := createIdentity(t)
	router := newRouter(mc)

	w := postJSON(router, "/v1/identities/"+ident.ID+"/messages", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIndexReturnsHistoryOldestFirst(t *testing.T) {
	mc := setupTest(t, &fakeGateway{}, testOptions())
	ident := createIdentity(t)
	router := newRouter(mc)

	scope := conversation.PersonalScope(ident.ID)
	msgRepo := repositories.NewMessageRepository()
	_, err := msgRepo.Append(context.Background(), scope, conversation.RoleUser, "问题", "")
	require.NoError(t, err)
	_, err = msgRepo.Append(context.Background(), scope, conversation.RoleAssistant, "回答", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/identities/"+ident.ID+"/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// 历史按约定返回裸数组，从旧到新
	var messages []conversation.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "问题", messages[0].Content)
	assert.Equal(t, "回答", messages[1].Content)
}

func TestQuestionCountEndpoint(t *testing.T) {
	mc := setupTest(t, &fakeGateway{chunks: []string{"回答"}}, testOptions())
	ident := createIdentity(t)
	router := newRouter(mc)

	first := postJSON(router, "/v1/identities/"+ident.ID+"/messages", `{"content":"第一问"}`)
	require.Equal(t, http.StatusOK, first.Code)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/identities/"+ident.ID+"/questions/count", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// 计数按约定返回裸整数
	assert.Equal(t, "1", strings.TrimSpace(w.Body.String()))
}
