package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohenrick/chat-assistente/internal/adapter/api/dto"
	"github.com/hugohenrick/chat-assistente/internal/adapter/repository"
	"github.com/hugohenrick/chat-assistente/internal/domain/conversation"
	"github.com/hugohenrick/chat-assistente/internal/domain/message"
	"github.com/hugohenrick/chat-assistente/pkg/completion"
)

// fakeStore implementa os repositórios de conversas e mensagens em memória
type fakeStore struct {
	conversations []*conversation.Conversation
	messages      map[string][]*message.Message
	nextSeq       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string][]*message.Message)}
}

func (s *fakeStore) Create(_ context.Context, c *conversation.Conversation) error {
	s.conversations = append(s.conversations, c)
	s.messages[c.ID] = nil
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*conversation.Conversation, error) {
	for _, c := range s.conversations {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrConversationNotFound
}

func (s *fakeStore) List(_ context.Context) ([]*conversation.Conversation, error) {
	out := make([]*conversation.Conversation, 0, len(s.conversations))
	for i := len(s.conversations) - 1; i >= 0; i-- {
		out = append(out, s.conversations[i])
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id string) error {
	for i, c := range s.conversations {
		if c.ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			delete(s.messages, id)
			return nil
		}
	}
	return repository.ErrConversationNotFound
}

func (s *fakeStore) Exists(_ context.Context, id string) (bool, error) {
	for _, c := range s.conversations {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Append(_ context.Context, m *message.Message) error {
	if _, ok := s.messages[m.ConversationID]; !ok {
		return repository.ErrConversationNotFound
	}
	if m.ReplyTo != "" {
		found := false
		for _, existing := range s.messages[m.ConversationID] {
			if existing.ID == m.ReplyTo {
				found = true
				break
			}
		}
		if !found {
			return repository.ErrReplyToNotFound
		}
	}
	s.nextSeq++
	m.Seq = s.nextSeq
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], m)
	return nil
}

func (s *fakeStore) ListByConversation(_ context.Context, conversationID string) ([]*message.Message, error) {
	return s.messages[conversationID], nil
}

// fakeCompleter devolve fragmentos pré-definidos e registra o histórico recebido
type fakeCompleter struct {
	deltas  []string
	err     error
	history []completion.Message
}

func (f *fakeCompleter) Complete(_ context.Context, history []completion.Message) (string, error) {
	f.history = history
	return strings.Join(f.deltas, ""), f.err
}

func (f *fakeCompleter) CompleteStreaming(_ context.Context, history []completion.Message, fn func(delta string) error) error {
	f.history = history
	for _, d := range f.deltas {
		if err := fn(d); err != nil {
			return err
		}
	}
	return f.err
}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}

func newTestRouter(store *fakeStore, completer completion.Completer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	c := NewChatController(store, store, completer, noopLogger{})
	router.POST("/memory", c.Post)
	router.GET("/memory", c.Get)
	router.DELETE("/memory", c.Delete)
	router.POST("/chat", c.Chat)

	return router
}

func postMemory(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedConversation(t *testing.T, store *fakeStore, content string) *conversation.Conversation {
	t.Helper()

	convo := conversation.NewConversation(conversation.TitleFromContent(content))
	require.NoError(t, store.Create(context.Background(), convo))

	msg, err := message.NewMessage(convo.ID, message.RoleUser, content, "", "")
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), msg))

	return convo
}

func TestPost_CreateConversation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		Content: "qual a capital da França e por quê",
		Role:    "user",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.MemoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.MessageID)

	// A conversa foi criada com título derivado das seis primeiras palavras
	require.Len(t, store.conversations, 1)
	assert.Equal(t, "qual a capital da França e", store.conversations[0].Title)

	// A primeira mensagem do usuário foi persistida
	msgs := store.messages[resp.ConversationID]
	require.Len(t, msgs, 1)
	assert.Equal(t, message.RoleUser, msgs[0].Role)
	assert.Equal(t, resp.MessageID, msgs[0].ID)
}

func TestPost_CreateConversationWithFileOnly(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		FileURL: "https://cdn.example.com/planilha.xlsx",
		Role:    "user",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.conversations, 1)
	assert.Equal(t, conversation.DefaultTitle, store.conversations[0].Title)
}

func TestPost_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "sem papel",
			body: map[string]interface{}{"content": "olá"},
		},
		{
			name: "papel inválido",
			body: map[string]interface{}{"content": "olá", "role": "bot"},
		},
		{
			name: "mensagem de usuário vazia",
			body: map[string]interface{}{"content": "   ", "role": "user"},
		},
		{
			name: "assistente sem conversa",
			body: map[string]interface{}{"content": "olá", "role": "assistant"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			router := newTestRouter(store, &fakeCompleter{})

			rec := postMemory(t, router, "/memory", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, store.conversations)
		})
	}
}

func TestPost_AppendUserMessage(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	convo := seedConversation(t, store, "primeira pergunta")

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		Content:        "segunda pergunta",
		Role:           "user",
		ConversationID: convo.ID,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.MemoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, convo.ID, resp.ConversationID)

	msgs := store.messages[convo.ID]
	require.Len(t, msgs, 2)
	assert.Equal(t, "segunda pergunta", msgs[1].Content)
}

func TestPost_AppendToUnknownConversation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		Content:        "olá",
		Role:           "user",
		ConversationID: "inexistente",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPost_AppendWithReplyTo(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	convo := seedConversation(t, store, "primeira pergunta")
	first := store.messages[convo.ID][0]

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		Content:        "complemento",
		Role:           "user",
		ConversationID: convo.ID,
		ReplyTo:        first.ID,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	msgs := store.messages[convo.ID]
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[1].ReplyTo)
}

func TestPost_AppendWithReplyToFromAnotherConversation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	convo := seedConversation(t, store, "pergunta")
	other := seedConversation(t, store, "outra conversa")
	foreign := store.messages[other.ID][0]

	rec := postMemory(t, router, "/memory", dto.MemoryRequest{
		Content:        "resposta cruzada",
		Role:           "user",
		ConversationID: convo.ID,
		ReplyTo:        foreign.ID,
	})

	// replyTo precisa apontar para uma mensagem da mesma conversa
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, store.messages[convo.ID], 1)
}

func TestChat(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{deltas: []string{"A capital da França é Paris."}}
	router := newTestRouter(store, completer)

	rec := postMemory(t, router, "/chat", dto.ChatRequest{
		Content: "qual a capital da França?",
		FileURL: "https://cdn.example.com/mapa.png",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ChatReplyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A capital da França é Paris.", resp.Reply)

	// Um único turno: preâmbulo de sistema e a pergunta com o anexo no final
	require.Len(t, completer.history, 2)
	assert.Equal(t, "system", completer.history[0].Role)
	assert.Equal(t, completion.SystemPrompt, completer.history[0].Content)
	assert.Equal(t, "qual a capital da França?\n\nArquivo anexado: https://cdn.example.com/mapa.png", completer.history[1].Content)

	// Nada é persistido pela completação avulsa
	assert.Empty(t, store.conversations)
}

func TestChat_MissingContent(t *testing.T) {
	router := newTestRouter(newFakeStore(), &fakeCompleter{})

	rec := postMemory(t, router, "/chat", dto.ChatRequest{Content: "   "})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_CompleterError(t *testing.T) {
	router := newTestRouter(newFakeStore(), &fakeCompleter{err: assert.AnError})

	rec := postMemory(t, router, "/chat", dto.ChatRequest{Content: "olá"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPost_StreamReply(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{deltas: []string{"A capital", " da França", " é Paris."}}
	router := newTestRouter(store, completer)
	convo := seedConversation(t, store, "qual a capital da França?")

	rec := postMemory(t, router, "/memory?stream=1", dto.MemoryRequest{
		Role:           "user",
		Content:        "responda",
		ConversationID: convo.ID,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	// A resposta completa foi persistida como mensagem do assistente
	msgs := store.messages[convo.ID]
	require.Len(t, msgs, 2)
	assistant := msgs[1]
	assert.Equal(t, message.RoleAssistant, assistant.Role)
	assert.Equal(t, "A capital da França é Paris.", assistant.Content)

	// Um quadro por fragmento, na ordem, e o quadro done por último
	want := "data: {\"delta\":\"A capital\"}\n\n" +
		"data: {\"delta\":\" da França\"}\n\n" +
		"data: {\"delta\":\" é Paris.\"}\n\n" +
		"data: {\"done\":true,\"messageId\":\"" + assistant.ID + "\",\"fileUrl\":null}\n\n"
	assert.Equal(t, want, rec.Body.String())

	// O histórico enviado ao serviço de geração começa com o preâmbulo de sistema
	require.NotEmpty(t, completer.history)
	assert.Equal(t, "system", completer.history[0].Role)
	assert.Equal(t, completion.SystemPrompt, completer.history[0].Content)
}

func TestPost_StreamReplyIncludesFileInHistory(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{deltas: []string{"ok"}}
	router := newTestRouter(store, completer)

	convo := conversation.NewConversation("Nova conversa")
	require.NoError(t, store.Create(context.Background(), convo))
	msg, err := message.NewMessage(convo.ID, message.RoleUser, "veja o anexo", "https://cdn.example.com/doc.pdf", "")
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), msg))

	rec := postMemory(t, router, "/memory?stream=1", dto.MemoryRequest{
		Role:           "user",
		Content:        "responda",
		ConversationID: convo.ID,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, completer.history, 2)
	assert.Equal(t, "veja o anexo\n\nArquivo anexado: https://cdn.example.com/doc.pdf", completer.history[1].Content)
}

func TestPost_StreamUnknownConversation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	rec := postMemory(t, router, "/memory?stream=1", dto.MemoryRequest{
		Role:           "user",
		Content:        "responda",
		ConversationID: "inexistente",
	})

	// A falha acontece antes do streaming começar: resposta JSON normal
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPost_StreamFailureDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	completer := &fakeCompleter{
		deltas: []string{"parcial", " incompleto"},
		err:    assert.AnError,
	}
	router := newTestRouter(store, completer)
	convo := seedConversation(t, store, "pergunta")

	rec := postMemory(t, router, "/memory?stream=1", dto.MemoryRequest{
		Role:           "user",
		Content:        "responda",
		ConversationID: convo.ID,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	// Os fragmentos emitidos antes da falha aparecem, seguidos do quadro de erro
	body := rec.Body.String()
	assert.Contains(t, body, "data: {\"delta\":\"parcial\"}\n\n")
	assert.Contains(t, body, "\"error\":\"erro ao gerar resposta\"")
	assert.NotContains(t, body, "\"done\":true")

	// Nada além da mensagem original do usuário foi persistido
	assert.Len(t, store.messages[convo.ID], 1)
}

func TestGet_ListConversations(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	seedConversation(t, store, "primeira conversa")
	second := seedConversation(t, store, "segunda conversa")

	req := httptest.NewRequest(http.MethodGet, "/memory?all=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ConversationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 2)

	// Mais recentes primeiro
	assert.Equal(t, second.ID, resp.Conversations[0].ID)
}

func TestGet_ListMessages(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	convo := seedConversation(t, store, "pergunta")

	req := httptest.NewRequest(http.MethodGet, "/memory?conversationId="+convo.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.MessageListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "pergunta", resp.Messages[0].Content)
	assert.Nil(t, resp.Messages[0].FileURL)
}

func TestGet_UnknownConversationReturnsEmptyList(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/memory?conversationId=inexistente", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.MessageListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
}

func TestGet_WithoutParams(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/memory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_Conversation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})
	convo := seedConversation(t, store, "para remover")

	req := httptest.NewRequest(http.MethodDelete, "/memory?conversationId="+convo.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.conversations)
	assert.NotContains(t, store.messages, convo.ID)
}

func TestDelete_Validation(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, &fakeCompleter{})

	req := httptest.NewRequest(http.MethodDelete, "/memory", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/memory?conversationId=inexistente", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
