package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/dto"
	"github.com/hugohenrick/chat-assistente/internal/adapter/repository"
	"github.com/hugohenrick/chat-assistente/internal/domain/conversation"
	"github.com/hugohenrick/chat-assistente/internal/domain/message"
	"github.com/hugohenrick/chat-assistente/pkg/completion"
	"github.com/hugohenrick/chat-assistente/pkg/logger"
	"github.com/hugohenrick/chat-assistente/pkg/stream"
)

// ChatController gerencia as requisições de conversas e mensagens
type ChatController struct {
	conversationRepo conversation.Repository
	messageRepo      message.Repository
	completer        completion.Completer
	logger           logger.Logger
}

// NewChatController cria uma nova instância de ChatController
func NewChatController(
	conversationRepo conversation.Repository,
	messageRepo message.Repository,
	completer completion.Completer,
	log logger.Logger,
) *ChatController {
	return &ChatController{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		completer:        completer,
		logger:           log,
	}
}

// Post processa o envio de uma mensagem
// @Summary Enviar mensagem
// @Description Cria uma conversa com a primeira mensagem, acrescenta uma mensagem a uma conversa existente ou, com stream=1, gera a resposta do assistente em streaming
// @Tags memory
// @Accept json
// @Produce json
// @Param stream query string false "1 para resposta do assistente em streaming"
// @Param message body dto.MemoryRequest true "Dados da mensagem"
// @Success 200 {object} dto.MemoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memory [post]
func (c *ChatController) Post(ctx *gin.Context) {
	var req dto.MemoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "corpo da requisição inválido", err.Error()))
		return
	}

	role := message.Role(req.Role)
	if !role.IsValid() {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "papel inválido", req.Role))
		return
	}

	if role == message.RoleUser && strings.TrimSpace(req.Content) == "" && req.FileURL == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "mensagem precisa de conteúdo ou arquivo anexado", ""))
		return
	}

	isStreaming := ctx.Query("stream") == "1"
	hasConversation := req.ConversationID != ""

	// Despacho explícito pela tupla (papel, conversa existente, streaming)
	switch {
	case role == message.RoleUser && !hasConversation:
		c.createConversation(ctx, req)
	case role == message.RoleUser && hasConversation && !isStreaming:
		c.appendUserMessage(ctx, req)
	case hasConversation && isStreaming:
		c.streamReply(ctx, req)
	default:
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "requisição inválida", ""))
	}
}

// createConversation cria uma nova conversa com a primeira mensagem do usuário
func (c *ChatController) createConversation(ctx *gin.Context, req dto.MemoryRequest) {
	convo := conversation.NewConversation(conversation.TitleFromContent(req.Content))

	if err := c.conversationRepo.Create(ctx.Request.Context(), convo); err != nil {
		c.logger.Error("erro ao criar conversa", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao criar conversa", err.Error()))
		return
	}

	msg, err := message.NewMessage(convo.ID, message.RoleUser, req.Content, req.FileURL, "")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "mensagem inválida", err.Error()))
		return
	}

	if err := c.messageRepo.Append(ctx.Request.Context(), msg); err != nil {
		c.logger.Error("erro ao salvar mensagem inicial", "conversation_id", convo.ID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao salvar mensagem", err.Error()))
		return
	}

	c.logger.Info("conversa criada", "conversation_id", convo.ID, "message_id", msg.ID)
	ctx.JSON(http.StatusOK, dto.MemoryResponse{ConversationID: convo.ID, MessageID: msg.ID})
}

// appendUserMessage acrescenta uma mensagem do usuário a uma conversa existente
func (c *ChatController) appendUserMessage(ctx *gin.Context, req dto.MemoryRequest) {
	msg, err := message.NewMessage(req.ConversationID, message.RoleUser, req.Content, req.FileURL, req.ReplyTo)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "mensagem inválida", err.Error()))
		return
	}

	if err := c.messageRepo.Append(ctx.Request.Context(), msg); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "conversa não encontrada", req.ConversationID))
			return
		}
		if errors.Is(err, repository.ErrReplyToNotFound) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "replyTo não pertence à conversa", req.ReplyTo))
			return
		}
		c.logger.Error("erro ao salvar mensagem", "conversation_id", req.ConversationID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao salvar mensagem", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.MemoryResponse{ConversationID: req.ConversationID, MessageID: msg.ID})
}

// streamReply gera a resposta do assistente em streaming: um quadro por
// fragmento na ordem de chegada, persistência única após o término normal e
// quadro terminal (done ou error) sempre por último. Stream que falha não
// persiste mensagem nenhuma.
func (c *ChatController) streamReply(ctx *gin.Context, req dto.MemoryRequest) {
	reqCtx := ctx.Request.Context()

	exists, err := c.conversationRepo.Exists(reqCtx, req.ConversationID)
	if err != nil {
		c.logger.Error("erro ao verificar conversa", "conversation_id", req.ConversationID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao buscar conversa", err.Error()))
		return
	}
	if !exists {
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "conversa não encontrada", req.ConversationID))
		return
	}

	msgs, err := c.messageRepo.ListByConversation(reqCtx, req.ConversationID)
	if err != nil {
		c.logger.Error("erro ao buscar histórico", "conversation_id", req.ConversationID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao buscar histórico", err.Error()))
		return
	}

	history := completion.ShapeHistory(buildHistory(msgs))

	// A partir daqui a resposta é um stream chunked; falhas viram quadro de erro
	w := stream.NewWriter(ctx.Writer)

	var full strings.Builder
	err = c.completer.CompleteStreaming(reqCtx, history, func(delta string) error {
		full.WriteString(delta)
		return w.WriteDelta(delta)
	})
	if err != nil {
		c.logger.Error("erro no streaming da resposta", "conversation_id", req.ConversationID, "error", err)
		if wErr := w.WriteError("erro ao gerar resposta", err.Error()); wErr != nil {
			c.logger.Error("erro ao emitir quadro de erro", "conversation_id", req.ConversationID, "error", wErr)
		}
		return
	}

	msg, err := message.NewMessage(req.ConversationID, message.RoleAssistant, full.String(), req.FileURL, req.ReplyTo)
	if err != nil {
		c.logger.Error("erro ao montar mensagem do assistente", "conversation_id", req.ConversationID, "error", err)
		w.WriteError("erro ao salvar resposta", err.Error())
		return
	}

	if err := c.messageRepo.Append(reqCtx, msg); err != nil {
		c.logger.Error("erro ao salvar resposta do assistente", "conversation_id", req.ConversationID, "error", err)
		w.WriteError("erro ao salvar resposta", err.Error())
		return
	}

	c.logger.Info("resposta do assistente persistida", "conversation_id", req.ConversationID, "message_id", msg.ID)
	if err := w.WriteDone(msg.ID, dto.OptionalString(req.FileURL)); err != nil {
		c.logger.Error("erro ao emitir quadro final", "conversation_id", req.ConversationID, "error", err)
	}
}

// Chat gera uma resposta avulsa do assistente, sem conversa nem persistência
// @Summary Completação avulsa
// @Description Gera uma resposta do assistente para um único turno, sem criar conversa nem persistir mensagens
// @Tags chat
// @Accept json
// @Produce json
// @Param message body dto.ChatRequest true "Conteúdo do turno"
// @Success 200 {object} dto.ChatReplyResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /chat [post]
func (c *ChatController) Chat(ctx *gin.Context) {
	var req dto.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "corpo da requisição inválido", err.Error()))
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "conteúdo é obrigatório", ""))
		return
	}

	content := req.Content
	if req.FileURL != "" {
		content += "\n\nArquivo anexado: " + req.FileURL
	}

	history := []completion.Message{
		{Role: "system", Content: completion.SystemPrompt},
		{Role: "user", Content: content},
	}

	reply, err := c.completer.Complete(ctx.Request.Context(), history)
	if err != nil {
		c.logger.Error("erro ao gerar resposta avulsa", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao gerar resposta", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.ChatReplyResponse{Reply: reply})
}

// Get lista conversas ou mensagens conforme os parâmetros de consulta
// @Summary Listar conversas ou mensagens
// @Description Com all=1 lista todas as conversas (mais recentes primeiro); com conversationId lista as mensagens da conversa (mais antigas primeiro)
// @Tags memory
// @Produce json
// @Param all query string false "1 para listar todas as conversas"
// @Param conversationId query string false "ID da conversa"
// @Success 200 {object} dto.ConversationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memory [get]
func (c *ChatController) Get(ctx *gin.Context) {
	if ctx.Query("all") == "1" {
		conversations, err := c.conversationRepo.List(ctx.Request.Context())
		if err != nil {
			c.logger.Error("erro ao listar conversas", "error", err)
			ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao listar conversas", err.Error()))
			return
		}
		ctx.JSON(http.StatusOK, dto.NewConversationListResponse(conversations))
		return
	}

	if conversationID := ctx.Query("conversationId"); conversationID != "" {
		// Conversa inexistente resulta em lista vazia, não em erro
		messages, err := c.messageRepo.ListByConversation(ctx.Request.Context(), conversationID)
		if err != nil {
			c.logger.Error("erro ao listar mensagens", "conversation_id", conversationID, "error", err)
			ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao listar mensagens", err.Error()))
			return
		}
		ctx.JSON(http.StatusOK, dto.NewMessageListResponse(messages))
		return
	}

	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "requisição inválida", "informe all=1 ou conversationId"))
}

// Delete remove uma conversa e todas as suas mensagens
// @Summary Remover conversa
// @Description Remove a conversa e todas as suas mensagens em uma única transação
// @Tags memory
// @Produce json
// @Param conversationId query string true "ID da conversa"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /memory [delete]
func (c *ChatController) Delete(ctx *gin.Context) {
	conversationID := ctx.Query("conversationId")
	if conversationID == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "conversationId é obrigatório", ""))
		return
	}

	if err := c.conversationRepo.Delete(ctx.Request.Context(), conversationID); err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "conversa não encontrada", conversationID))
			return
		}
		c.logger.Error("erro ao remover conversa", "conversation_id", conversationID, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao remover conversa", err.Error()))
		return
	}

	c.logger.Info("conversa removida", "conversation_id", conversationID)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("conversa removida", nil))
}

// buildHistory monta o histórico para o serviço de geração: o preâmbulo de
// sistema sempre primeiro, e cada mensagem com anexo ganha a URL no final
func buildHistory(msgs []*message.Message) []completion.Message {
	history := make([]completion.Message, 0, len(msgs)+1)
	history = append(history, completion.Message{Role: "system", Content: completion.SystemPrompt})

	for _, m := range msgs {
		content := m.Content
		if m.FileURL != "" {
			content += "\n\nArquivo anexado: " + m.FileURL
		}
		history = append(history, completion.Message{
			Role:    string(m.Role),
			Content: content,
		})
	}

	return history
}
