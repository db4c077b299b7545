package dto

import (
	"time"

	"github.com/hugohenrick/chat-assistente/internal/domain/conversation"
	"github.com/hugohenrick/chat-assistente/internal/domain/message"
)

// MemoryRequest representa o corpo da requisição de envio de mensagem
type MemoryRequest struct {
	Content        string `json:"content"`
	FileURL        string `json:"fileUrl"`
	Role           string `json:"role" binding:"required"`
	ConversationID string `json:"conversationId"`
	ReplyTo        string `json:"replyTo"`
}

// ChatRequest representa o corpo da requisição de completação avulsa
type ChatRequest struct {
	Content string `json:"content"`
	FileURL string `json:"fileUrl"`
}

// ChatReplyResponse representa a resposta da completação avulsa
type ChatReplyResponse struct {
	Reply string `json:"reply"`
}

// MemoryResponse representa a resposta da criação/acréscimo de mensagem
type MemoryResponse struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

// ConversationResponse representa uma conversa na listagem
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationListResponse representa a listagem de conversas
type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// MessageResponse representa uma mensagem na listagem
type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	FileURL        *string   `json:"fileUrl"`
	ReplyTo        *string   `json:"replyTo"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessageListResponse representa a listagem de mensagens de uma conversa
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// NewConversationListResponse converte as conversas do domínio para a resposta da API
func NewConversationListResponse(conversations []*conversation.Conversation) ConversationListResponse {
	out := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, ConversationResponse{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
		})
	}
	return ConversationListResponse{Conversations: out}
}

// NewMessageListResponse converte as mensagens do domínio para a resposta da API
func NewMessageListResponse(messages []*message.Message) MessageListResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Role:           string(m.Role),
			Content:        m.Content,
			FileURL:        OptionalString(m.FileURL),
			ReplyTo:        OptionalString(m.ReplyTo),
			CreatedAt:      m.CreatedAt,
		})
	}
	return MessageListResponse{Messages: out}
}

// OptionalString converte string vazia em null no JSON
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
