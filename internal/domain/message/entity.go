package message

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRole         = errors.New("papel inválido: deve ser user, assistant ou system")
	ErrEmptyConversationID = errors.New("id da conversa não pode ser vazio")
	ErrEmptyUserMessage    = errors.New("mensagem de usuário precisa de conteúdo ou arquivo anexado")
)

// Role define o autor de uma mensagem (conjunto fechado)
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid verifica se o papel pertence ao conjunto permitido
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message representa um turno de uma conversa
type Message struct {
	ID             string    `json:"id"`              // ID da Mensagem
	ConversationID string    `json:"conversation_id"` // ID da Conversa dona
	Role           Role      `json:"role"`            // Autor (user/assistant/system)
	Content        string    `json:"content"`         // Conteúdo textual (pode ser vazio se houver anexo)
	FileURL        string    `json:"file_url"`        // URL do arquivo anexado (opcional)
	ReplyTo        string    `json:"reply_to"`        // ID da mensagem de usuário respondida (opcional)
	Seq            int64     `json:"seq"`             // Posição da mensagem dentro da conversa
	CreatedAt      time.Time `json:"created_at"`      // Data de Criação
}

// NewMessage cria uma nova mensagem imutável para a conversa informada.
// Mensagens de usuário precisam de conteúdo não vazio ou de um anexo.
func NewMessage(conversationID string, role Role, content, fileURL, replyTo string) (*Message, error) {
	if conversationID == "" {
		return nil, ErrEmptyConversationID
	}

	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if role == RoleUser && strings.TrimSpace(content) == "" && fileURL == "" {
		return nil, ErrEmptyUserMessage
	}

	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		FileURL:        fileURL,
		ReplyTo:        replyTo,
		CreatedAt:      time.Now(),
	}, nil
}
