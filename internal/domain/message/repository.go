package message

import (
	"context"
)

// Repository define a interface para operações de repositório de mensagens
type Repository interface {
	// Append acrescenta uma mensagem ao final de uma conversa existente
	Append(ctx context.Context, m *Message) error

	// ListByConversation retorna as mensagens de uma conversa, das mais
	// antigas para as mais recentes. Conversa inexistente retorna lista vazia
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
}
