package conversation

import (
	"context"
)

// Repository define a interface para operações de repositório de conversas
type Repository interface {
	// Create cria uma nova conversa
	Create(ctx context.Context, c *Conversation) error

	// FindByID busca uma conversa pelo ID
	FindByID(ctx context.Context, id string) (*Conversation, error)

	// List lista todas as conversas, das mais recentes para as mais antigas
	List(ctx context.Context) ([]*Conversation, error)

	// Delete remove uma conversa e todas as suas mensagens atomicamente
	Delete(ctx context.Context, id string) error

	// Exists verifica se uma conversa existe
	Exists(ctx context.Context, id string) (bool, error)
}
