package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugohenrick/chat-assistente/internal/domain/conversation"
	"github.com/hugohenrick/chat-assistente/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
)

// Erros específicos do repositório
var (
	ErrConversationNotFound = errors.New("conversa não encontrada")
)

// PostgresConversationRepository implementa a interface conversation.Repository usando PostgreSQL
type PostgresConversationRepository struct {
	db *database.PostgresDB
}

// NewPostgresConversationRepository cria uma nova instância de PostgresConversationRepository
func NewPostgresConversationRepository(db *database.PostgresDB) *PostgresConversationRepository {
	return &PostgresConversationRepository{
		db: db,
	}
}

// Create implementa conversation.Repository.Create
func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	query := `
		INSERT INTO conversations (id, title, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Pool().Exec(ctx, query, c.ID, c.Title, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao inserir conversa: %w", err)
	}

	return nil
}

// FindByID implementa conversation.Repository.FindByID
func (r *PostgresConversationRepository) FindByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	query := `
		SELECT id, title, created_at
		FROM conversations
		WHERE id = $1
	`

	var c conversation.Conversation
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(&c.ID, &c.Title, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("falha ao buscar conversa: %w", err)
	}

	return &c, nil
}

// List implementa conversation.Repository.List
func (r *PostgresConversationRepository) List(ctx context.Context) ([]*conversation.Conversation, error) {
	query := `
		SELECT id, title, created_at
		FROM conversations
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar conversas: %w", err)
	}
	defer rows.Close()

	conversations := make([]*conversation.Conversation, 0)
	for rows.Next() {
		var c conversation.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("falha ao ler conversa: %w", err)
		}
		conversations = append(conversations, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("falha ao ler linhas: %w", err)
	}

	return conversations, nil
}

// Delete implementa conversation.Repository.Delete.
// A remoção da conversa e de todas as suas mensagens acontece em uma única
// transação, então não há como ficar mensagem órfã em caso de falha parcial.
func (r *PostgresConversationRepository) Delete(ctx context.Context, id string) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM messages WHERE conversation_id = $1", id); err != nil {
			return fmt.Errorf("falha ao remover mensagens da conversa: %w", err)
		}

		result, err := tx.Exec(ctx, "DELETE FROM conversations WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("falha ao remover conversa: %w", err)
		}

		if result.RowsAffected() == 0 {
			return ErrConversationNotFound
		}

		return nil
	})
}

// Exists implementa conversation.Repository.Exists
func (r *PostgresConversationRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.Pool().QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM conversations WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("falha ao verificar conversa: %w", err)
	}

	return exists, nil
}
