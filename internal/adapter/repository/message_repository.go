package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugohenrick/chat-assistente/internal/domain/message"
	"github.com/hugohenrick/chat-assistente/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrReplyToNotFound indica que replyTo não aponta para uma mensagem da mesma conversa
var ErrReplyToNotFound = errors.New("mensagem respondida não encontrada na conversa")

// PostgresMessageRepository implementa a interface message.Repository usando PostgreSQL
type PostgresMessageRepository struct {
	db *database.PostgresDB
}

// NewPostgresMessageRepository cria uma nova instância de PostgresMessageRepository
func NewPostgresMessageRepository(db *database.PostgresDB) *PostgresMessageRepository {
	return &PostgresMessageRepository{
		db: db,
	}
}

// Append implementa message.Repository.Append.
// A ordem dentro da conversa vem da coluna seq (BIGSERIAL): appends
// concorrentes na mesma conversa nunca corrompem a ordenação.
// Quando reply_to é informado, a mensagem respondida precisa pertencer à
// mesma conversa; a inserção só acontece se a referência for válida.
func (r *PostgresMessageRepository) Append(ctx context.Context, m *message.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, role, content, file_url, reply_to, created_at)
		SELECT $1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, '')::uuid, $7
		WHERE $6 = ''
		   OR EXISTS (SELECT 1 FROM messages WHERE id = NULLIF($6, '')::uuid AND conversation_id = $2)
		RETURNING seq
	`

	err := r.db.Pool().QueryRow(ctx, query,
		m.ID,
		m.ConversationID,
		string(m.Role),
		m.Content,
		m.FileURL,
		m.ReplyTo,
		m.CreatedAt,
	).Scan(&m.Seq)

	if err != nil {
		// Nenhuma linha inserida: a cláusula de guarda rejeitou o reply_to
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReplyToNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503": // Foreign key violation
				if pgErr.ConstraintName == "messages_reply_to_fkey" {
					return ErrReplyToNotFound
				}
				return ErrConversationNotFound
			case "22P02": // reply_to não é um UUID
				return ErrReplyToNotFound
			}
		}
		return fmt.Errorf("falha ao inserir mensagem: %w", err)
	}

	return nil
}

// ListByConversation implementa message.Repository.ListByConversation
func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*message.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, COALESCE(file_url, ''), COALESCE(reply_to::text, ''), seq, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar mensagens: %w", err)
	}
	defer rows.Close()

	messages := make([]*message.Message, 0)
	for rows.Next() {
		var m message.Message
		var role string
		err := rows.Scan(
			&m.ID,
			&m.ConversationID,
			&role,
			&m.Content,
			&m.FileURL,
			&m.ReplyTo,
			&m.Seq,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler mensagem: %w", err)
		}
		m.Role = message.Role(role)
		messages = append(messages, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("falha ao ler linhas: %w", err)
	}

	return messages, nil
}
