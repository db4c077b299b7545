package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hugohenrick/chat-assistente/internal/infrastructure/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("Aviso: Arquivo .env não encontrado: %v", err)
	}

	// Criar conexão com o banco
	db, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Erro ao conectar com o banco de dados: %v", err)
	}
	defer db.Close()

	// Executar as migrações
	if err := runMigrations(db.Pool()); err != nil {
		log.Fatalf("Erro ao executar migrações: %v", err)
	}

	log.Println("Migrações executadas com sucesso!")
}

func runMigrations(db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	conn, err := db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("erro ao obter conexão: %w", err)
	}
	defer conn.Release()

	// Verificar se a tabela de migrações existe
	if err := createMigrationsTable(ctx, conn); err != nil {
		return fmt.Errorf("erro ao criar tabela de migrações: %w", err)
	}

	// Verificar última migração executada
	lastMigration, err := getLastMigration(ctx, conn)
	if err != nil {
		return fmt.Errorf("erro ao verificar última migração: %w", err)
	}

	log.Printf("Última migração executada: %s", lastMigration)

	// Lista de migrações
	migrations := []migration{
		{
			version: "001_create_conversations",
			up: `
				-- Tabela de conversas
				CREATE TABLE IF NOT EXISTS conversations (
					id UUID PRIMARY KEY,
					title VARCHAR(255) NOT NULL,
					created_at TIMESTAMP NOT NULL
				);

				-- Índices
				CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC);
			`,
		},
		{
			version: "002_create_messages",
			up: `
				-- Tabela de mensagens: relação normalizada com a conversa dona.
				-- A coluna seq garante ordenação atômica dentro da conversa,
				-- sem array de referências crescendo dentro da conversa.
				CREATE TABLE IF NOT EXISTS messages (
					id UUID PRIMARY KEY,
					conversation_id UUID NOT NULL CONSTRAINT messages_conversation_id_fkey REFERENCES conversations(id),
					seq BIGSERIAL,
					role VARCHAR(20) NOT NULL CHECK (role IN ('user', 'assistant', 'system')),
					content TEXT NOT NULL DEFAULT '',
					file_url TEXT,
					reply_to UUID CONSTRAINT messages_reply_to_fkey REFERENCES messages(id),
					created_at TIMESTAMP NOT NULL
				);

				-- Índices
				CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
				CREATE INDEX IF NOT EXISTS idx_messages_conversation_seq ON messages(conversation_id, seq);
			`,
		},
	}

	// Executar migrações pendentes
	for _, m := range migrations {
		if m.version <= lastMigration {
			log.Printf("Pulando migração %s (já executada)", m.version)
			continue
		}

		log.Printf("Executando migração %s", m.version)

		// Iniciar transação
		tx, err := conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("erro ao iniciar transação: %w", err)
		}

		// Executar migração
		_, err = tx.Exec(ctx, m.up)
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Printf("Erro ao fazer rollback: %v", rbErr)
			}
			return fmt.Errorf("erro ao executar migração %s: %w", m.version, err)
		}

		// Registrar migração executada
		_, err = tx.Exec(ctx,
			"INSERT INTO migrations (version, executed_at) VALUES ($1, $2)",
			m.version, time.Now())
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Printf("Erro ao fazer rollback: %v", rbErr)
			}
			return fmt.Errorf("erro ao registrar migração %s: %w", m.version, err)
		}

		// Commit
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("erro ao fazer commit da migração %s: %w", m.version, err)
		}

		log.Printf("Migração %s executada com sucesso", m.version)
	}

	return nil
}

func createMigrationsTable(ctx context.Context, conn *pgxpool.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version VARCHAR(100) PRIMARY KEY,
			executed_at TIMESTAMP NOT NULL
		)
	`
	_, err := conn.Exec(ctx, query)
	return err
}

func getLastMigration(ctx context.Context, conn *pgxpool.Conn) (string, error) {
	var version string
	err := conn.QueryRow(ctx,
		"SELECT version FROM migrations ORDER BY executed_at DESC LIMIT 1").Scan(&version)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return version, nil
}

type migration struct {
	version string
	up      string
}
