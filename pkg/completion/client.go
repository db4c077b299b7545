// Package completion encapsula o serviço externo de geração de texto
// usado para produzir as respostas do assistente.
package completion

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/hugohenrick/chat-assistente/pkg/logger"
)

const (
	defaultModel = anthropic.ModelClaude3_7SonnetLatest
	maxTokens    = 1024

	// SystemPrompt é o preâmbulo de sistema enviado em toda geração
	SystemPrompt = "Você é um assistente prestativo."
)

// Message é uma entrada do histórico enviado ao serviço de geração
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer define a interface do serviço de geração de texto
type Completer interface {
	// Complete gera a resposta completa de uma vez
	Complete(ctx context.Context, history []Message) (string, error)

	// CompleteStreaming gera a resposta incrementalmente, chamando fn para
	// cada fragmento na ordem de chegada. A sequência é consumida uma única
	// vez; falha no meio do stream é terminal e não é repetida internamente
	CompleteStreaming(ctx context.Context, history []Message, fn func(delta string) error) error
}

// Client implementa Completer usando a API de mensagens da Anthropic
type Client struct {
	client *anthropic.Client
	model  anthropic.Model
	logger logger.Logger
}

// NewClient cria um novo cliente de geração de texto
func NewClient(log logger.Logger) (*Client, error) {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY não encontrada nas variáveis de ambiente")
	}

	c := anthropic.NewClient()

	model := defaultModel
	if m := os.Getenv("ANTHROPIC_MODEL"); m != "" {
		model = anthropic.Model(m)
	}

	return &Client{
		client: &c,
		model:  model,
		logger: log,
	}, nil
}

// buildParams monta a requisição para a API a partir do histórico.
// Entradas de sistema viram o prompt de sistema; as demais viram turnos
func (c *Client) buildParams(history []Message) anthropic.MessageNewParams {
	var system strings.Builder
	messages := make([]anthropic.MessageParam, 0, len(history))

	for _, m := range history {
		switch m.Role {
		case "system":
			if system.Len() > 0 {
				system.WriteString("\n")
			}
			system.WriteString(m.Content)
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}

	if system.Len() > 0 {
		params.System = []anthropic.TextBlockParam{{Text: system.String()}}
	}

	return params
}

// Complete implementa Completer.Complete
func (c *Client) Complete(ctx context.Context, history []Message) (string, error) {
	msg, err := c.client.Messages.New(ctx, c.buildParams(history))
	if err != nil {
		return "", fmt.Errorf("erro ao chamar o serviço de geração: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}

	return sb.String(), nil
}

// CompleteStreaming implementa Completer.CompleteStreaming
func (c *Client) CompleteStreaming(ctx context.Context, history []Message, fn func(delta string) error) error {
	stream := c.client.Messages.NewStreaming(ctx, c.buildParams(history))

	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if deltaVariant.Text == "" {
					continue
				}
				if err := fn(deltaVariant.Text); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		c.logger.Error("erro no stream de geração", "error", err)
		return fmt.Errorf("erro no stream de geração: %w", err)
	}

	return nil
}
