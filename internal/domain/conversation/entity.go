package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle é o título usado quando a primeira mensagem não tem texto
const DefaultTitle = "Nova conversa"

// titleWords é o número de palavras do conteúdo usadas para derivar o título
const titleWords = 6

// Conversation representa uma conversa do chat
type Conversation struct {
	ID        string    `json:"id"`         // ID da Conversa
	Title     string    `json:"title"`      // Título (imutável após a criação)
	CreatedAt time.Time `json:"created_at"` // Data de Criação
}

// NewConversation cria uma nova conversa com o título informado
func NewConversation(title string) *Conversation {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	return &Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now(),
	}
}

// TitleFromContent deriva o título da conversa a partir do conteúdo da
// primeira mensagem: as seis primeiras palavras, ou o título padrão
func TitleFromContent(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return DefaultTitle
	}

	if len(words) > titleWords {
		words = words[:titleWords]
	}

	return strings.Join(words, " ")
}
