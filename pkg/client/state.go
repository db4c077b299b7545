package client

import "time"

// State representa o estado da máquina de consumo do stream para uma requisição
type State int

const (
	// StateIdle indica que nenhuma requisição está em andamento
	StateIdle State = iota

	// StateStreaming indica que fragmentos estão sendo acumulados no placeholder
	StateStreaming

	// StateFinalized indica que o quadro terminal chegou e o placeholder
	// adotou a identidade persistida. Estado terminal
	StateFinalized

	// StateFailed indica falha de transporte, quadro de erro ou stream vazio.
	// Estado terminal
	StateFailed
)

// String implementa fmt.Stringer
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Entry representa uma mensagem na lista local exibida ao usuário
type Entry struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	FileURL   string    `json:"file_url"`
	ReplyTo   string    `json:"reply_to"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation representa uma conversa na listagem do servidor
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
