// Package stream implementa o formato de quadros usado entre o servidor e o
// cliente durante o streaming da resposta do assistente. Cada quadro é uma
// linha "data: " seguida de um payload JSON e uma linha em branco.
package stream

// Prefix é o prefixo fixo de cada quadro
const Prefix = "data: "

// DeltaFrame carrega um fragmento do texto do assistente
type DeltaFrame struct {
	Delta string `json:"delta"`
}

// DoneFrame é o quadro terminal de sucesso, sempre o último do stream
type DoneFrame struct {
	Done      bool    `json:"done"`
	MessageID string  `json:"messageId"`
	FileURL   *string `json:"fileUrl"`
}

// ErrorFrame é o quadro terminal de falha, sempre o último do stream
type ErrorFrame struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Event é a visão do consumidor sobre um quadro recebido.
// Os campos são mutuamente exclusivos por quadro: ou Delta, ou Done, ou Error.
type Event struct {
	Delta     string  `json:"delta"`
	Done      bool    `json:"done"`
	MessageID string  `json:"messageId"`
	FileURL   *string `json:"fileUrl"`
	Error     string  `json:"error"`
	Details   string  `json:"details"`
}

// IsDelta indica se o evento carrega um fragmento de texto
func (e *Event) IsDelta() bool {
	return e.Delta != ""
}

// IsDone indica se o evento é o quadro terminal de sucesso
func (e *Event) IsDone() bool {
	return e.Done
}

// IsError indica se o evento é o quadro terminal de falha
func (e *Event) IsError() bool {
	return e.Error != ""
}
