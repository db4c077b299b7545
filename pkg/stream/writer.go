package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Writer emite quadros em uma resposta HTTP chunked, descarregando o buffer
// após cada quadro para que o cliente receba os fragmentos incrementalmente
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter cria um Writer sobre a resposta HTTP e escreve os cabeçalhos do stream
func NewWriter(w http.ResponseWriter) *Writer {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: flusher}
}

// WriteDelta emite um quadro com um fragmento do texto do assistente
func (s *Writer) WriteDelta(text string) error {
	return s.writeFrame(DeltaFrame{Delta: text})
}

// WriteDone emite o quadro terminal de sucesso com o ID da mensagem persistida
func (s *Writer) WriteDone(messageID string, fileURL *string) error {
	return s.writeFrame(DoneFrame{Done: true, MessageID: messageID, FileURL: fileURL})
}

// WriteError emite o quadro terminal de falha
func (s *Writer) WriteError(message, details string) error {
	return s.writeFrame(ErrorFrame{Error: message, Details: details})
}

func (s *Writer) writeFrame(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar quadro: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "%s%s\n\n", Prefix, data); err != nil {
		return fmt.Errorf("erro ao escrever quadro: %w", err)
	}

	if s.flusher != nil {
		s.flusher.Flush()
	}

	return nil
}
