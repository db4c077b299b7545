// Package storage integra o provedor externo de armazenamento de arquivos.
package storage

import (
	"context"
	"io"
)

// Uploader define a interface para envio de arquivos ao provedor de armazenamento
type Uploader interface {
	// Upload envia o conteúdo do arquivo e retorna a URL pública do objeto armazenado
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}
