package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// Reader lê quadros de um corpo de resposta HTTP em streaming.
// Linhas que não começam com o prefixo "data: " são ignoradas.
type Reader struct {
	reader *bufio.Reader
}

// NewReader cria um Reader sobre o corpo da resposta
func NewReader(r io.Reader) *Reader {
	return &Reader{
		reader: bufio.NewReader(r),
	}
}

// Next lê o próximo quadro do stream. Retorna io.EOF quando o stream termina.
// Quadros com JSON malformado são descartados silenciosamente.
func (r *Reader) Next() (*Event, error) {
	for {
		line, err := r.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(line)) == 0 {
				return nil, io.EOF
			}
			if err != io.EOF {
				return nil, err
			}
		}

		line = bytes.TrimRight(line, "\r\n")

		// Linha em branco separa quadros
		if len(line) == 0 {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}

		if !bytes.HasPrefix(line, []byte(Prefix)) {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}

		data := line[len(Prefix):]

		var event Event
		if jsonErr := json.Unmarshal(data, &event); jsonErr != nil {
			// Quadro malformado: seguir para o próximo
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}

		return &event, nil
	}
}
