// Package client consome a API do chat: envia mensagens, acompanha a resposta
// do assistente em streaming e mantém a lista local de mensagens com estado
// otimista reconciliado no quadro terminal.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hugohenrick/chat-assistente/pkg/stream"
)

// defaultSendTimeout limita o round trip inicial de envio da mensagem do
// usuário. A fase de streaming não tem limite próprio, apenas o contexto
const defaultSendTimeout = 30 * time.Second

// Client é o consumidor da API do chat. Não é seguro para uso concorrente:
// cada Client atende uma única requisição de envio por vez.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	sendTimeout time.Duration

	conversationID string
	entries        []Entry
	state          State
}

// New cria um novo cliente. baseURL aponta para a raiz da API,
// por exemplo "http://localhost:8080/api/v1".
func New(baseURL string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{},
		sendTimeout: defaultSendTimeout,
		state:       StateIdle,
	}
}

// State retorna o estado atual da máquina de consumo
func (c *Client) State() State {
	return c.state
}

// ConversationID retorna o ID da conversa atual (vazio antes do primeiro envio)
func (c *Client) ConversationID() string {
	return c.conversationID
}

// Entries retorna uma cópia da lista local de mensagens
func (c *Client) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

type sendRequest struct {
	Content        string `json:"content"`
	FileURL        string `json:"fileUrl,omitempty"`
	Role           string `json:"role"`
	ConversationID string `json:"conversationId,omitempty"`
	ReplyTo        string `json:"replyTo,omitempty"`
}

type sendResponse struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
}

type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// Send envia uma mensagem do usuário e consome a resposta do assistente em
// streaming. onDelta, quando não nulo, é chamado para cada fragmento recebido.
// O round trip inicial de gravação respeita o limite de 30 segundos; a fase
// de streaming é limitada apenas pelo contexto.
func (c *Client) Send(ctx context.Context, content, fileURL string, onDelta func(delta string)) error {
	// Nova requisição reinicia a máquina; estados terminais valem por requisição
	c.state = StateIdle

	saveCtx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	saved, err := c.saveUserMessage(saveCtx, content, fileURL)
	if err != nil {
		c.fail(-1, "Falha ao enviar mensagem: "+err.Error())
		return err
	}

	c.conversationID = saved.ConversationID
	c.entries = append(c.entries, Entry{
		ID:        saved.MessageID,
		Role:      "user",
		Content:   content,
		FileURL:   fileURL,
		CreatedAt: time.Now(),
	})

	// Placeholder otimista do assistente, logo após a mensagem do usuário
	c.state = StateStreaming
	placeholder := len(c.entries)
	c.entries = append(c.entries, Entry{
		Role:      "assistant",
		ReplyTo:   saved.MessageID,
		CreatedAt: time.Now(),
	})

	return c.consumeStream(ctx, content, fileURL, saved, placeholder, onDelta)
}

// saveUserMessage grava a mensagem do usuário (criando a conversa quando necessário)
func (c *Client) saveUserMessage(ctx context.Context, content, fileURL string) (*sendResponse, error) {
	body := sendRequest{
		Content:        content,
		FileURL:        fileURL,
		Role:           "user",
		ConversationID: c.conversationID,
	}

	var out sendResponse
	if err := c.postJSON(ctx, "/memory", body, &out); err != nil {
		return nil, err
	}

	if out.MessageID == "" {
		return nil, fmt.Errorf("resposta sem messageId")
	}

	return &out, nil
}

// consumeStream lê os quadros da resposta em streaming e atualiza o placeholder
func (c *Client) consumeStream(ctx context.Context, content, fileURL string, saved *sendResponse, placeholder int, onDelta func(delta string)) error {
	body := sendRequest{
		Content:        content,
		FileURL:        fileURL,
		Role:           "user",
		ConversationID: saved.ConversationID,
		ReplyTo:        saved.MessageID,
	}

	data, err := json.Marshal(body)
	if err != nil {
		c.fail(placeholder, "Falha ao preparar requisição: "+err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/memory?stream=1", bytes.NewReader(data))
	if err != nil {
		c.fail(placeholder, "Falha ao preparar requisição: "+err.Error())
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.fail(placeholder, "Falha de transporte: "+err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := c.decodeError(resp)
		c.fail(placeholder, "Falha ao gerar resposta: "+err.Error())
		return err
	}

	return c.readFrames(resp.Body, placeholder, onDelta)
}

// readFrames percorre os quadros até o quadro terminal ou o fim do stream
func (c *Client) readFrames(body io.Reader, placeholder int, onDelta func(delta string)) error {
	reader := stream.NewReader(body)

	var acc strings.Builder
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			failErr := fmt.Errorf("erro ao ler stream: %w", err)
			c.fail(placeholder, "Falha de transporte: "+err.Error())
			return failErr
		}

		switch {
		case event.IsError():
			failErr := fmt.Errorf("%s: %s", event.Error, event.Details)
			c.fail(placeholder, "Falha ao gerar resposta: "+failErr.Error())
			return failErr

		case event.IsDelta():
			// Crescimento monotônico: o conteúdo exibido nunca encolhe
			acc.WriteString(event.Delta)
			c.entries[placeholder].Content = acc.String()
			if onDelta != nil {
				onDelta(event.Delta)
			}

		case event.IsDone():
			// Reconciliação: o placeholder adota a identidade persistida
			c.entries[placeholder].ID = event.MessageID
			if event.FileURL != nil {
				c.entries[placeholder].FileURL = *event.FileURL
			}
			c.state = StateFinalized
			return nil
		}
	}

	if acc.Len() == 0 {
		err := fmt.Errorf("nenhuma resposta recebida")
		c.fail(placeholder, "Nenhuma resposta recebida do assistente")
		return err
	}

	// Stream terminou sem quadro terminal, mas com conteúdo: mantém o texto
	// acumulado sem identidade persistida
	c.state = StateFinalized
	return nil
}

// fail descarta o placeholder (quando existe) e registra a falha como uma
// entrada de sistema visível na conversa. Nenhuma falha é silenciosa.
func (c *Client) fail(placeholder int, msg string) {
	if placeholder >= 0 && placeholder < len(c.entries) {
		c.entries = append(c.entries[:placeholder], c.entries[placeholder+1:]...)
	}
	c.entries = append(c.entries, Entry{
		Role:      "system",
		Content:   msg,
		CreatedAt: time.Now(),
	})
	c.state = StateFailed
}

// LoadMessages carrega as mensagens de uma conversa existente para a lista local
func (c *Client) LoadMessages(ctx context.Context, conversationID string) error {
	var out struct {
		Messages []struct {
			ID        string    `json:"id"`
			Role      string    `json:"role"`
			Content   string    `json:"content"`
			FileURL   *string   `json:"fileUrl"`
			ReplyTo   *string   `json:"replyTo"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"messages"`
	}

	if err := c.getJSON(ctx, "/memory?conversationId="+url.QueryEscape(conversationID), &out); err != nil {
		return err
	}

	entries := make([]Entry, 0, len(out.Messages))
	for _, m := range out.Messages {
		e := Entry{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.FileURL != nil {
			e.FileURL = *m.FileURL
		}
		if m.ReplyTo != nil {
			e.ReplyTo = *m.ReplyTo
		}
		entries = append(entries, e)
	}

	c.conversationID = conversationID
	c.entries = entries
	c.state = StateIdle
	return nil
}

// Conversations lista as conversas existentes, das mais recentes para as mais antigas
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var out struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.getJSON(ctx, "/memory?all=1", &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// DeleteConversation remove uma conversa e todas as suas mensagens
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/memory?conversationId="+url.QueryEscape(conversationID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	if c.conversationID == conversationID {
		c.conversationID = ""
		c.entries = nil
		c.state = StateIdle
	}

	return nil
}

// Upload envia um arquivo e retorna a URL pública do objeto armazenado
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.decodeError(resp)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	return out.URL, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError converte um corpo de erro da API em um error legível
func (c *Client) decodeError(resp *http.Response) error {
	var apiErr errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		if apiErr.Details != "" {
			return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Details)
		}
		return fmt.Errorf("%s", apiErr.Message)
	}
	return fmt.Errorf("erro HTTP %d", resp.StatusCode)
}
