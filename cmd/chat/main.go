package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/hugohenrick/chat-assistente/pkg/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080/api/v1", "URL base da API do chat")
	conversationID := flag.String("conversa", "", "ID de uma conversa existente para continuar")
	flag.Parse()

	c := client.New(*server)

	// Encerramento com Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nEncerrando...")
		cancel()
	}()

	if *conversationID != "" {
		if err := c.LoadMessages(ctx, *conversationID); err != nil {
			fmt.Fprintf(os.Stderr, "erro ao carregar conversa: %v\n", err)
			os.Exit(1)
		}
		for _, e := range c.Entries() {
			printEntry(e)
		}
	}

	fmt.Println("Chat Assistente (Ctrl-C para sair; /conversas lista, /arquivo <caminho> anexa)")

	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	var fileURL string
	for {
		fmt.Print("Você: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return
		case line, ok = <-inputCh:
			if !ok {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" && fileURL == "" {
			continue
		}

		if line == "/conversas" {
			listConversations(ctx, c)
			continue
		}

		if path, found := strings.CutPrefix(line, "/arquivo "); found {
			fileURL = uploadFile(ctx, c, strings.TrimSpace(path))
			continue
		}

		fmt.Print("Assistente: ")
		err := c.Send(ctx, line, fileURL, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		fileURL = ""

		if err != nil {
			// A falha já está registrada como entrada de sistema na lista local
			entries := c.Entries()
			if len(entries) > 0 {
				fmt.Fprintf(os.Stderr, "%s\n", entries[len(entries)-1].Content)
			}
		}
	}
}

// listConversations imprime as conversas existentes no servidor
func listConversations(ctx context.Context, c *client.Client) {
	conversations, err := c.Conversations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao listar conversas: %v\n", err)
		return
	}
	if len(conversations) == 0 {
		fmt.Println("nenhuma conversa")
		return
	}
	for _, convo := range conversations {
		fmt.Printf("%s  %s\n", convo.ID, convo.Title)
	}
}

// uploadFile envia um arquivo local e retorna a URL para anexar na próxima mensagem
func uploadFile(ctx context.Context, c *client.Client, path string) string {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao abrir arquivo: %v\n", err)
		return ""
	}
	defer f.Close()

	url, err := c.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro ao enviar arquivo: %v\n", err)
		return ""
	}

	fmt.Printf("arquivo anexado: %s\n", url)
	return url
}

func printEntry(e client.Entry) {
	switch e.Role {
	case "user":
		fmt.Printf("Você: %s\n", e.Content)
	case "assistant":
		fmt.Printf("Assistente: %s\n", e.Content)
	default:
		fmt.Printf("[%s] %s\n", e.Role, e.Content)
	}
}
