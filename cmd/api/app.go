package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hugohenrick/chat-assistente/docs"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/controller"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/route"
	"github.com/hugohenrick/chat-assistente/internal/adapter/repository"
	"github.com/hugohenrick/chat-assistente/internal/infrastructure/database"
	"github.com/hugohenrick/chat-assistente/internal/infrastructure/storage"
	"github.com/hugohenrick/chat-assistente/pkg/completion"
	"github.com/hugohenrick/chat-assistente/pkg/logger"
)

// App representa a aplicação e suas dependências
type App struct {
	router           *gin.Engine
	db               *database.PostgresDB
	chatController   *controller.ChatController
	uploadController *controller.UploadController
	logger           logger.Logger
}

// NewApp cria uma nova instância do aplicativo
func NewApp() (*App, error) {
	log := logger.NewLogger()

	// Configurar banco de dados
	db, err := database.NewPostgresDB()
	if err != nil {
		return nil, err
	}

	// Criar repositórios
	conversationRepo := repository.NewPostgresConversationRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)

	// Criar cliente do serviço de geração de texto
	completer, err := completion.NewClient(log)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Criar uploader de arquivos
	uploader, err := storage.NewCloudinaryUploader()
	if err != nil {
		db.Close()
		return nil, err
	}

	// Criar controllers
	chatController := controller.NewChatController(conversationRepo, messageRepo, completer, log)
	uploadController := controller.NewUploadController(uploader, log)

	// Configurar router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	return &App{
		router:           router,
		db:               db,
		chatController:   chatController,
		uploadController: uploadController,
		logger:           log,
	}, nil
}

// SetupRoutes configura as rotas da aplicação
func (a *App) SetupRoutes(basePath string) {
	api := a.router.Group(basePath)

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	route.RegisterChatRoutes(api, a.chatController)
	route.RegisterUploadRoutes(api, a.uploadController)

	// Documentação da API
	a.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start inicia o servidor HTTP
func (a *App) Start() error {
	a.SetupRoutes("/api/v1")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	a.logger.Info("servidor iniciado", "port", port)
	return a.router.Run(":" + port)
}

// Close libera os recursos da aplicação
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
