package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/controller"
)

// RegisterChatRoutes registra as rotas de conversas e mensagens
func RegisterChatRoutes(r *gin.RouterGroup, chatController *controller.ChatController) {
	memory := r.Group("/memory")
	{
		memory.POST("", chatController.Post)
		memory.GET("", chatController.Get)
		memory.DELETE("", chatController.Delete)
	}

	chat := r.Group("/chat")
	{
		chat.POST("", chatController.Chat)
	}
}
