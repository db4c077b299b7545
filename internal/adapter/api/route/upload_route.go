package route

import (
	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/controller"
)

// RegisterUploadRoutes registra a rota de envio de arquivos
func RegisterUploadRoutes(r *gin.RouterGroup, uploadController *controller.UploadController) {
	upload := r.Group("/upload")
	{
		upload.POST("", uploadController.Upload)
	}
}
