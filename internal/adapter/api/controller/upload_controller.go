package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/chat-assistente/internal/adapter/api/dto"
	"github.com/hugohenrick/chat-assistente/internal/infrastructure/storage"
	"github.com/hugohenrick/chat-assistente/pkg/logger"
)

// maxUploadSize limita o tamanho do arquivo enviado (10 MiB)
const maxUploadSize = 10 << 20

// UploadController gerencia o envio de arquivos para o provedor de armazenamento
type UploadController struct {
	uploader storage.Uploader
	logger   logger.Logger
}

// NewUploadController cria uma nova instância de UploadController
func NewUploadController(uploader storage.Uploader, log logger.Logger) *UploadController {
	return &UploadController{
		uploader: uploader,
		logger:   log,
	}
}

// Upload recebe um arquivo multipart e o repassa ao provedor de armazenamento
// @Summary Enviar arquivo
// @Description Envia um arquivo para o provedor de armazenamento e retorna a URL pública
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Arquivo a ser enviado"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "arquivo é obrigatório", err.Error()))
		return
	}

	if fileHeader.Size > maxUploadSize {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "arquivo excede o tamanho máximo de 10MB", ""))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "erro ao ler arquivo", err.Error()))
		return
	}
	defer file.Close()

	url, err := c.uploader.Upload(ctx.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		c.logger.Error("erro ao enviar arquivo", "filename", fileHeader.Filename, "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao enviar arquivo", err.Error()))
		return
	}

	c.logger.Info("arquivo enviado", "filename", fileHeader.Filename, "url", url)
	ctx.JSON(http.StatusOK, dto.UploadResponse{URL: url})
}
