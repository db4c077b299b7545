package dto

// UploadResponse representa a resposta do envio de arquivo
type UploadResponse struct {
	URL string `json:"url"`
}
