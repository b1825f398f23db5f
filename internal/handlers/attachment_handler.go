package handlers

import (
	"net/http"

	"mail-service/internal/dto"
	"mail-service/internal/models"
	"mail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AttachmentHandler struct {
	mail *service.MailService
	log  *zap.Logger
}

func NewAttachmentHandler(mail *service.MailService, log *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{mail: mail, log: log}
}

// Create сохраняет метаданные вложения. Возвращённый идентификатор
// передаётся в поле attachments при постановке письма в очередь.
func (h *AttachmentHandler) Create(c *gin.Context) {
	var req dto.AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	att := &models.Attachment{
		Name:     req.Name,
		MimeType: req.MimeType,
		File:     req.File,
	}
	if err := h.mail.CreateAttachment(c.Request.Context(), att); err != nil {
		h.log.Error("create attachment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusCreated, attachmentToResponse(att))
}

// ListByEmail возвращает вложения письма.
func (h *AttachmentHandler) ListByEmail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid email id"))
		return
	}

	attachments, err := h.mail.EmailAttachments(c.Request.Context(), id)
	if err != nil {
		h.log.Error("list attachments failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	resp := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		resp = append(resp, attachmentToResponse(&attachments[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func attachmentToResponse(a *models.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:        a.ID.String(),
		Name:      a.Name,
		MimeType:  a.MimeType,
		File:      a.File,
		CreatedAt: a.CreatedAt,
	}
}
