package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mail-service/internal/dto"
	"mail-service/internal/models"
	"mail-service/internal/repository"
	"mail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MailHandler struct {
	mail   *service.MailService
	emails repository.EmailRepo
	log    *zap.Logger
}

func NewMailHandler(mail *service.MailService, emails repository.EmailRepo, log *zap.Logger) *MailHandler {
	return &MailHandler{mail: mail, emails: emails, log: log}
}

// Queue ставит письмо в очередь (или отправляет сразу при priority=now).
func (h *MailHandler) Queue(c *gin.Context) {
	var req dto.QueueEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid queue request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	attachmentIDs := make([]uuid.UUID, 0, len(req.Attachments))
	for _, raw := range req.Attachments {
		attID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid attachment id: "+raw))
			return
		}
		attachmentIDs = append(attachmentIDs, attID)
	}

	email, err := h.mail.Queue(c.Request.Context(), service.SendRequest{
		From:         req.From,
		To:           req.To,
		Cc:           req.Cc,
		Bcc:          req.Bcc,
		Subject:      req.Subject,
		Message:      req.Message,
		HTMLMessage:  req.HTMLMessage,
		TemplateName: req.Template,
		Language:     req.Language,
		Context:      req.Context,
		Priority:     models.Priority(req.Priority),
		ScheduledAt:  req.ScheduledAt,
		ExpiresAt:     req.ExpiresAt,
		BackendAlias:  req.Backend,
		AttachmentIDs: attachmentIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAddress), errors.Is(err, service.ErrNoRecipients):
			c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error()))
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("template not found"))
		default:
			// Письмо с priority=now могло сохраниться, но не доставиться —
			// оно останется в истории со статусом failed/requeued.
			h.log.Error("queue email failed", zap.Error(err))
			if email != nil {
				c.JSON(http.StatusAccepted, emailToResponse(email))
				return
			}
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}
	c.JSON(http.StatusCreated, emailToResponse(email))
}

// List возвращает письма с фильтром по статусу.
func (h *MailHandler) List(c *gin.Context) {
	filter := repository.EmailFilter{
		To:     c.Query("to"),
		Limit:  atoiDefault(c.Query("limit"), 50),
		Offset: atoiDefault(c.Query("offset"), 0),
	}
	if s := c.Query("status"); s != "" {
		status := models.Status(s)
		filter.Status = &status
	}

	emails, err := h.emails.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list emails failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	resp := make([]dto.EmailResponse, 0, len(emails))
	for i := range emails {
		resp = append(resp, emailToResponse(&emails[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Get возвращает одно письмо по идентификатору.
func (h *MailHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid email id"))
		return
	}

	email, err := h.emails.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("email not found"))
			return
		}
		h.log.Error("get email failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, emailToResponse(email))
}

// Requeue возвращает выбранные письма в очередь.
func (h *MailHandler) Requeue(c *gin.Context) {
	var req dto.RequeueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid email id: "+raw))
			return
		}
		ids = append(ids, id)
	}

	n, err := h.mail.Requeue(c.Request.Context(), ids)
	if err != nil {
		h.log.Error("requeue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.RequeueResponse{Requeued: n})
}

func emailToResponse(e *models.Email) dto.EmailResponse {
	resp := dto.EmailResponse{
		ID:          e.ID.String(),
		From:        e.FromEmail,
		To:          e.To,
		Cc:          e.Cc,
		Bcc:         e.Bcc,
		Subject:     e.Subject,
		Status:      string(e.Status),
		Priority:    string(e.Priority),
		Retries:     e.NumberOfRetries,
		ScheduledAt: e.ScheduledAt,
		CreatedAt:   e.CreatedAt,
		LastUpdated: e.LastUpdated,
	}
	if e.Template != nil {
		resp.Template = e.Template.Name
	}
	for _, a := range e.Attachments {
		resp.Attachments = append(resp.Attachments, a.Name)
	}
	return resp
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
