package handlers

import (
	"errors"
	"net/http"

	"mail-service/internal/dto"
	"mail-service/internal/models"
	"mail-service/internal/repository"
	"mail-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	mail      *service.MailService
	templates repository.TemplateRepo
	log       *zap.Logger
}

func NewTemplateHandler(mail *service.MailService, templates repository.TemplateRepo, log *zap.Logger) *TemplateHandler {
	return &TemplateHandler{mail: mail, templates: templates, log: log}
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		h.log.Error("list templates failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	resp := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		resp = append(resp, templateToResponse(&templates[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid template id"))
		return
	}
	tmpl, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("template not found"))
			return
		}
		h.log.Error("get template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, templateToResponse(tmpl))
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	tmpl := &models.EmailTemplate{
		Name:        req.Name,
		Description: req.Description,
		Language:    req.Language,
		Subject:     req.Subject,
		Content:     req.Content,
		HTMLContent: req.HTMLContent,
	}
	if err := h.mail.CreateTemplate(c.Request.Context(), tmpl); err != nil {
		h.log.Error("create template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusCreated, templateToResponse(tmpl))
}

func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid template id"))
		return
	}

	var req dto.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	tmpl, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("template not found"))
			return
		}
		h.log.Error("get template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	tmpl.Name = req.Name
	tmpl.Description = req.Description
	tmpl.Language = req.Language
	tmpl.Subject = req.Subject
	tmpl.Content = req.Content
	tmpl.HTMLContent = req.HTMLContent

	if err := h.mail.UpdateTemplate(c.Request.Context(), tmpl); err != nil {
		h.log.Error("update template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, templateToResponse(tmpl))
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid template id"))
		return
	}
	ok, err := h.templates.Delete(c.Request.Context(), id)
	if err != nil {
		h.log.Error("delete template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("template not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

func templateToResponse(t *models.EmailTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		Language:    t.Language,
		Subject:     t.Subject,
		Content:     t.Content,
		HTMLContent: t.HTMLContent,
		CreatedAt:   t.CreatedAt,
	}
}
