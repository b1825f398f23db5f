package service

import (
	"context"
	"encoding/json"

	"mail-service/internal/models"
	"mail-service/internal/template"

	"go.uber.org/zap"
)

// renderEmail подставляет контекст в шаблон письма. Письма без шаблона
// отправляются как есть. Ошибка выбора движка и ошибка рендеринга
// различимы для вызывающего (ErrEngineNotFound vs RenderError).
func (s *MailService) renderEmail(ctx context.Context, email *models.Email) error {
	tmpl := email.Template
	if tmpl == nil {
		if email.TemplateID == nil {
			return nil
		}
		loaded, err := s.templates.GetByID(ctx, *email.TemplateID)
		if err != nil {
			return err
		}
		tmpl = loaded
		email.Template = loaded
	}

	engine, err := template.Select(s.engines, s.preferredEngine)
	if err != nil {
		return err
	}

	tmplCtx := map[string]any(email.Context)

	subject, err := engine.Render(tmpl.Subject, tmplCtx)
	if err != nil {
		return err
	}
	content, err := engine.Render(tmpl.Content, tmplCtx)
	if err != nil {
		return err
	}
	email.Subject = subject
	email.Message = content

	if tmpl.HTMLContent != "" {
		html, err := engine.RenderHTML(tmpl.HTMLContent, tmplCtx)
		if err != nil {
			return err
		}
		email.HTMLMessage = html
	}
	return nil
}

// loadTemplate достаёт шаблон по имени и языку, по возможности из кэша.
func (s *MailService) loadTemplate(ctx context.Context, name, language string) (*models.EmailTemplate, error) {
	if s.cache != nil {
		if data, err := s.cache.GetTemplate(ctx, name, language); err == nil && len(data) > 0 {
			var tmpl models.EmailTemplate
			if err := json.Unmarshal(data, &tmpl); err == nil {
				return &tmpl, nil
			}
			// Битая запись в кэше — сбрасываем и идём в БД.
			_ = s.cache.InvalidateTemplate(ctx, name, language)
		}
	}

	tmpl, err := s.templates.GetByName(ctx, name, language)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(tmpl); err == nil {
			if err := s.cache.SetTemplate(ctx, name, language, data, s.cacheTTL); err != nil {
				s.log.Warn("failed to cache template", zap.String("name", name), zap.Error(err))
			}
		}
	}
	return tmpl, nil
}

// CreateTemplate сохраняет шаблон и сбрасывает кэш.
func (s *MailService) CreateTemplate(ctx context.Context, t *models.EmailTemplate) error {
	if err := s.templates.Create(ctx, t); err != nil {
		return err
	}
	s.invalidateTemplate(ctx, t)
	return nil
}

// UpdateTemplate обновляет шаблон и сбрасывает кэш.
func (s *MailService) UpdateTemplate(ctx context.Context, t *models.EmailTemplate) error {
	if err := s.templates.Update(ctx, t); err != nil {
		return err
	}
	s.invalidateTemplate(ctx, t)
	return nil
}

func (s *MailService) invalidateTemplate(ctx context.Context, t *models.EmailTemplate) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTemplate(ctx, t.Name, t.Language); err != nil {
		s.log.Warn("failed to invalidate template cache", zap.String("name", t.Name), zap.Error(err))
	}
}
