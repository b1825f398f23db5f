package service

import (
	"context"
	"errors"
	"time"

	"mail-service/internal/models"
	"mail-service/internal/sender"
	"mail-service/internal/template"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MailService struct {
	emails      EmailRepo
	templates   TemplateRepo
	logs        LogRepo
	attachments AttachmentRepo
	senders     SenderRegistry

	engines         []template.Engine
	preferredEngine string

	cache  TemplateCache // может быть nil
	events EventBus      // может быть nil

	defaultFrom   string
	maxRetries    int
	retryInterval time.Duration
	cacheTTL      time.Duration

	now func() time.Time
	log *zap.Logger
}

type SendRequest struct {
	From         string
	To           []string
	Cc           []string
	Bcc          []string
	Subject      string
	Message      string
	HTMLMessage  string
	TemplateName string
	Language     string
	Context      map[string]any
	Headers      map[string]any
	Priority     models.Priority
	ScheduledAt  *time.Time
	ExpiresAt    *time.Time
	BackendAlias string
	// Идентификаторы заранее созданных вложений (см. CreateAttachment).
	AttachmentIDs []uuid.UUID
}

func NewMailService(
	emails EmailRepo,
	templates TemplateRepo,
	logs LogRepo,
	attachments AttachmentRepo,
	senders SenderRegistry,
	engines []template.Engine,
	preferredEngine string,
	cache TemplateCache,
	events EventBus,
	defaultFrom string,
	maxRetries int,
	retryInterval time.Duration,
	cacheTTL time.Duration,
	log *zap.Logger,
) *MailService {
	return &MailService{
		emails:      emails,
		templates:   templates,
		logs:        logs,
		attachments: attachments,
		senders:     senders,

		engines:         engines,
		preferredEngine: preferredEngine,

		cache:  cache,
		events: events,

		defaultFrom:   defaultFrom,
		maxRetries:    maxRetries,
		retryInterval: retryInterval,
		cacheTTL:      cacheTTL,

		now: time.Now,
		log: log,
	}
}

// Queue ставит письмо в очередь. Приоритет "now" отправляется сразу.
func (s *MailService) Queue(ctx context.Context, req SendRequest) (*models.Email, error) {
	email, err := s.buildEmail(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.emails.Create(ctx, email); err != nil {
		return nil, err
	}
	if err := s.attach(ctx, email, req.AttachmentIDs); err != nil {
		return nil, err
	}

	if email.Priority == models.PriorityNow {
		if err := s.Deliver(ctx, email); err != nil {
			return email, err
		}
	}
	return email, nil
}

// attach связывает письмо с заранее созданными вложениями
// и подгружает их для немедленной доставки.
func (s *MailService) attach(ctx context.Context, email *models.Email, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	for _, attID := range ids {
		if err := s.attachments.AttachToEmail(ctx, attID, email.ID); err != nil {
			return err
		}
	}
	atts, err := s.attachments.ListByEmail(ctx, email.ID)
	if err != nil {
		return err
	}
	email.Attachments = atts
	return nil
}

// CreateAttachment сохраняет метаданные вложения; письму оно
// привязывается идентификатором в SendRequest.AttachmentIDs.
func (s *MailService) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	return s.attachments.Create(ctx, a)
}

// EmailAttachments возвращает вложения письма.
func (s *MailService) EmailAttachments(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error) {
	return s.attachments.ListByEmail(ctx, emailID)
}

// Send — синоним Queue с приоритетом "now": сохранить и доставить сразу.
func (s *MailService) Send(ctx context.Context, req SendRequest) (*models.Email, error) {
	req.Priority = models.PriorityNow
	return s.Queue(ctx, req)
}

// SendMany ставит пакет писем в очередь одним запросом.
// Приоритет "now" в пакетной постановке не поддерживается.
func (s *MailService) SendMany(ctx context.Context, reqs []SendRequest) ([]*models.Email, error) {
	emails := make([]*models.Email, 0, len(reqs))
	for _, req := range reqs {
		if req.Priority == models.PriorityNow {
			req.Priority = models.PriorityHigh
		}
		email, err := s.buildEmail(ctx, req)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	if err := s.emails.CreateBatch(ctx, emails); err != nil {
		return nil, err
	}
	for i, req := range reqs {
		if err := s.attach(ctx, emails[i], req.AttachmentIDs); err != nil {
			return nil, err
		}
	}
	return emails, nil
}

// Requeue возвращает письма в очередь (административное действие).
func (s *MailService) Requeue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.emails.Requeue(ctx, ids)
}

// Deliver рендерит и отправляет письмо, фиксируя попытку в логе.
// При ошибке письмо либо возвращается в очередь с задержкой,
// либо помечается failed после исчерпания попыток.
func (s *MailService) Deliver(ctx context.Context, email *models.Email) error {
	if email.ExpiresAt != nil && !email.ExpiresAt.After(s.now()) {
		return s.fail(ctx, email, ErrEmailExpired, false)
	}

	if err := s.renderEmail(ctx, email); err != nil {
		// Ошибки шаблона не лечатся повтором.
		return s.fail(ctx, email, err, false)
	}

	backend, err := s.senders.Get(email.BackendAlias)
	if err != nil {
		return s.fail(ctx, email, err, false)
	}

	if err := backend.Send(ctx, email); err != nil {
		return s.fail(ctx, email, err, true)
	}

	if err := s.emails.MarkSent(ctx, email.ID); err != nil {
		return err
	}
	email.Status = models.StatusSent
	s.logAttempt(ctx, email, models.StatusSent, "", "")

	s.publishSent(ctx, email)
	s.log.Info("email sent",
		zap.String("id", email.ID.String()),
		zap.String("to", email.To.String()),
		zap.String("subject", email.Subject),
	)
	return nil
}

// fail обрабатывает неудачную попытку: ретрай с экспоненциальной
// задержкой или окончательный failed.
func (s *MailService) fail(ctx context.Context, email *models.Email, cause error, retryable bool) error {
	s.logAttempt(ctx, email, models.StatusFailed, exceptionType(cause), cause.Error())

	if retryable && email.NumberOfRetries < s.maxRetries {
		retries := email.NumberOfRetries + 1
		delay := s.retryInterval * time.Duration(1<<uint(email.NumberOfRetries))
		nextAttempt := s.now().Add(delay)
		if err := s.emails.MarkQueuedForRetry(ctx, email.ID, retries, nextAttempt); err != nil {
			s.log.Error("failed to requeue email", zap.Error(err))
		}
		email.NumberOfRetries = retries
		email.Status = models.StatusRequeued
		s.log.Warn("email delivery failed, requeued",
			zap.String("id", email.ID.String()),
			zap.Int("retries", retries),
			zap.Time("next_attempt", nextAttempt),
			zap.Error(cause),
		)
		return cause
	}

	if err := s.emails.MarkFailed(ctx, email.ID); err != nil {
		s.log.Error("failed to mark email as failed", zap.Error(err))
	}
	email.Status = models.StatusFailed
	s.publishFailed(ctx, email, cause)
	s.log.Error("email delivery failed",
		zap.String("id", email.ID.String()),
		zap.String("to", email.To.String()),
		zap.Error(cause),
	)
	return cause
}

func (s *MailService) logAttempt(ctx context.Context, email *models.Email, status models.Status, excType, message string) {
	l := &models.Log{
		EmailID:       email.ID,
		Status:        status,
		ExceptionType: excType,
		Message:       message,
		Date:          s.now(),
	}
	if err := s.logs.Create(ctx, l); err != nil {
		s.log.Error("failed to write delivery log", zap.Error(err))
	}
}

func (s *MailService) publishSent(ctx context.Context, email *models.Email) {
	if s.events == nil {
		return
	}
	event := EmailSentEvent{
		EmailID: email.ID,
		To:      email.To,
		Subject: email.Subject,
		SentAt:  s.now(),
	}
	if email.Template != nil {
		event.Template = email.Template.Name
	}
	if err := s.events.PublishEmailSent(ctx, email.ID.String(), event); err != nil {
		s.log.Error("failed to publish email sent event", zap.Error(err))
	}
}

func (s *MailService) publishFailed(ctx context.Context, email *models.Email, cause error) {
	if s.events == nil {
		return
	}
	event := EmailFailedEvent{
		EmailID:  email.ID,
		To:       email.To,
		Reason:   cause.Error(),
		Retries:  email.NumberOfRetries,
		FailedAt: s.now(),
	}
	if err := s.events.PublishEmailFailed(ctx, email.ID.String(), event); err != nil {
		s.log.Error("failed to publish email failed event", zap.Error(err))
	}
}

// buildEmail валидирует запрос и собирает модель письма.
func (s *MailService) buildEmail(ctx context.Context, req SendRequest) (*models.Email, error) {
	if len(req.To) == 0 {
		return nil, ErrNoRecipients
	}
	for _, list := range [][]string{req.To, req.Cc, req.Bcc} {
		if err := models.ValidateAddressList(list); err != nil {
			return nil, errors.Join(ErrInvalidAddress, err)
		}
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	from := req.From
	if from == "" {
		from = s.defaultFrom
	}

	email := &models.Email{
		FromEmail:    from,
		To:           models.EmailAddresses(req.To),
		Cc:           models.EmailAddresses(req.Cc),
		Bcc:          models.EmailAddresses(req.Bcc),
		Subject:      req.Subject,
		Message:      req.Message,
		HTMLMessage:  req.HTMLMessage,
		Status:       models.StatusQueued,
		Priority:     priority,
		ScheduledAt:  req.ScheduledAt,
		ExpiresAt:    req.ExpiresAt,
		Context:      models.JSONMap(req.Context),
		Headers:      models.JSONMap(req.Headers),
		BackendAlias: req.BackendAlias,
	}

	if req.TemplateName != "" {
		tmpl, err := s.loadTemplate(ctx, req.TemplateName, req.Language)
		if err != nil {
			return nil, err
		}
		email.TemplateID = &tmpl.ID
		email.Template = tmpl
	}
	return email, nil
}

func exceptionType(err error) string {
	var rerr *template.RenderError
	switch {
	case errors.As(err, &rerr):
		return "RenderError"
	case errors.Is(err, template.ErrEngineNotFound), errors.Is(err, template.ErrNoEngines):
		return "EngineNotFound"
	case errors.Is(err, sender.ErrBackendNotFound):
		return "BackendNotFound"
	case errors.Is(err, ErrEmailExpired):
		return "EmailExpired"
	default:
		return "DeliveryError"
	}
}
