package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mail-service/config"
	"mail-service/internal/models"
	"mail-service/internal/repository"
	"mail-service/internal/sender"
	"mail-service/internal/service"
	"mail-service/internal/template"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockEmailRepo struct {
	CreateFunc             func(ctx context.Context, e *models.Email) error
	CreateBatchFunc        func(ctx context.Context, emails []*models.Email) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.Email, error)
	ListFunc               func(ctx context.Context, f repository.EmailFilter) ([]models.Email, error)
	DequeueDueFunc         func(ctx context.Context, now time.Time, limit int) ([]models.Email, error)
	MarkSentFunc           func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc         func(ctx context.Context, id uuid.UUID) error
	MarkQueuedForRetryFunc func(ctx context.Context, id uuid.UUID, retries int, nextAttempt time.Time) error
	RequeueFunc            func(ctx context.Context, ids []uuid.UUID) (int64, error)
}

func (m *mockEmailRepo) Create(ctx context.Context, e *models.Email) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	return nil
}
func (m *mockEmailRepo) CreateBatch(ctx context.Context, emails []*models.Email) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, emails)
	}
	return nil
}
func (m *mockEmailRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Email, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockEmailRepo) List(ctx context.Context, f repository.EmailFilter) ([]models.Email, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f)
	}
	return nil, nil
}
func (m *mockEmailRepo) DequeueDue(ctx context.Context, now time.Time, limit int) ([]models.Email, error) {
	if m.DequeueDueFunc != nil {
		return m.DequeueDueFunc(ctx, now, limit)
	}
	return nil, nil
}
func (m *mockEmailRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id)
	}
	return nil
}
func (m *mockEmailRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	return nil
}
func (m *mockEmailRepo) MarkQueuedForRetry(ctx context.Context, id uuid.UUID, retries int, nextAttempt time.Time) error {
	if m.MarkQueuedForRetryFunc != nil {
		return m.MarkQueuedForRetryFunc(ctx, id, retries, nextAttempt)
	}
	return nil
}
func (m *mockEmailRepo) Requeue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if m.RequeueFunc != nil {
		return m.RequeueFunc(ctx, ids)
	}
	return int64(len(ids)), nil
}

type mockTemplateRepo struct {
	CreateFunc    func(ctx context.Context, t *models.EmailTemplate) error
	UpdateFunc    func(ctx context.Context, t *models.EmailTemplate) error
	DeleteFunc    func(ctx context.Context, id uuid.UUID) (bool, error)
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error)
	GetByNameFunc func(ctx context.Context, name, language string) (*models.EmailTemplate, error)
	ListFunc      func(ctx context.Context) ([]models.EmailTemplate, error)
}

func (m *mockTemplateRepo) Create(ctx context.Context, t *models.EmailTemplate) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}
func (m *mockTemplateRepo) Update(ctx context.Context, t *models.EmailTemplate) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	return nil
}
func (m *mockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return true, nil
}
func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockTemplateRepo) GetByName(ctx context.Context, name, language string) (*models.EmailTemplate, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name, language)
	}
	return nil, repository.ErrNotFound
}
func (m *mockTemplateRepo) List(ctx context.Context) ([]models.EmailTemplate, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

type mockAttachmentRepo struct {
	CreateFunc        func(ctx context.Context, a *models.Attachment) error
	AttachToEmailFunc func(ctx context.Context, attachmentID, emailID uuid.UUID) error
	ListByEmailFunc   func(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error)
}

func (m *mockAttachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return nil
}
func (m *mockAttachmentRepo) AttachToEmail(ctx context.Context, attachmentID, emailID uuid.UUID) error {
	if m.AttachToEmailFunc != nil {
		return m.AttachToEmailFunc(ctx, attachmentID, emailID)
	}
	return nil
}
func (m *mockAttachmentRepo) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error) {
	if m.ListByEmailFunc != nil {
		return m.ListByEmailFunc(ctx, emailID)
	}
	return nil, nil
}

type mockLogRepo struct {
	mu      sync.Mutex
	entries []models.Log
}

func (m *mockLogRepo) Create(ctx context.Context, l *models.Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *l)
	return nil
}
func (m *mockLogRepo) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Log{}
	for _, l := range m.entries {
		if l.EmailID == emailID {
			out = append(out, l)
		}
	}
	return out, nil
}

// mapCache — кэш шаблонов в памяти для проверки чтения/инвалидации.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) GetTemplate(_ context.Context, name, language string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[name+":"+language]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return data, nil
}
func (c *mapCache) SetTemplate(_ context.Context, name, language string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[name+":"+language] = data
	return nil
}
func (c *mapCache) InvalidateTemplate(_ context.Context, name, language string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, name+":"+language)
	return nil
}

type svcDeps struct {
	emails      *mockEmailRepo
	templates   *mockTemplateRepo
	logs        *mockLogRepo
	attachments *mockAttachmentRepo
	dummy       *sender.DummySender
	cache       service.TemplateCache
}

func newTestService(t *testing.T, deps svcDeps) *service.MailService {
	t.Helper()

	if deps.emails == nil {
		deps.emails = &mockEmailRepo{}
	}
	if deps.templates == nil {
		deps.templates = &mockTemplateRepo{}
	}
	if deps.logs == nil {
		deps.logs = &mockLogRepo{}
	}
	if deps.attachments == nil {
		deps.attachments = &mockAttachmentRepo{}
	}
	if deps.dummy == nil {
		deps.dummy = sender.NewDummySender()
	}

	registry := sender.NewRegistry()
	registry.Register(sender.DefaultAlias, deps.dummy)

	engines, err := template.Build([]config.TemplateEngine{{Name: "go", Backend: "go"}})
	if err != nil {
		t.Fatalf("failed to build engines: %v", err)
	}

	return service.NewMailService(
		deps.emails, deps.templates, deps.logs, deps.attachments,
		registry, engines, "",
		deps.cache, nil,
		"noreply@example.com",
		2, 15*time.Minute, time.Minute,
		zap.NewNop(),
	)
}

func TestQueueDefaultsToMediumPriority(t *testing.T) {
	var created *models.Email
	emails := &mockEmailRepo{
		CreateFunc: func(_ context.Context, e *models.Email) error {
			created = e
			return nil
		},
	}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{emails: emails, dummy: dummy})

	email, err := svc.Queue(context.Background(), service.SendRequest{
		To:      []string{"user@example.com"},
		Subject: "hello",
		Message: "body",
	})
	if err != nil {
		t.Fatalf("Queue failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected email to be persisted")
	}
	if email.Status != models.StatusQueued {
		t.Errorf("expected status queued, got %s", email.Status)
	}
	if email.Priority != models.PriorityMedium {
		t.Errorf("expected priority medium, got %s", email.Priority)
	}
	if email.FromEmail != "noreply@example.com" {
		t.Errorf("expected default sender, got %s", email.FromEmail)
	}
	if dummy.SentCount() != 0 {
		t.Errorf("queued email must not be sent immediately, sent %d", dummy.SentCount())
	}
}

func TestSendDeliversImmediately(t *testing.T) {
	var markedSent bool
	emails := &mockEmailRepo{
		MarkSentFunc: func(_ context.Context, _ uuid.UUID) error {
			markedSent = true
			return nil
		},
	}
	logs := &mockLogRepo{}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{emails: emails, logs: logs, dummy: dummy})

	email, err := svc.Send(context.Background(), service.SendRequest{
		To:      []string{"user@example.com"},
		Subject: "hello",
		Message: "body",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if email.Priority != models.PriorityNow {
		t.Errorf("expected priority now, got %s", email.Priority)
	}
	if email.Status != models.StatusSent {
		t.Errorf("expected status sent, got %s", email.Status)
	}
	if !markedSent {
		t.Error("expected MarkSent to be called")
	}
	if dummy.SentCount() != 1 {
		t.Errorf("expected 1 delivery, got %d", dummy.SentCount())
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != models.StatusSent {
		t.Errorf("expected one sent log entry, got %+v", logs.entries)
	}
}

func TestQueueNoRecipients(t *testing.T) {
	svc := newTestService(t, svcDeps{})

	_, err := svc.Queue(context.Background(), service.SendRequest{Subject: "hello"})
	if !errors.Is(err, service.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
}

func TestQueueInvalidAddress(t *testing.T) {
	svc := newTestService(t, svcDeps{})

	_, err := svc.Queue(context.Background(), service.SendRequest{
		To: []string{"not an email"},
	})
	if !errors.Is(err, service.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestQueueTemplateNotFound(t *testing.T) {
	svc := newTestService(t, svcDeps{})

	_, err := svc.Queue(context.Background(), service.SendRequest{
		To:           []string{"user@example.com"},
		TemplateName: "missing",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeliverRendersTemplate(t *testing.T) {
	tmplID := uuid.New()
	templates := &mockTemplateRepo{
		GetByNameFunc: func(_ context.Context, name, language string) (*models.EmailTemplate, error) {
			if name != "welcome" {
				return nil, repository.ErrNotFound
			}
			return &models.EmailTemplate{
				ID:          tmplID,
				Name:        "welcome",
				Subject:     "Welcome, {{name}}!",
				Content:     "Hello {{name}}, glad to see you.",
				HTMLContent: "<p>Hello {{name}}</p>",
			}, nil
		},
	}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{templates: templates, dummy: dummy})

	email, err := svc.Send(context.Background(), service.SendRequest{
		To:           []string{"user@example.com"},
		TemplateName: "welcome",
		Context:      map[string]any{"name": "Alice"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if email.Subject != "Welcome, Alice!" {
		t.Errorf("unexpected subject: %q", email.Subject)
	}
	if email.Message != "Hello Alice, glad to see you." {
		t.Errorf("unexpected message: %q", email.Message)
	}
	if email.HTMLMessage != "<p>Hello Alice</p>" {
		t.Errorf("unexpected html: %q", email.HTMLMessage)
	}
	if email.TemplateID == nil || *email.TemplateID != tmplID {
		t.Error("expected template id to be attached")
	}
}

func TestDeliverRenderErrorIsNotRetried(t *testing.T) {
	var markedFailed, retried bool
	emails := &mockEmailRepo{
		MarkFailedFunc: func(_ context.Context, _ uuid.UUID) error {
			markedFailed = true
			return nil
		},
		MarkQueuedForRetryFunc: func(_ context.Context, _ uuid.UUID, _ int, _ time.Time) error {
			retried = true
			return nil
		},
	}
	logs := &mockLogRepo{}
	svc := newTestService(t, svcDeps{emails: emails, logs: logs})

	email := &models.Email{
		ID: uuid.New(),
		To: models.EmailAddresses{"user@example.com"},
		Template: &models.EmailTemplate{
			Subject: "Hello {{unknown_variable}}",
		},
	}

	err := svc.Deliver(context.Background(), email)
	var rerr *template.RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	if !markedFailed {
		t.Error("expected email to be marked failed")
	}
	if retried {
		t.Error("render errors must not be retried")
	}
	if len(logs.entries) != 1 || logs.entries[0].ExceptionType != "RenderError" {
		t.Errorf("expected RenderError log entry, got %+v", logs.entries)
	}
}

func TestDeliverRetriesWithBackoff(t *testing.T) {
	var gotRetries int
	var gotNextAttempt time.Time
	emails := &mockEmailRepo{
		MarkQueuedForRetryFunc: func(_ context.Context, _ uuid.UUID, retries int, nextAttempt time.Time) error {
			gotRetries = retries
			gotNextAttempt = nextAttempt
			return nil
		},
	}
	dummy := sender.NewDummySender()
	dummy.FailWith = errors.New("connection refused")
	svc := newTestService(t, svcDeps{emails: emails, dummy: dummy})

	email := &models.Email{
		ID:              uuid.New(),
		To:              models.EmailAddresses{"user@example.com"},
		Subject:         "hello",
		NumberOfRetries: 1,
	}

	before := time.Now()
	err := svc.Deliver(context.Background(), email)
	if err == nil {
		t.Fatal("expected delivery error")
	}
	if gotRetries != 2 {
		t.Errorf("expected retries=2, got %d", gotRetries)
	}
	if email.Status != models.StatusRequeued {
		t.Errorf("expected status requeued, got %s", email.Status)
	}
	// Вторая попытка: интервал 15m * 2^1 = 30m.
	wantDelay := 30 * time.Minute
	delay := gotNextAttempt.Sub(before)
	if delay < wantDelay-time.Second || delay > wantDelay+time.Second {
		t.Errorf("expected next attempt in ~%v, got %v", wantDelay, delay)
	}
}

func TestDeliverFailsAfterMaxRetries(t *testing.T) {
	var markedFailed, retried bool
	emails := &mockEmailRepo{
		MarkFailedFunc: func(_ context.Context, _ uuid.UUID) error {
			markedFailed = true
			return nil
		},
		MarkQueuedForRetryFunc: func(_ context.Context, _ uuid.UUID, _ int, _ time.Time) error {
			retried = true
			return nil
		},
	}
	dummy := sender.NewDummySender()
	dummy.FailWith = errors.New("connection refused")
	svc := newTestService(t, svcDeps{emails: emails, dummy: dummy})

	email := &models.Email{
		ID:              uuid.New(),
		To:              models.EmailAddresses{"user@example.com"},
		NumberOfRetries: 2,
	}

	if err := svc.Deliver(context.Background(), email); err == nil {
		t.Fatal("expected delivery error")
	}
	if retried {
		t.Error("retries exhausted, must not requeue")
	}
	if !markedFailed {
		t.Error("expected email to be marked failed")
	}
	if email.Status != models.StatusFailed {
		t.Errorf("expected status failed, got %s", email.Status)
	}
}

func TestDeliverExpiredEmail(t *testing.T) {
	logs := &mockLogRepo{}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{logs: logs, dummy: dummy})

	expired := time.Now().Add(-time.Hour)
	email := &models.Email{
		ID:        uuid.New(),
		To:        models.EmailAddresses{"user@example.com"},
		ExpiresAt: &expired,
	}

	err := svc.Deliver(context.Background(), email)
	if !errors.Is(err, service.ErrEmailExpired) {
		t.Fatalf("expected ErrEmailExpired, got %v", err)
	}
	if dummy.SentCount() != 0 {
		t.Error("expired email must not be sent")
	}
	if len(logs.entries) != 1 || logs.entries[0].ExceptionType != "EmailExpired" {
		t.Errorf("expected EmailExpired log entry, got %+v", logs.entries)
	}
}

func TestDeliverUnknownBackend(t *testing.T) {
	var retried bool
	emails := &mockEmailRepo{
		MarkQueuedForRetryFunc: func(_ context.Context, _ uuid.UUID, _ int, _ time.Time) error {
			retried = true
			return nil
		},
	}
	logs := &mockLogRepo{}
	svc := newTestService(t, svcDeps{emails: emails, logs: logs})

	email := &models.Email{
		ID:           uuid.New(),
		To:           models.EmailAddresses{"user@example.com"},
		BackendAlias: "nonexistent",
	}

	err := svc.Deliver(context.Background(), email)
	if !errors.Is(err, sender.ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
	if retried {
		t.Error("unknown backend is a configuration error, must not retry")
	}
	if len(logs.entries) != 1 || logs.entries[0].ExceptionType != "BackendNotFound" {
		t.Errorf("expected BackendNotFound log entry, got %+v", logs.entries)
	}
}

func TestSendManyDemotesNowPriority(t *testing.T) {
	var batch []*models.Email
	emails := &mockEmailRepo{
		CreateBatchFunc: func(_ context.Context, es []*models.Email) error {
			batch = es
			return nil
		},
	}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{emails: emails, dummy: dummy})

	_, err := svc.SendMany(context.Background(), []service.SendRequest{
		{To: []string{"a@example.com"}, Priority: models.PriorityNow},
		{To: []string{"b@example.com"}},
	})
	if err != nil {
		t.Fatalf("SendMany failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 emails in batch, got %d", len(batch))
	}
	if batch[0].Priority != models.PriorityHigh {
		t.Errorf("expected now demoted to high, got %s", batch[0].Priority)
	}
	if dummy.SentCount() != 0 {
		t.Error("batch emails must not be sent immediately")
	}
}

func TestLoadTemplateUsesCache(t *testing.T) {
	var dbCalls int
	templates := &mockTemplateRepo{
		GetByNameFunc: func(_ context.Context, name, language string) (*models.EmailTemplate, error) {
			dbCalls++
			return &models.EmailTemplate{
				ID:      uuid.New(),
				Name:    name,
				Subject: "Hi {{name}}",
				Content: "body",
			}, nil
		},
	}
	cache := newMapCache()
	svc := newTestService(t, svcDeps{templates: templates, cache: cache})

	for i := 0; i < 3; i++ {
		_, err := svc.Queue(context.Background(), service.SendRequest{
			To:           []string{"user@example.com"},
			TemplateName: "welcome",
			Context:      map[string]any{"name": "Bob"},
		})
		if err != nil {
			t.Fatalf("Queue failed: %v", err)
		}
	}
	if dbCalls != 1 {
		t.Errorf("expected 1 db lookup with warm cache, got %d", dbCalls)
	}
}

func TestUpdateTemplateInvalidatesCache(t *testing.T) {
	templates := &mockTemplateRepo{}
	cache := newMapCache()
	svc := newTestService(t, svcDeps{templates: templates, cache: cache})

	tmpl := &models.EmailTemplate{ID: uuid.New(), Name: "welcome", Language: "de"}
	_ = cache.SetTemplate(context.Background(), "welcome", "de", []byte(`{"Name":"welcome"}`), time.Minute)

	if err := svc.UpdateTemplate(context.Background(), tmpl); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}
	if _, err := cache.GetTemplate(context.Background(), "welcome", "de"); err == nil {
		t.Error("expected cache entry to be invalidated")
	}
}

func TestQueueAttachesFiles(t *testing.T) {
	attID := uuid.New()
	var attachedTo uuid.UUID
	stored := []models.Attachment{{ID: attID, Name: "invoice.pdf", MimeType: "application/pdf", File: "/var/mail/invoice.pdf"}}
	attachments := &mockAttachmentRepo{
		AttachToEmailFunc: func(_ context.Context, attachmentID, emailID uuid.UUID) error {
			if attachmentID != attID {
				t.Errorf("unexpected attachment id %s", attachmentID)
			}
			attachedTo = emailID
			return nil
		},
		ListByEmailFunc: func(_ context.Context, _ uuid.UUID) ([]models.Attachment, error) {
			return stored, nil
		},
	}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{attachments: attachments, dummy: dummy})

	email, err := svc.Send(context.Background(), service.SendRequest{
		To:            []string{"user@example.com"},
		Subject:       "invoice",
		Message:       "see attached",
		AttachmentIDs: []uuid.UUID{attID},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if attachedTo != email.ID {
		t.Errorf("expected attachment linked to %s, got %s", email.ID, attachedTo)
	}
	sent := dummy.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sent))
	}
	// Немедленная доставка должна уйти с подгруженными вложениями.
	if len(sent[0].Attachments) != 1 || sent[0].Attachments[0].Name != "invoice.pdf" {
		t.Errorf("expected attachment on delivered email, got %+v", sent[0].Attachments)
	}
}

func TestQueueAttachFailureAborts(t *testing.T) {
	attachErr := errors.New("attachment does not exist")
	attachments := &mockAttachmentRepo{
		AttachToEmailFunc: func(_ context.Context, _, _ uuid.UUID) error {
			return attachErr
		},
	}
	dummy := sender.NewDummySender()
	svc := newTestService(t, svcDeps{attachments: attachments, dummy: dummy})

	_, err := svc.Queue(context.Background(), service.SendRequest{
		To:            []string{"user@example.com"},
		Subject:       "invoice",
		AttachmentIDs: []uuid.UUID{uuid.New()},
	})
	if !errors.Is(err, attachErr) {
		t.Fatalf("expected attach error, got %v", err)
	}
	if dummy.SentCount() != 0 {
		t.Error("email with failed attachment must not be sent")
	}
}

func TestRequeue(t *testing.T) {
	var gotIDs []uuid.UUID
	emails := &mockEmailRepo{
		RequeueFunc: func(_ context.Context, ids []uuid.UUID) (int64, error) {
			gotIDs = ids
			return int64(len(ids)), nil
		},
	}
	svc := newTestService(t, svcDeps{emails: emails})

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	n, err := svc.Requeue(context.Background(), ids)
	if err != nil {
		t.Fatalf("Requeue failed: %v", err)
	}
	if n != 2 || len(gotIDs) != 2 {
		t.Errorf("expected 2 requeued, got %d", n)
	}
}
