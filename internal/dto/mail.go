package dto

import "time"

type QueueEmailRequest struct {
	From        string         `json:"from"`
	To          []string       `json:"to" binding:"required,min=1"`
	Cc          []string       `json:"cc"`
	Bcc         []string       `json:"bcc"`
	Subject     string         `json:"subject"`
	Message     string         `json:"message"`
	HTMLMessage string         `json:"html_message"`
	Template    string         `json:"template"`
	Language    string         `json:"language"`
	Context     map[string]any `json:"context"`
	Priority    string         `json:"priority"`
	ScheduledAt *time.Time     `json:"scheduled_at"`
	ExpiresAt   *time.Time     `json:"expires_at"`
	Backend     string         `json:"backend"`
	// Идентификаторы вложений, созданных через POST /attachments.
	Attachments []string `json:"attachments"`
}

type EmailResponse struct {
	ID          string     `json:"id"`
	From        string     `json:"from"`
	To          []string   `json:"to"`
	Cc          []string   `json:"cc,omitempty"`
	Bcc         []string   `json:"bcc,omitempty"`
	Subject     string     `json:"subject"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Template    string     `json:"template,omitempty"`
	Retries     int        `json:"retries"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUpdated time.Time  `json:"last_updated"`
}

type AttachmentRequest struct {
	Name     string `json:"name" binding:"required"`
	MimeType string `json:"mime_type"`
	// Путь к файлу на диске сервиса.
	File string `json:"file" binding:"required"`
}

type AttachmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type,omitempty"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
}

type RequeueRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type RequeueResponse struct {
	Requeued int64 `json:"requeued"`
}

type TemplateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	HTMLContent string `json:"html_content"`
}

type TemplateResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Language    string    `json:"language,omitempty"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	HTMLContent string    `json:"html_content,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
