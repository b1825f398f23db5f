package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
	StatusQueued   Status = "queued"
	StatusRequeued Status = "requeued"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	// PriorityNow — отправка сразу, минуя очередь.
	PriorityNow Priority = "now"
)

// JSONMap — jsonb-колонка для контекста шаблона и заголовков.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for JSONMap", value)
	}
}

func (JSONMap) GormDataType() string { return "jsonb" }

type Email struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FromEmail   string          `gorm:"not null"`
	To          EmailAddresses  `gorm:"type:text;not null;default:''"`
	Cc          EmailAddresses  `gorm:"type:text;not null;default:''"`
	Bcc         EmailAddresses  `gorm:"type:text;not null;default:''"`
	Subject     string          `gorm:"type:text;not null;default:''"`
	Message     string          `gorm:"type:text;not null;default:''"`
	HTMLMessage string          `gorm:"type:text;not null;default:''"`
	Status      Status          `gorm:"type:text;not null;default:'queued';index"`
	Priority    Priority        `gorm:"type:text;not null;default:'medium'"`
	ScheduledAt *time.Time      `gorm:"index"`
	ExpiresAt   *time.Time      `gorm:"index"`
	TemplateID  *uuid.UUID      `gorm:"type:uuid;index"`
	Template    *EmailTemplate  `gorm:"foreignKey:TemplateID"`
	Context     JSONMap         `gorm:"type:jsonb"`
	Headers     JSONMap         `gorm:"type:jsonb"`
	// Алиас бэкенда отправки; пустая строка — бэкенд по умолчанию.
	BackendAlias    string       `gorm:"type:text;not null;default:''"`
	NumberOfRetries int          `gorm:"not null;default:0"`
	Attachments     []Attachment `gorm:"many2many:email_attachments"`
	CreatedAt       time.Time    `gorm:"not null;default:now();index"`
	LastUpdated     time.Time    `gorm:"not null;default:now();autoUpdateTime;index"`
}

func (Email) TableName() string { return "emails" }

type EmailTemplate struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;not null;index:idx_templates_name_language"`
	Description string    `gorm:"type:text;not null;default:''"`
	// Язык перевода; пустая строка — базовый шаблон. Уникальность пары
	// (name, lower(language)) обеспечивает индекс в миграции.
	Language string `gorm:"type:text;not null;default:'';index:idx_templates_name_language"`
	// Базовый шаблон, переводом которого является этот.
	DefaultTemplateID *uuid.UUID     `gorm:"type:uuid;index"`
	DefaultTemplate   *EmailTemplate `gorm:"foreignKey:DefaultTemplateID"`
	Subject           string         `gorm:"type:text;not null;default:''"`
	Content           string         `gorm:"type:text;not null;default:''"`
	HTMLContent       string         `gorm:"type:text;not null;default:''"`
	CreatedAt         time.Time      `gorm:"not null;default:now()"`
	LastUpdated       time.Time      `gorm:"not null;default:now();autoUpdateTime"`
}

func (EmailTemplate) TableName() string { return "email_templates" }

// Log — запись о попытке доставки письма.
type Log struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EmailID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        Status    `gorm:"type:text;not null"`
	ExceptionType string    `gorm:"type:text;not null;default:''"`
	Message       string    `gorm:"type:text;not null;default:''"`
	Date          time.Time `gorm:"not null;default:now();index"`
}

func (Log) TableName() string { return "logs" }

type Attachment struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string    `gorm:"type:text;not null"`
	MimeType string    `gorm:"type:text;not null;default:''"`
	// Путь к файлу на диске.
	File      string    `gorm:"type:text;not null"`
	Headers   JSONMap   `gorm:"type:jsonb"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Attachment) TableName() string { return "attachments" }
