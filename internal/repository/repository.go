package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	DB          *gorm.DB
	Emails      EmailRepo
	Templates   TemplateRepo
	Logs        LogRepo
	Attachments AttachmentRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:          db,
		Emails:      NewEmailRepo(db),
		Templates:   NewTemplateRepo(db),
		Logs:        NewLogRepo(db),
		Attachments: NewAttachmentRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }
