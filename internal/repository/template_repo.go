package repository

import (
	"context"
	"errors"

	"mail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepo interface {
	Create(ctx context.Context, t *models.EmailTemplate) error
	Update(ctx context.Context, t *models.EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error)
	// GetByName ищет шаблон по имени и языку; если перевода нет,
	// возвращает базовый шаблон (language = "").
	GetByName(ctx context.Context, name, language string) (*models.EmailTemplate, error)
	List(ctx context.Context) ([]models.EmailTemplate, error)
}

type templateRepo struct{ db *gorm.DB }

func NewTemplateRepo(db *gorm.DB) TemplateRepo { return &templateRepo{db: db} }

func (r *templateRepo) Create(ctx context.Context, t *models.EmailTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *templateRepo) Update(ctx context.Context, t *models.EmailTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *templateRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.EmailTemplate{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *templateRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepo) GetByName(ctx context.Context, name, language string) (*models.EmailTemplate, error) {
	var t models.EmailTemplate
	// Язык сравнивается без учёта регистра, в паре с уникальным
	// индексом по (name, lower(language)).
	err := r.db.WithContext(ctx).
		Where("name = ? AND lower(language) = lower(?)", name, language).
		First(&t).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if language == "" {
		return nil, ErrNotFound
	}
	// Перевода нет — откатываемся на базовый шаблон.
	err = r.db.WithContext(ctx).
		Where("name = ? AND language = ''", name).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *templateRepo) List(ctx context.Context) ([]models.EmailTemplate, error) {
	var ts []models.EmailTemplate
	if err := r.db.WithContext(ctx).Order("name, language").Find(&ts).Error; err != nil {
		return nil, err
	}
	return ts, nil
}
