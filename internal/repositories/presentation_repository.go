package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"deckforge/internal/models"
)

type PresentationRepository interface {
	Create(ctx context.Context, p *models.Presentation) error
	GetByID(ctx context.Context, id uint) (*models.Presentation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Presentation, error)
	SetStatus(ctx context.Context, id uint, status string) error
	SetTheme(ctx context.Context, id uint, themeID string) error
	Delete(ctx context.Context, id uint) error
}

type presentationRepository struct {
	db *gorm.DB
}

func NewPresentationRepository(db *gorm.DB) PresentationRepository {
	return &presentationRepository{db: db}
}

func (r *presentationRepository) Create(ctx context.Context, p *models.Presentation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *presentationRepository) GetByID(ctx context.Context, id uint) (*models.Presentation, error) {
	var p models.Presentation
	err := r.db.WithContext(ctx).
		Preload("Slides", func(db *gorm.DB) *gorm.DB {
			return db.Order("slide_number asc")
		}).
		Take(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *presentationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Presentation, error) {
	var out []models.Presentation
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *presentationRepository) SetStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.Presentation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *presentationRepository) SetTheme(ctx context.Context, id uint, themeID string) error {
	return r.db.WithContext(ctx).Model(&models.Presentation{}).
		Where("id = ?", id).
		Update("theme_id", themeID).Error
}

func (r *presentationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Presentation{}, id).Error
}
