package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"deckforge/internal/models"
)

type ThemeRepository interface {
	Create(ctx context.Context, t *models.Theme) error
	GetByID(ctx context.Context, id string) (*models.Theme, error)
	GetDefault(ctx context.Context) (*models.Theme, error)
	// GetAny returns an arbitrary theme, used as the last fallback when
	// neither the requested nor the default theme exists.
	GetAny(ctx context.Context) (*models.Theme, error)
	List(ctx context.Context) ([]models.Theme, error)
}

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) Create(ctx context.Context, t *models.Theme) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *themeRepository) GetByID(ctx context.Context, id string) (*models.Theme, error) {
	var t models.Theme
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *themeRepository) GetDefault(ctx context.Context) (*models.Theme, error) {
	var t models.Theme
	if err := r.db.WithContext(ctx).Where("is_default = ?", true).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *themeRepository) GetAny(ctx context.Context) (*models.Theme, error) {
	var t models.Theme
	if err := r.db.WithContext(ctx).Order("id asc").Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *themeRepository) List(ctx context.Context) ([]models.Theme, error) {
	var out []models.Theme
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
