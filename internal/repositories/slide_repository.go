package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"deckforge/internal/models"
)

type SlideRepository interface {
	Create(ctx context.Context, s *models.Slide) error
	GetByID(ctx context.Context, id uint) (*models.Slide, error)
	ListByPresentation(ctx context.Context, presentationID uint) ([]models.Slide, error)
	Update(ctx context.Context, s *models.Slide) error
	UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error
	// DeleteAndRenumber removes one slide and rewrites the slide numbers of
	// the remaining slides to a contiguous 1..N sequence, all in a single
	// transaction.
	DeleteAndRenumber(ctx context.Context, presentationID, slideID uint) error
}

type slideRepository struct {
	db *gorm.DB
}

func NewSlideRepository(db *gorm.DB) SlideRepository {
	return &slideRepository{db: db}
}

func (r *slideRepository) Create(ctx context.Context, s *models.Slide) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *slideRepository) GetByID(ctx context.Context, id uint) (*models.Slide, error) {
	var s models.Slide
	if err := r.db.WithContext(ctx).Take(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *slideRepository) ListByPresentation(ctx context.Context, presentationID uint) ([]models.Slide, error) {
	var out []models.Slide
	err := r.db.WithContext(ctx).
		Where("presentation_id = ?", presentationID).
		Order("slide_number asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *slideRepository) Update(ctx context.Context, s *models.Slide) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *slideRepository) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Slide{}).Where("id = ?", id).Updates(updates).Error
}

func (r *slideRepository) DeleteAndRenumber(ctx context.Context, presentationID, slideID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND presentation_id = ?", slideID, presentationID).Delete(&models.Slide{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("slide %d not found in presentation %d", slideID, presentationID)
		}
		var remaining []models.Slide
		if err := tx.Where("presentation_id = ?", presentationID).
			Order("slide_number asc").
			Find(&remaining).Error; err != nil {
			return err
		}
		for i := range remaining {
			want := i + 1
			if remaining[i].SlideNumber == want {
				continue
			}
			if err := tx.Model(&models.Slide{}).
				Where("id = ?", remaining[i].ID).
				Update("slide_number", want).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
