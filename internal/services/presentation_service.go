package services

import (
	"context"
	"errors"
	"fmt"

	"deckforge/internal/models"
	"deckforge/internal/repositories"
)

var ErrPresentationNotFound = errors.New("presentation not found")

// PresentationService is the read/delete surface over finished and in-flight
// decks. Creation happens only through the generation pipeline.
type PresentationService interface {
	GetByID(ctx context.Context, id uint) (*models.Presentation, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Presentation, error)
	Delete(ctx context.Context, id uint) error
}

type presentationService struct {
	presRepo   repositories.PresentationRepository
	validation ValidationService
}

func NewPresentationService(presRepo repositories.PresentationRepository, validation ValidationService) PresentationService {
	return &presentationService{presRepo: presRepo, validation: validation}
}

func (s *presentationService) GetByID(ctx context.Context, id uint) (*models.Presentation, error) {
	p, err := s.presRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load presentation %d: %w", id, err)
	}
	if p == nil {
		return nil, ErrPresentationNotFound
	}
	return p, nil
}

func (s *presentationService) ListByUser(ctx context.Context, userID uint) ([]models.Presentation, error) {
	return s.presRepo.ListByUser(ctx, userID)
}

// Delete removes the presentation and drops any validations still waiting on
// it. A dangling pending entry would lapse via TTL anyway; clearing is just
// immediate.
func (s *presentationService) Delete(ctx context.Context, id uint) error {
	if err := s.presRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete presentation %d: %w", id, err)
	}
	return s.validation.ClearPending(ctx, id)
}
