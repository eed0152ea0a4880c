package services

import (
	"context"
	"errors"
	"fmt"

	"deckforge/internal/models"
	"deckforge/internal/repositories"
)

// ErrNoThemes is returned when the theme table is empty and nothing can be
// resolved at all.
var ErrNoThemes = errors.New("no themes available")

// ThemeService resolves the theme applied to a new presentation. Resolution
// never fails on a bad request: an unknown requested id silently falls back
// to the default, then to any theme at all.
type ThemeService interface {
	Resolve(ctx context.Context, requestedID string) (*models.Theme, error)
	List(ctx context.Context) ([]models.Theme, error)
	EnsureDefault(ctx context.Context, id, name string) error
}

type themeService struct {
	themeRepo repositories.ThemeRepository
}

func NewThemeService(themeRepo repositories.ThemeRepository) ThemeService {
	return &themeService{themeRepo: themeRepo}
}

func (s *themeService) Resolve(ctx context.Context, requestedID string) (*models.Theme, error) {
	if requestedID != "" {
		theme, err := s.themeRepo.GetByID(ctx, requestedID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up theme %q: %w", requestedID, err)
		}
		if theme != nil {
			return theme, nil
		}
	}

	theme, err := s.themeRepo.GetDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up default theme: %w", err)
	}
	if theme != nil {
		return theme, nil
	}

	theme, err = s.themeRepo.GetAny(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up fallback theme: %w", err)
	}
	if theme == nil {
		return nil, ErrNoThemes
	}
	return theme, nil
}

func (s *themeService) List(ctx context.Context) ([]models.Theme, error) {
	return s.themeRepo.List(ctx)
}

// EnsureDefault seeds the built-in theme on first boot so Resolve always has
// a fallback on a fresh database.
func (s *themeService) EnsureDefault(ctx context.Context, id, name string) error {
	existing, err := s.themeRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check default theme: %w", err)
	}
	if existing != nil {
		return nil
	}
	return s.themeRepo.Create(ctx, &models.Theme{ID: id, Name: name, IsDefault: true})
}
