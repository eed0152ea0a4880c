package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckforge/internal/models"
	"deckforge/internal/tests/mocks"
)

func TestResolveRequestedTheme(t *testing.T) {
	repo := &mocks.ThemeRepositoryMock{
		GetByIDFunc: func(_ context.Context, id string) (*models.Theme, error) {
			if id == "midnight" {
				return &models.Theme{ID: "midnight", Name: "Midnight"}, nil
			}
			return nil, nil
		},
	}
	svc := NewThemeService(repo)

	theme, err := svc.Resolve(context.Background(), "midnight")
	require.NoError(t, err)
	assert.Equal(t, "midnight", theme.ID)
}

func TestResolveUnknownThemeFallsBackToDefault(t *testing.T) {
	repo := &mocks.ThemeRepositoryMock{
		GetByIDFunc: func(context.Context, string) (*models.Theme, error) { return nil, nil },
	}
	svc := NewThemeService(repo)

	theme, err := svc.Resolve(context.Background(), "no-such-theme")
	require.NoError(t, err)
	assert.Equal(t, "classic-light", theme.ID, "unknown ids fall back to the default")
}

func TestResolveFallsBackToAnyTheme(t *testing.T) {
	repo := &mocks.ThemeRepositoryMock{
		GetByIDFunc:    func(context.Context, string) (*models.Theme, error) { return nil, nil },
		GetDefaultFunc: func(context.Context) (*models.Theme, error) { return nil, nil },
		GetAnyFunc: func(context.Context) (*models.Theme, error) {
			return &models.Theme{ID: "leftover"}, nil
		},
	}
	svc := NewThemeService(repo)

	theme, err := svc.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "leftover", theme.ID)
}

func TestResolveFailsWithNoThemesAtAll(t *testing.T) {
	repo := &mocks.ThemeRepositoryMock{
		GetByIDFunc:    func(context.Context, string) (*models.Theme, error) { return nil, nil },
		GetDefaultFunc: func(context.Context) (*models.Theme, error) { return nil, nil },
		GetAnyFunc:     func(context.Context) (*models.Theme, error) { return nil, nil },
	}
	svc := NewThemeService(repo)

	_, err := svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoThemes)
}

func TestEnsureDefaultSeedsOnce(t *testing.T) {
	created := 0
	repo := &mocks.ThemeRepositoryMock{
		GetByIDFunc: func(context.Context, string) (*models.Theme, error) { return nil, nil },
		CreateFunc: func(_ context.Context, theme *models.Theme) error {
			created++
			assert.True(t, theme.IsDefault)
			return nil
		},
	}
	svc := NewThemeService(repo)
	require.NoError(t, svc.EnsureDefault(context.Background(), "classic-light", "Classic Light"))
	assert.Equal(t, 1, created)

	repo.GetByIDFunc = func(context.Context, string) (*models.Theme, error) {
		return &models.Theme{ID: "classic-light"}, nil
	}
	require.NoError(t, svc.EnsureDefault(context.Background(), "classic-light", "Classic Light"))
	assert.Equal(t, 1, created, "an existing default is not recreated")
}
