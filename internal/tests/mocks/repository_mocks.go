package mocks

import (
	"context"

	"deckforge/internal/models"
)

type CreditRepositoryMock struct {
	ReserveFunc   func(ctx context.Context, userID uint, amount int, reason string) (*models.CreditReservation, error)
	CommitFunc    func(ctx context.Context, reservationID string) error
	ReleaseFunc   func(ctx context.Context, reservationID string) error
	FindFunc      func(ctx context.Context, reservationID string) (*models.CreditReservation, error)
	BalanceOfFunc func(ctx context.Context, userID uint) (int, error)
	GrantFunc     func(ctx context.Context, userID uint, amount int) error
}

func (m *CreditRepositoryMock) Reserve(ctx context.Context, userID uint, amount int, reason string) (*models.CreditReservation, error) {
	if m.ReserveFunc != nil {
		return m.ReserveFunc(ctx, userID, amount, reason)
	}
	return &models.CreditReservation{
		ID:     "res-1",
		UserID: userID,
		Amount: amount,
		Reason: reason,
		Status: models.ReservationPending,
	}, nil
}

func (m *CreditRepositoryMock) Commit(ctx context.Context, reservationID string) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, reservationID)
	}
	return nil
}

func (m *CreditRepositoryMock) Release(ctx context.Context, reservationID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, reservationID)
	}
	return nil
}

func (m *CreditRepositoryMock) Find(ctx context.Context, reservationID string) (*models.CreditReservation, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, reservationID)
	}
	return nil, nil
}

func (m *CreditRepositoryMock) BalanceOf(ctx context.Context, userID uint) (int, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, userID)
	}
	return 0, nil
}

func (m *CreditRepositoryMock) Grant(ctx context.Context, userID uint, amount int) error {
	if m.GrantFunc != nil {
		return m.GrantFunc(ctx, userID, amount)
	}
	return nil
}

type UserRepositoryMock struct {
	CreateFunc  func(ctx context.Context, u *models.User) error
	GetByIDFunc func(ctx context.Context, id uint) (*models.User, error)
	UpdateFunc  func(ctx context.Context, u *models.User) error
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &models.User{ID: id, Name: "Test User", Tier: models.TierFree, CreditBalance: 10}, nil
}

func (m *UserRepositoryMock) Update(ctx context.Context, u *models.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	return nil
}

type PresentationRepositoryMock struct {
	CreateFunc     func(ctx context.Context, p *models.Presentation) error
	GetByIDFunc    func(ctx context.Context, id uint) (*models.Presentation, error)
	ListByUserFunc func(ctx context.Context, userID uint) ([]models.Presentation, error)
	SetStatusFunc  func(ctx context.Context, id uint, status string) error
	SetThemeFunc   func(ctx context.Context, id uint, themeID string) error
	DeleteFunc     func(ctx context.Context, id uint) error
}

func (m *PresentationRepositoryMock) Create(ctx context.Context, p *models.Presentation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	if p.ID == 0 {
		p.ID = 1
	}
	return nil
}

func (m *PresentationRepositoryMock) GetByID(ctx context.Context, id uint) (*models.Presentation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *PresentationRepositoryMock) ListByUser(ctx context.Context, userID uint) ([]models.Presentation, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *PresentationRepositoryMock) SetStatus(ctx context.Context, id uint, status string) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *PresentationRepositoryMock) SetTheme(ctx context.Context, id uint, themeID string) error {
	if m.SetThemeFunc != nil {
		return m.SetThemeFunc(ctx, id, themeID)
	}
	return nil
}

func (m *PresentationRepositoryMock) Delete(ctx context.Context, id uint) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type SlideRepositoryMock struct {
	CreateFunc             func(ctx context.Context, s *models.Slide) error
	GetByIDFunc            func(ctx context.Context, id uint) (*models.Slide, error)
	ListByPresentationFunc func(ctx context.Context, presentationID uint) ([]models.Slide, error)
	UpdateFunc             func(ctx context.Context, s *models.Slide) error
	UpdateFieldsFunc       func(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteAndRenumberFunc  func(ctx context.Context, presentationID, slideID uint) error
}

func (m *SlideRepositoryMock) Create(ctx context.Context, s *models.Slide) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	if s.ID == 0 {
		s.ID = uint(s.SlideNumber)
	}
	return nil
}

func (m *SlideRepositoryMock) GetByID(ctx context.Context, id uint) (*models.Slide, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *SlideRepositoryMock) ListByPresentation(ctx context.Context, presentationID uint) ([]models.Slide, error) {
	if m.ListByPresentationFunc != nil {
		return m.ListByPresentationFunc(ctx, presentationID)
	}
	return nil, nil
}

func (m *SlideRepositoryMock) Update(ctx context.Context, s *models.Slide) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return nil
}

func (m *SlideRepositoryMock) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	if m.UpdateFieldsFunc != nil {
		return m.UpdateFieldsFunc(ctx, id, updates)
	}
	return nil
}

func (m *SlideRepositoryMock) DeleteAndRenumber(ctx context.Context, presentationID, slideID uint) error {
	if m.DeleteAndRenumberFunc != nil {
		return m.DeleteAndRenumberFunc(ctx, presentationID, slideID)
	}
	return nil
}

type ThemeRepositoryMock struct {
	CreateFunc     func(ctx context.Context, t *models.Theme) error
	GetByIDFunc    func(ctx context.Context, id string) (*models.Theme, error)
	GetDefaultFunc func(ctx context.Context) (*models.Theme, error)
	GetAnyFunc     func(ctx context.Context) (*models.Theme, error)
	ListFunc       func(ctx context.Context) ([]models.Theme, error)
}

func (m *ThemeRepositoryMock) Create(ctx context.Context, t *models.Theme) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	return nil
}

func (m *ThemeRepositoryMock) GetByID(ctx context.Context, id string) (*models.Theme, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *ThemeRepositoryMock) GetDefault(ctx context.Context) (*models.Theme, error) {
	if m.GetDefaultFunc != nil {
		return m.GetDefaultFunc(ctx)
	}
	return &models.Theme{ID: "classic-light", Name: "Classic Light", IsDefault: true}, nil
}

func (m *ThemeRepositoryMock) GetAny(ctx context.Context) (*models.Theme, error) {
	if m.GetAnyFunc != nil {
		return m.GetAnyFunc(ctx)
	}
	return nil, nil
}

func (m *ThemeRepositoryMock) List(ctx context.Context) ([]models.Theme, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}
