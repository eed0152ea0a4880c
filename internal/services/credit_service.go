package services

import (
	"context"
	"fmt"

	"deckforge/internal/models"
	"deckforge/internal/repositories"
)

// CreditService is the thin account surface over the ledger. Reservation
// lifecycle stays inside the generation pipeline; this only exposes balance
// reads and top-ups.
type CreditService interface {
	Balance(ctx context.Context, userID uint) (int, error)
	Grant(ctx context.Context, userID uint, amount int) (int, error)
	Reservation(ctx context.Context, reservationID string) (*models.CreditReservation, error)
}

type creditService struct {
	creditRepo repositories.CreditRepository
}

func NewCreditService(creditRepo repositories.CreditRepository) CreditService {
	return &creditService{creditRepo: creditRepo}
}

func (s *creditService) Balance(ctx context.Context, userID uint) (int, error) {
	return s.creditRepo.BalanceOf(ctx, userID)
}

func (s *creditService) Grant(ctx context.Context, userID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	if err := s.creditRepo.Grant(ctx, userID, amount); err != nil {
		return 0, err
	}
	return s.creditRepo.BalanceOf(ctx, userID)
}

func (s *creditService) Reservation(ctx context.Context, reservationID string) (*models.CreditReservation, error) {
	return s.creditRepo.Find(ctx, reservationID)
}
