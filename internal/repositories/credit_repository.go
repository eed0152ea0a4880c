package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"deckforge/internal/models"
)

// ErrInsufficientBalance is returned by Reserve when the user's balance
// cannot cover the requested hold. It is an expected branch for callers, not
// an infrastructure failure.
var ErrInsufficientBalance = errors.New("insufficient credit balance")

// ErrReservationNotFound is returned by Commit/Release for unknown ids.
var ErrReservationNotFound = errors.New("credit reservation not found")

// CreditRepository is the resource ledger: it holds user balances and
// reservations. Reserve debits the balance and creates the hold in one
// transaction, so two concurrent reservations from the same user can never
// both succeed on a balance that covers only one.
type CreditRepository interface {
	Reserve(ctx context.Context, userID uint, amount int, reason string) (*models.CreditReservation, error)
	Commit(ctx context.Context, reservationID string) error
	Release(ctx context.Context, reservationID string) error
	Find(ctx context.Context, reservationID string) (*models.CreditReservation, error)
	BalanceOf(ctx context.Context, userID uint) (int, error)
	Grant(ctx context.Context, userID uint, amount int) error
}

type creditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) Reserve(ctx context.Context, userID uint, amount int, reason string) (*models.CreditReservation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("reservation amount must be positive, got %d", amount)
	}
	res := &models.CreditReservation{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: amount,
		Reason: reason,
		Status: models.ReservationPending,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional debit: zero rows means the balance could not cover
		// the hold (or the user does not exist).
		debit := tx.Model(&models.User{}).
			Where("id = ? AND credit_balance >= ?", userID, amount).
			Update("credit_balance", gorm.Expr("credit_balance - ?", amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientBalance
		}
		return tx.Create(res).Error
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *creditRepository) Commit(ctx context.Context, reservationID string) error {
	return r.resolve(ctx, reservationID, models.ReservationCommitted, false)
}

func (r *creditRepository) Release(ctx context.Context, reservationID string) error {
	return r.resolve(ctx, reservationID, models.ReservationReleased, true)
}

// resolve moves a pending reservation to a terminal status. The status
// predicate makes it idempotent: a reservation that is already committed or
// released is left untouched and no refund is repeated.
func (r *creditRepository) resolve(ctx context.Context, reservationID, status string, refund bool) error {
	if reservationID == "" {
		return fmt.Errorf("reservation id is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.CreditReservation
		if err := tx.Where("id = ?", reservationID).Take(&res).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		upd := tx.Model(&models.CreditReservation{}).
			Where("id = ? AND status = ?", reservationID, models.ReservationPending).
			Update("status", status)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			// Already resolved earlier; nothing to do.
			return nil
		}
		if !refund {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", res.UserID).
			Update("credit_balance", gorm.Expr("credit_balance + ?", res.Amount)).Error
	})
}

func (r *creditRepository) Find(ctx context.Context, reservationID string) (*models.CreditReservation, error) {
	var res models.CreditReservation
	if err := r.db.WithContext(ctx).Where("id = ?", reservationID).Take(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *creditRepository) BalanceOf(ctx context.Context, userID uint) (int, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("credit_balance").Take(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.CreditBalance, nil
}

func (r *creditRepository) Grant(ctx context.Context, userID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("credit_balance", gorm.Expr("credit_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
