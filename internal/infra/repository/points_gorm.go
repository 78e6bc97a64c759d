package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/cutclub/cutclub-backend/internal/httperr"
	"github.com/cutclub/cutclub-backend/internal/models"
)

// --------------------------------------------------
// Points ledger
// --------------------------------------------------

func (r *BookingGormRepository) Balance(
	ctx context.Context,
	clientID uint,
) (int64, error) {

	var balance int64
	if err := r.db.WithContext(ctx).
		Model(&models.PointsEntry{}).
		Where("client_id = ?", clientID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&balance).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *BookingGormRepository) Credit(
	ctx context.Context,
	clientID uint,
	amount int64,
	reason string,
	refType string,
	refID string,
) error {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PointsEntry{}).
		Where(
			"reason = ? AND ref_type = ? AND ref_id = ?",
			reason, refType, refID,
		).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	entry := models.PointsEntry{
		ClientID: clientID,
		Delta:    amount,
		Reason:   reason,
		RefType:  refType,
		RefID:    refID,
	}

	err := r.db.WithContext(ctx).Create(&entry).Error
	if httperr.IsUniqueViolation(err) {
		// A concurrent delivery won the race; the credit exists.
		return nil
	}
	return err
}

// Debit must run inside WithTx: the client row lock serializes concurrent
// debits so the balance read stays authoritative until commit.
func (r *BookingGormRepository) Debit(
	ctx context.Context,
	clientID uint,
	amount int64,
	reason string,
	refType string,
	refID string,
) error {

	var u models.User
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, clientID).Error; err != nil {
		return err
	}

	balance, err := r.Balance(ctx, clientID)
	if err != nil {
		return err
	}

	if balance < amount {
		return httperr.ErrBusiness("insufficient_balance")
	}

	entry := models.PointsEntry{
		ClientID: clientID,
		Delta:    -amount,
		Reason:   reason,
		RefType:  refType,
		RefID:    refID,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *BookingGormRepository) Entries(
	ctx context.Context,
	clientID uint,
) ([]models.PointsEntry, error) {

	var entries []models.PointsEntry
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
