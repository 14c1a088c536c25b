package models

import (
	"fmt"
	"time"

	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock commands are the only code allowed to touch Product.Stock.
//
// Every mutation is a single conditional UPDATE so that two concurrent
// operations on the same product can never both pass a stale "enough stock"
// check: the decrement carries its own `stock >= qty` predicate and the
// caller aborts the surrounding transaction when no row matched.

// AdjustProductStock applies a signed stock delta to one product.
// A decrement that would drive stock negative fails with
// *utils.InsufficientStockError and changes nothing.
func AdjustProductStock(tx *gorm.DB, productId int, delta decimal.Decimal) error {
	if tx == nil {
		return fmt.Errorf("tx is nil")
	}
	if delta.IsZero() {
		return nil
	}

	if delta.IsNegative() {
		qty := delta.Neg()
		res := tx.Model(&Product{}).
			Where("id = ? AND stock >= ?", productId, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Either the product is gone or the stock ran out; look to tell apart.
			var product Product
			if err := tx.Select("id", "name", "stock").First(&product, productId).Error; err != nil {
				return utils.ErrorRecordNotFound
			}
			return &utils.InsufficientStockError{
				ProductId:   product.ID,
				ProductName: product.Name,
				Requested:   qty,
				Available:   product.Stock,
			}
		}
		return nil
	}

	res := tx.Model(&Product{}).
		Where("id = ?", productId).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

type stockChange struct {
	ProductId     int
	BranchId      int
	Direction     MovementDirection
	Reason        MovementReason
	Qty           decimal.Decimal
	ReferenceType MovementReferenceType
	ReferenceId   int
	Notes         string
	MovementDate  time.Time
}

func (c stockChange) signedDelta() decimal.Decimal {
	if c.Direction == MovementDirectionOut {
		return c.Qty.Neg()
	}
	return c.Qty
}

// applyStockChange adjusts the product counter and records the movement row
// with before/after snapshots, all on the caller's transaction.
func applyStockChange(tx *gorm.DB, change stockChange) (*StockMovement, error) {
	if !change.Qty.GreaterThan(decimal.Zero) {
		return nil, errorValidation("movement qty must be positive")
	}

	delta := change.signedDelta()
	if err := AdjustProductStock(tx, change.ProductId, delta); err != nil {
		return nil, err
	}

	var afterQty decimal.Decimal
	if err := tx.Model(&Product{}).Where("id = ?", change.ProductId).
		Select("stock").Scan(&afterQty).Error; err != nil {
		return nil, err
	}

	movementDate := change.MovementDate
	if movementDate.IsZero() {
		movementDate = time.Now()
	}

	movement := StockMovement{
		ProductId:     change.ProductId,
		BranchId:      change.BranchId,
		Direction:     change.Direction,
		Reason:        change.Reason,
		Qty:           change.Qty,
		BeforeQty:     afterQty.Sub(delta),
		AfterQty:      afterQty,
		ReferenceType: change.ReferenceType,
		ReferenceId:   change.ReferenceId,
		Notes:         change.Notes,
		MovementDate:  movementDate,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// reverseStockMovement undoes one movement's effect and removes the row.
// Reversing an IN can fail with InsufficientStock; when skipMissingProduct is
// set a vanished product is tolerated (the row is still removed).
func reverseStockMovement(tx *gorm.DB, movement *StockMovement, skipMissingProduct bool) error {
	delta := movement.Qty
	if movement.Direction == MovementDirectionIn {
		delta = delta.Neg()
	}
	if err := AdjustProductStock(tx, movement.ProductId, delta); err != nil {
		if !(skipMissingProduct && err == utils.ErrorRecordNotFound) {
			return err
		}
	}
	return tx.Delete(&StockMovement{}, movement.ID).Error
}

// removeDocumentStockEffects reverses and deletes every movement written by a
// sale or purchase document. Used when the document itself is deleted.
func removeDocumentStockEffects(tx *gorm.DB, referenceType MovementReferenceType, referenceId int, skipMissingProduct bool) error {
	var movements []*StockMovement
	if err := tx.Where("reference_type = ? AND reference_id = ?", referenceType, referenceId).
		Find(&movements).Error; err != nil {
		return err
	}
	for _, movement := range movements {
		if err := reverseStockMovement(tx, movement, skipMissingProduct); err != nil {
			return err
		}
	}
	return nil
}
