package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovement struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	ProductId     int                   `gorm:"index;not null" json:"product_id"`
	BranchId      int                   `gorm:"index;not null;default:0" json:"branch_id"`
	Direction     MovementDirection     `gorm:"type:enum('IN','OUT');not null" json:"direction"`
	Reason        MovementReason        `gorm:"type:enum('PURCHASE','SALE','RETURN_IN','RETURN_OUT','ADJUSTMENT','TRANSFER_IN','TRANSFER_OUT','DAMAGE');not null" json:"reason"`
	Qty           decimal.Decimal       `gorm:"type:decimal(20,4);not null" json:"qty"`
	BeforeQty     decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"before_qty"`
	AfterQty      decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"after_qty"`
	ReferenceType MovementReferenceType `gorm:"type:enum('SALE','PURCHASE','MANUAL');default:'MANUAL';index:idx_movement_reference" json:"reference_type"`
	ReferenceId   int                   `gorm:"default:0;index:idx_movement_reference" json:"reference_id"`
	Notes         string                `gorm:"type:text" json:"notes"`
	MovementDate  time.Time             `gorm:"not null" json:"movement_date"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockMovement struct {
	ProductId    int               `json:"product_id" binding:"required"`
	BranchId     int               `json:"branch_id"`
	Direction    MovementDirection `json:"direction" binding:"required,oneof=IN OUT"`
	Reason       MovementReason    `json:"reason" binding:"required"`
	Qty          decimal.Decimal   `json:"qty" binding:"required"`
	Notes        string            `json:"notes"`
	MovementDate *time.Time        `json:"movement_date"`
}

// UpdateStockMovementInput carries the editable fields. Product and direction
// are immutable; a quantity edit applies only the difference to stock.
type UpdateStockMovementInput struct {
	Qty    *decimal.Decimal `json:"quantity"`
	Reason *MovementReason  `json:"reason"`
	Notes  *string          `json:"notes"`
}

var ErrMovementManaged = errors.New("stock movement is managed by its sale/purchase document")

func (input *NewStockMovement) validate(ctx context.Context) error {
	if !input.Qty.GreaterThan(decimal.Zero) {
		return errorValidation("qty must be greater than zero")
	}
	if !ValidMovementReason(input.Reason) {
		return errorValidation("invalid movement reason")
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return errorNotFound("product")
	}
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
			return errorNotFound("branch")
		}
	}
	return nil
}

func CreateStockMovement(ctx context.Context, input *NewStockMovement) (*StockMovement, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	release := utils.StockLock(ctx, input.ProductId, "stockMovement.go", "CreateStockMovement")
	defer release()

	movementDate := time.Now()
	if input.MovementDate != nil {
		movementDate = *input.MovementDate
	}

	var movement *StockMovement
	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		movement, err = applyStockChange(tx.WithContext(ctx), stockChange{
			ProductId:     input.ProductId,
			BranchId:      input.BranchId,
			Direction:     input.Direction,
			Reason:        input.Reason,
			Qty:           input.Qty,
			ReferenceType: MovementReferenceManual,
			Notes:         input.Notes,
			MovementDate:  movementDate,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func UpdateStockMovement(ctx context.Context, id int, input *UpdateStockMovementInput) (*StockMovement, error) {

	movement, err := utils.FetchModel[StockMovement](ctx, id)
	if err != nil {
		return nil, err
	}
	if movement.ReferenceType != MovementReferenceManual {
		return nil, ErrMovementManaged
	}
	if input.Reason != nil && !ValidMovementReason(*input.Reason) {
		return nil, errorValidation("invalid movement reason")
	}
	if input.Qty != nil && !input.Qty.GreaterThan(decimal.Zero) {
		return nil, errorValidation("qty must be greater than zero")
	}

	release := utils.StockLock(ctx, movement.ProductId, "stockMovement.go", "UpdateStockMovement")
	defer release()

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		updates := map[string]interface{}{}

		if input.Qty != nil && !input.Qty.Equal(movement.Qty) {
			// Apply only the difference, in the movement's direction.
			diff := input.Qty.Sub(movement.Qty)
			delta := diff
			if movement.Direction == MovementDirectionOut {
				delta = diff.Neg()
			}
			if err := AdjustProductStock(tx, movement.ProductId, delta); err != nil {
				return err
			}
			movement.Qty = *input.Qty
			movement.AfterQty = movement.AfterQty.Add(delta)
			updates["Qty"] = movement.Qty
			updates["AfterQty"] = movement.AfterQty
		}
		if input.Reason != nil {
			movement.Reason = *input.Reason
			updates["Reason"] = movement.Reason
		}
		if input.Notes != nil {
			movement.Notes = *input.Notes
			updates["Notes"] = movement.Notes
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(movement).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func DeleteStockMovement(ctx context.Context, id int) (*StockMovement, error) {

	movement, err := utils.FetchModel[StockMovement](ctx, id)
	if err != nil {
		return nil, err
	}
	if movement.ReferenceType != MovementReferenceManual {
		return nil, ErrMovementManaged
	}

	release := utils.StockLock(ctx, movement.ProductId, "stockMovement.go", "DeleteStockMovement")
	defer release()

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		// Re-fetch inside the transaction so a concurrent delete 404s instead
		// of reversing twice.
		var current StockMovement
		if err := tx.First(&current, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		return reverseStockMovement(tx, &current, false)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func GetStockMovement(ctx context.Context, id int) (*StockMovement, error) {
	return utils.FetchModel[StockMovement](ctx, id)
}

type StockMovementFilter struct {
	ProductId *int
	Reason    *MovementReason
	From      *time.Time
	To        *time.Time
}

func GetStockMovements(ctx context.Context, filter *StockMovementFilter) ([]*StockMovement, error) {

	db := config.GetDB()
	var results []*StockMovement

	dbCtx := db.WithContext(ctx)
	if filter != nil {
		if filter.ProductId != nil && *filter.ProductId > 0 {
			dbCtx = dbCtx.Where("product_id = ?", *filter.ProductId)
		}
		if filter.Reason != nil && *filter.Reason != "" {
			dbCtx = dbCtx.Where("reason = ?", *filter.Reason)
		}
		if filter.From != nil {
			dbCtx = dbCtx.Where("movement_date >= ?", *filter.From)
		}
		if filter.To != nil {
			dbCtx = dbCtx.Where("movement_date <= ?", *filter.To)
		}
	}
	if err := dbCtx.Order("movement_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
