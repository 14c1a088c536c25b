package workflow

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// acquireRebuildLock serializes rebuilds per product across instances using
// MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the rebuild transaction.
func acquireRebuildLock(tx *gorm.DB, productId int) error {
	lockName := fmt.Sprintf("inv_rebuild:%d", productId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire rebuild lock for product_id=%d", productId)
	}
	return nil
}

func releaseRebuildLock(tx *gorm.DB, productId int) {
	lockName := fmt.Sprintf("inv_rebuild:%d", productId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

type RebuildResult struct {
	ProductId int             `json:"product_id"`
	Sku       string          `json:"sku"`
	OldStock  decimal.Decimal `json:"old_stock"`
	NewStock  decimal.Decimal `json:"new_stock"`
}

// RebuildProductStock recomputes a product's stock from the sum of its
// in-force movements and repairs any drift. Returns nil when the stock
// already matched.
func RebuildProductStock(ctx context.Context, db *gorm.DB, logger *logrus.Logger, productId int) (*RebuildResult, error) {

	var result *RebuildResult
	err := db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		if err := acquireRebuildLock(tx, productId); err != nil {
			return err
		}
		defer releaseRebuildLock(tx, productId)

		var product models.Product
		if err := tx.First(&product, productId).Error; err != nil {
			return err
		}

		var computed decimal.Decimal
		sql := `
SELECT
    COALESCE(SUM(CASE WHEN direction = 'IN' THEN qty ELSE -qty END), 0)
FROM
    stock_movements
WHERE
    product_id = ?;
`
		if err := tx.Raw(sql, productId).Scan(&computed).Error; err != nil {
			return err
		}

		if product.Stock.Equal(computed) {
			return nil
		}

		logger.WithFields(logrus.Fields{
			"product_id": productId,
			"sku":        product.Sku,
			"old_stock":  product.Stock.String(),
			"new_stock":  computed.String(),
		}).Warn("stock drift detected; repairing")

		if err := tx.Model(&models.Product{}).Where("id = ?", productId).
			Update("stock", computed).Error; err != nil {
			return err
		}
		result = &RebuildResult{
			ProductId: productId,
			Sku:       product.Sku,
			OldStock:  product.Stock,
			NewStock:  computed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RebuildAllProductStocks walks every product and repairs drift. Intended for
// the inventory-rebuild job, not the request path.
func RebuildAllProductStocks(ctx context.Context, db *gorm.DB, logger *logrus.Logger) ([]*RebuildResult, error) {

	if logger == nil {
		logger = config.GetLogger()
	}

	var productIds []int
	if err := db.WithContext(ctx).Model(&models.Product{}).Order("id").
		Pluck("id", &productIds).Error; err != nil {
		return nil, err
	}

	repaired := make([]*RebuildResult, 0)
	for _, id := range productIds {
		result, err := RebuildProductStock(ctx, db, logger, id)
		if err != nil {
			return repaired, fmt.Errorf("rebuild product %d: %w", id, err)
		}
		if result != nil {
			repaired = append(repaired, result)
		}
	}
	return repaired, nil
}
