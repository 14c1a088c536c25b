package models

import (
	"context"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Name         string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Description  string          `gorm:"type:text" json:"description"`
	CategoryId   int             `gorm:"index;not null;default:0" json:"category_id"`
	VendorId     int             `gorm:"index;not null;default:0" json:"vendor_id"`
	Sku          string          `gorm:"size:100;not null" json:"sku" binding:"required"`
	Barcode      string          `gorm:"index;size:100;not null" json:"barcode" binding:"required"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	Stock        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"reorder_level"`
	ImageUrl     string          `json:"image_url"`
	ThumbnailUrl string          `json:"thumbnail_url"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	CategoryId   int             `json:"category_id"`
	VendorId     int             `json:"vendor_id"`
	Sku          string          `json:"sku" binding:"required"`
	Barcode      string          `json:"barcode" binding:"required"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	OpeningStock decimal.Decimal `json:"opening_stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

type ProductFilter struct {
	Name       *string
	Sku        *string
	Barcode    *string
	CategoryId *int
	LowStock   bool
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Product](ctx, "sku", input.Sku, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Product](ctx, "barcode", input.Barcode, id); err != nil {
		return err
	}
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, input.CategoryId); err != nil {
			return errorNotFound("category")
		}
	}
	if input.VendorId > 0 {
		if err := utils.ValidateResourceId[Vendor](ctx, input.VendorId); err != nil {
			return errorNotFound("vendor")
		}
	}
	if input.CostPrice.IsNegative() || input.SalePrice.IsNegative() || input.TaxRate.IsNegative() {
		return errorNegativeAmount("price")
	}
	if input.OpeningStock.IsNegative() || input.ReorderLevel.IsNegative() {
		return errorNegativeAmount("stock")
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		Name:         input.Name,
		Description:  input.Description,
		CategoryId:   input.CategoryId,
		VendorId:     input.VendorId,
		Sku:          input.Sku,
		Barcode:      input.Barcode,
		CostPrice:    input.CostPrice,
		SalePrice:    input.SalePrice,
		TaxRate:      input.TaxRate,
		ReorderLevel: input.ReorderLevel,
		IsActive:     utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
		// Opening stock enters through the movement ledger like every other
		// stock change; the product row starts at zero.
		if input.OpeningStock.GreaterThan(decimal.Zero) {
			_, err := applyStockChange(tx.WithContext(ctx), stockChange{
				ProductId:     product.ID,
				Direction:     MovementDirectionIn,
				Reason:        MovementReasonAdjustment,
				Qty:           input.OpeningStock,
				ReferenceType: MovementReferenceManual,
				Notes:         "opening stock",
				MovementDate:  time.Now(),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return utils.FetchModel[Product](ctx, product.ID)
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	// Stock is deliberately absent here: it only moves through sales,
	// purchases and stock movements.
	db := config.GetDB()
	err = db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Description":  input.Description,
		"CategoryId":   input.CategoryId,
		"VendorId":     input.VendorId,
		"Sku":          input.Sku,
		"Barcode":      input.Barcode,
		"CostPrice":    input.CostPrice,
		"SalePrice":    input.SalePrice,
		"TaxRate":      input.TaxRate,
		"ReorderLevel": input.ReorderLevel,
	}).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[SaleDetail](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errorInUse("product", "sale")
	}
	count, err = utils.ResourceCountWhere[PurchaseDetail](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errorInUse("product", "purchase")
	}
	count, err = utils.ResourceCountWhere[StockMovement](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errorInUse("product", "stock movement")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProducts(ctx context.Context, filter *ProductFilter) ([]*Product, error) {

	db := config.GetDB()
	var results []*Product

	dbCtx := db.WithContext(ctx)
	if filter != nil {
		if filter.Name != nil && len(*filter.Name) > 0 {
			dbCtx = dbCtx.Where("name LIKE ?", "%"+*filter.Name+"%")
		}
		if filter.Sku != nil && len(*filter.Sku) > 0 {
			dbCtx = dbCtx.Where("sku = ?", *filter.Sku)
		}
		if filter.Barcode != nil && len(*filter.Barcode) > 0 {
			dbCtx = dbCtx.Where("barcode = ?", *filter.Barcode)
		}
		if filter.CategoryId != nil && *filter.CategoryId > 0 {
			dbCtx = dbCtx.Where("category_id = ?", *filter.CategoryId)
		}
		if filter.LowStock {
			dbCtx = dbCtx.Where("stock <= reorder_level")
		}
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"is_active": isActive,
	}).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[Product](ctx, id)
}

// SetProductImage records the stored image locations after an upload.
func SetProductImage(ctx context.Context, id int, imageUrl string, thumbnailUrl string) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(map[string]interface{}{
		"ImageUrl":     imageUrl,
		"ThumbnailUrl": thumbnailUrl,
	}).Error; err != nil {
		return nil, err
	}
	return product, nil
}
