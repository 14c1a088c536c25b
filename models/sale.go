package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Sale struct {
	ID             int             `gorm:"primary_key" json:"id"`
	InvoiceNo      string          `gorm:"uniqueIndex;size:50;not null" json:"invoice_no"`
	CustomerId     int             `gorm:"index;not null;default:0" json:"customer_id"`
	BranchId       int             `gorm:"index;not null;default:0" json:"branch_id"`
	UserId         int             `gorm:"not null;default:0" json:"user_id"`
	PaymentMethod  PaymentMethod   `gorm:"type:enum('CASH','CARD','MOBILE','CREDIT');default:'CASH'" json:"payment_method"`
	Status         SaleStatus      `gorm:"type:enum('POSTED');default:'POSTED'" json:"status"`
	SaleDate       time.Time       `gorm:"index;not null" json:"sale_date"`
	Notes          string          `gorm:"type:text" json:"notes"`
	SubTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountTotal  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_total"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_total"`
	ShippingCharge decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_charge"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	Details        []SaleDetail    `gorm:"foreignKey:SaleId" json:"details"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type SaleDetail struct {
	ID             int             `gorm:"primary_key" json:"id"`
	SaleId         int             `gorm:"index;not null" json:"sale_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	ProductName    string          `gorm:"size:100" json:"product_name"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	UnitCostAtSale decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost_at_sale"`
	Discount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	DiscountType   DiscountType    `gorm:"type:enum('P','A');default:'A'" json:"discount_type"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type NewSale struct {
	CustomerId     int             `json:"customer"`
	BranchId       int             `json:"branch_id"`
	PaymentMethod  PaymentMethod   `json:"payment_method" binding:"required"`
	SaleDate       *time.Time      `json:"sale_date"`
	Notes          string          `json:"notes"`
	ShippingCharge decimal.Decimal `json:"shipping_charge"`
	// Advisory unless STRICT_SALE_TOTALS is on; the server recomputes.
	GrandTotal *decimal.Decimal `json:"grand_total"`
	Items      []NewSaleDetail  `json:"items" binding:"required,min=1,dive"`
}

type NewSaleDetail struct {
	ProductId    int              `json:"product" binding:"required"`
	Qty          decimal.Decimal  `json:"qty" binding:"required"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType DiscountType     `json:"discount_type"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
}

func (input *NewSale) validate(ctx context.Context) error {
	if !ValidPaymentMethod(input.PaymentMethod) {
		return errorValidation("invalid payment method")
	}
	if input.ShippingCharge.IsNegative() {
		return errorNegativeAmount("shipping charge")
	}
	for _, item := range input.Items {
		if !item.Qty.GreaterThan(decimal.Zero) {
			return errorValidation("item qty must be greater than zero")
		}
		if item.Discount.IsNegative() {
			return errorNegativeAmount("discount")
		}
	}
	if input.CustomerId > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, input.CustomerId); err != nil {
			return errorNotFound("customer")
		}
	}
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
			return errorNotFound("branch")
		}
	}
	productIds := make([]int, 0, len(input.Items))
	for _, item := range input.Items {
		productIds = append(productIds, item.ProductId)
	}
	if err := utils.ValidateResourcesId[Product](ctx, productIds); err != nil {
		return errorNotFound("product")
	}
	return nil
}

// calculateLineAmounts fills the derived amounts of one detail line:
// discount resolved against qty*unitPrice, tax applied after discount.
func calculateLineAmounts(qty, unitPrice, discount decimal.Decimal, discountType DiscountType, taxRate decimal.Decimal) (discountAmount, taxAmount, totalAmount decimal.Decimal) {
	amount := qty.Mul(unitPrice)
	discountAmount = utils.CalculateDiscountAmount(amount, discount, string(discountType))
	totalAmount = amount.Sub(discountAmount)
	taxAmount = utils.CalculateTaxAmount(totalAmount, taxRate)
	return discountAmount, taxAmount, totalAmount
}

// calculateSaleTotals recomputes the header figures from the lines.
// grandTotal = subTotal - discountTotal + taxTotal + shipping.
func calculateSaleTotals(details []SaleDetail, shipping decimal.Decimal) (subTotal, discountTotal, taxTotal, grandTotal decimal.Decimal) {
	for _, d := range details {
		subTotal = subTotal.Add(d.Qty.Mul(d.UnitPrice))
		discountTotal = discountTotal.Add(d.DiscountAmount)
		taxTotal = taxTotal.Add(d.TaxAmount)
	}
	grandTotal = subTotal.Sub(discountTotal).Add(taxTotal).Add(shipping)
	return subTotal, discountTotal, taxTotal, grandTotal
}

func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	db := config.GetDB()

	// Pricing defaults come from the product catalog.
	productIds := make([]int, 0, len(input.Items))
	for _, item := range input.Items {
		productIds = append(productIds, item.ProductId)
	}
	var products []*Product
	if err := db.WithContext(ctx).Where("id IN ?", utils.UniqueSlice(productIds)).
		Find(&products).Error; err != nil {
		return nil, err
	}
	productById := make(map[int]*Product, len(products))
	for _, p := range products {
		productById[p.ID] = p
	}

	details := make([]SaleDetail, 0, len(input.Items))
	for _, item := range input.Items {
		product := productById[item.ProductId]
		if product == nil {
			return nil, utils.ErrorRecordNotFound
		}
		unitPrice := product.SalePrice
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		taxRate := product.TaxRate
		if item.TaxRate != nil {
			taxRate = *item.TaxRate
		}
		discountType := item.DiscountType
		if discountType == "" {
			discountType = DiscountTypeAbsolute
		}
		discountAmount, taxAmount, totalAmount := calculateLineAmounts(item.Qty, unitPrice, item.Discount, discountType, taxRate)
		details = append(details, SaleDetail{
			ProductId:      item.ProductId,
			ProductName:    product.Name,
			Qty:            item.Qty,
			UnitPrice:      unitPrice,
			UnitCostAtSale: product.CostPrice,
			Discount:       item.Discount,
			DiscountType:   discountType,
			DiscountAmount: discountAmount,
			TaxRate:        taxRate,
			TaxAmount:      taxAmount,
			TotalAmount:    totalAmount,
		})
	}

	subTotal, discountTotal, taxTotal, grandTotal := calculateSaleTotals(details, input.ShippingCharge)
	if config.StrictSaleTotalsValidation() && input.GrandTotal != nil && !input.GrandTotal.Equal(grandTotal) {
		return nil, fmt.Errorf("%w: grand total mismatch: client sent %s, server computed %s",
			utils.ErrorValidation, input.GrandTotal.String(), grandTotal.String())
	}

	saleDate := time.Now()
	if input.SaleDate != nil {
		saleDate = *input.SaleDate
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	sale := Sale{
		CustomerId:     input.CustomerId,
		BranchId:       input.BranchId,
		UserId:         userId,
		PaymentMethod:  input.PaymentMethod,
		Status:         SaleStatusPosted,
		SaleDate:       saleDate,
		Notes:          input.Notes,
		SubTotal:       subTotal,
		DiscountTotal:  discountTotal,
		TaxTotal:       taxTotal,
		ShippingCharge: input.ShippingCharge,
		GrandTotal:     grandTotal,
		Details:        details,
	}

	for _, release := range lockProducts(ctx, productIds, "sale.go", "CreateSale") {
		defer release()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		invoiceNo, err := nextTransactionNumber(tx, "SALE", "INV")
		if err != nil {
			return err
		}
		sale.InvoiceNo = invoiceNo

		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		// Decrement stock per line. Any shortage aborts the whole sale.
		for _, d := range sale.Details {
			_, err := applyStockChange(tx, stockChange{
				ProductId:     d.ProductId,
				BranchId:      sale.BranchId,
				Direction:     MovementDirectionOut,
				Reason:        MovementReasonSale,
				Qty:           d.Qty,
				ReferenceType: MovementReferenceSale,
				ReferenceId:   sale.ID,
				MovementDate:  sale.SaleDate,
			})
			if err != nil {
				return err
			}
		}

		return postSaleLedger(tx, &sale)
	})
	if err != nil {
		return nil, err
	}

	return GetSale(ctx, sale.ID)
}

// DeleteSale reverses the sale's stock effect and removes the document.
// The delete is a single terminal transition: a second call finds nothing and
// reports not-found instead of restoring stock twice.
func DeleteSale(ctx context.Context, id int) (*Sale, error) {

	sale, err := utils.FetchModel[Sale](ctx, id, "Details")
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		res := tx.Delete(&Sale{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrorRecordNotFound
		}

		// Restoring stock cannot fail; a product deleted since the sale was
		// posted is skipped.
		if err := removeDocumentStockEffects(tx, MovementReferenceSale, id, true); err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&SaleDetail{}).Error; err != nil {
			return err
		}
		return tx.Where("reference_type = ? AND reference_id = ?", MovementReferenceSale, id).
			Delete(&LedgerEntry{}).Error
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchModel[Sale](ctx, id, "Details")
}

type SaleFilter struct {
	CustomerId *int
	From       *time.Time
	To         *time.Time
}

func GetSales(ctx context.Context, filter *SaleFilter) ([]*Sale, error) {

	db := config.GetDB()
	var results []*Sale

	dbCtx := db.WithContext(ctx).Preload("Details")
	if filter != nil {
		if filter.CustomerId != nil && *filter.CustomerId > 0 {
			dbCtx = dbCtx.Where("customer_id = ?", *filter.CustomerId)
		}
		if filter.From != nil {
			dbCtx = dbCtx.Where("sale_date >= ?", *filter.From)
		}
		if filter.To != nil {
			dbCtx = dbCtx.Where("sale_date <= ?", *filter.To)
		}
	}
	if err := dbCtx.Order("sale_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// lockProducts takes the best-effort redis lock for each distinct product,
// in id order so two multi-line sales can't hold pieces of each other's set.
func lockProducts(ctx context.Context, productIds []int, moduleName string, functionName string) []func() {
	ids := utils.UniqueSlice(productIds)
	sort.Ints(ids)
	releases := make([]func(), 0, len(ids))
	for _, id := range ids {
		releases = append(releases, utils.StockLock(ctx, id, moduleName, functionName))
	}
	return releases
}
