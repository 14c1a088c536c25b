package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Purchase struct {
	ID             int              `gorm:"primary_key" json:"id"`
	InvoiceNo      string           `gorm:"uniqueIndex;size:50;not null" json:"invoice_no"`
	VendorId       int              `gorm:"index;not null" json:"vendor_id"`
	BranchId       int              `gorm:"index;not null;default:0" json:"branch_id"`
	UserId         int              `gorm:"not null;default:0" json:"user_id"`
	Status         PurchaseStatus   `gorm:"type:enum('OPEN','POSTED','CANCELLED');default:'OPEN'" json:"status"`
	PurchaseDate   time.Time        `gorm:"index;not null" json:"purchase_date"`
	Notes          string           `gorm:"type:text" json:"notes"`
	SubTotal       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	DiscountTotal  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"discount_total"`
	TaxTotal       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"tax_total"`
	ShippingCharge decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"shipping_charge"`
	GrandTotal     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"grand_total"`
	Details        []PurchaseDetail `gorm:"foreignKey:PurchaseId" json:"details"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseDetail struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PurchaseId     int             `gorm:"index;not null" json:"purchase_id"`
	ProductId      int             `gorm:"index;not null" json:"product_id"`
	ProductName    string          `gorm:"size:100" json:"product_name"`
	Qty            decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	Discount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	DiscountType   DiscountType    `gorm:"type:enum('P','A');default:'A'" json:"discount_type"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	BatchNumber    string          `gorm:"size:100" json:"batch_number"`
	ExpiryDate     *time.Time      `json:"expiry_date"`
}

type NewPurchase struct {
	VendorId       int                 `json:"vendor" binding:"required"`
	BranchId       int                 `json:"branch_id"`
	PurchaseDate   *time.Time          `json:"purchase_date"`
	Notes          string              `json:"notes"`
	ShippingCharge decimal.Decimal     `json:"shipping_charge"`
	Items          []NewPurchaseDetail `json:"items" binding:"required,min=1,dive"`
}

type NewPurchaseDetail struct {
	ProductId    int              `json:"product" binding:"required"`
	Qty          decimal.Decimal  `json:"qty" binding:"required"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	Discount     decimal.Decimal  `json:"discount"`
	DiscountType DiscountType     `json:"discount_type"`
	TaxRate      *decimal.Decimal `json:"tax_rate"`
	BatchNumber  string           `json:"batch_number"`
	ExpiryDate   *time.Time       `json:"expiry_date"`
}

var ErrPurchaseNotOpen = errors.New("purchase is not open")

func (input *NewPurchase) validate(ctx context.Context) error {
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
	if err := utils.ValidateResourceId[Vendor](ctx, input.VendorId); err != nil {
		return errorNotFound("vendor")
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

func (input *NewPurchase) buildDetails(ctx context.Context) ([]PurchaseDetail, error) {
	db := config.GetDB()

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

	details := make([]PurchaseDetail, 0, len(input.Items))
	for _, item := range input.Items {
		product := productById[item.ProductId]
		if product == nil {
			return nil, utils.ErrorRecordNotFound
		}
		unitCost := product.CostPrice
		if item.UnitCost != nil {
			unitCost = *item.UnitCost
		}
		taxRate := product.TaxRate
		if item.TaxRate != nil {
			taxRate = *item.TaxRate
		}
		discountType := item.DiscountType
		if discountType == "" {
			discountType = DiscountTypeAbsolute
		}
		discountAmount, taxAmount, totalAmount := calculateLineAmounts(item.Qty, unitCost, item.Discount, discountType, taxRate)
		details = append(details, PurchaseDetail{
			ProductId:      item.ProductId,
			ProductName:    product.Name,
			Qty:            item.Qty,
			UnitCost:       unitCost,
			Discount:       item.Discount,
			DiscountType:   discountType,
			DiscountAmount: discountAmount,
			TaxRate:        taxRate,
			TaxAmount:      taxAmount,
			TotalAmount:    totalAmount,
		})
	}
	return details, nil
}

func purchaseTotals(details []PurchaseDetail, shipping decimal.Decimal) (subTotal, discountTotal, taxTotal, grandTotal decimal.Decimal) {
	for _, d := range details {
		subTotal = subTotal.Add(d.Qty.Mul(d.UnitCost))
		discountTotal = discountTotal.Add(d.DiscountAmount)
		taxTotal = taxTotal.Add(d.TaxAmount)
	}
	grandTotal = subTotal.Sub(discountTotal).Add(taxTotal).Add(shipping)
	return subTotal, discountTotal, taxTotal, grandTotal
}

// CreatePurchase records the order with no stock effect; stock enters on
// confirmation.
func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	details, err := input.buildDetails(ctx)
	if err != nil {
		return nil, err
	}
	subTotal, discountTotal, taxTotal, grandTotal := purchaseTotals(details, input.ShippingCharge)

	purchaseDate := time.Now()
	if input.PurchaseDate != nil {
		purchaseDate = *input.PurchaseDate
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	purchase := Purchase{
		VendorId:       input.VendorId,
		BranchId:       input.BranchId,
		UserId:         userId,
		Status:         PurchaseStatusOpen,
		PurchaseDate:   purchaseDate,
		Notes:          input.Notes,
		SubTotal:       subTotal,
		DiscountTotal:  discountTotal,
		TaxTotal:       taxTotal,
		ShippingCharge: input.ShippingCharge,
		GrandTotal:     grandTotal,
		Details:        details,
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)
		invoiceNo, err := nextTransactionNumber(tx, "PURCHASE", "PO")
		if err != nil {
			return err
		}
		purchase.InvoiceNo = invoiceNo
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, err
	}
	return GetPurchase(ctx, purchase.ID)
}

// UpdatePurchase replaces the line items of an OPEN purchase.
func UpdatePurchase(ctx context.Context, id int, input *NewPurchase) (*Purchase, error) {

	purchase, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase.Status != PurchaseStatusOpen {
		return nil, ErrPurchaseNotOpen
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	details, err := input.buildDetails(ctx)
	if err != nil {
		return nil, err
	}
	subTotal, discountTotal, taxTotal, grandTotal := purchaseTotals(details, input.ShippingCharge)

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		// Guard against a concurrent confirm.
		res := tx.Model(&Purchase{}).
			Where("id = ? AND status = ?", id, PurchaseStatusOpen).
			Updates(map[string]interface{}{
				"VendorId":       input.VendorId,
				"BranchId":       input.BranchId,
				"Notes":          input.Notes,
				"SubTotal":       subTotal,
				"DiscountTotal":  discountTotal,
				"TaxTotal":       taxTotal,
				"ShippingCharge": input.ShippingCharge,
				"GrandTotal":     grandTotal,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPurchaseNotOpen
		}

		if err := tx.Where("purchase_id = ?", id).Delete(&PurchaseDetail{}).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].PurchaseId = id
		}
		return tx.Create(&details).Error
	})
	if err != nil {
		return nil, err
	}
	return GetPurchase(ctx, id)
}

// ConfirmPurchase posts an OPEN purchase: in one transaction the status flips
// to POSTED, every line receives stock with an IN movement, product cost is
// refreshed from the line cost, and the ledger rows are written. This used to
// be driven line-by-line from the client, which could leave a POSTED purchase
// only partially stocked.
func ConfirmPurchase(ctx context.Context, id int) (*Purchase, error) {

	purchase, err := utils.FetchModel[Purchase](ctx, id, "Details")
	if err != nil {
		return nil, err
	}

	productIds := make([]int, 0, len(purchase.Details))
	for _, d := range purchase.Details {
		productIds = append(productIds, d.ProductId)
	}
	for _, release := range lockProducts(ctx, productIds, "purchase.go", "ConfirmPurchase") {
		defer release()
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		res := tx.Model(&Purchase{}).
			Where("id = ? AND status = ?", id, PurchaseStatusOpen).
			Update("status", PurchaseStatusPosted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPurchaseNotOpen
		}

		// The flip holds the row lock UpdatePurchase contends on, so the
		// lines read here are exactly the lines the stored document carries.
		// Posting the pre-transaction snapshot could receive stock for a line
		// set a concurrent edit already replaced.
		var current Purchase
		if err := tx.Preload("Details").First(&current, id).Error; err != nil {
			return err
		}

		for _, d := range current.Details {
			_, err := applyStockChange(tx, stockChange{
				ProductId:     d.ProductId,
				BranchId:      current.BranchId,
				Direction:     MovementDirectionIn,
				Reason:        MovementReasonPurchase,
				Qty:           d.Qty,
				ReferenceType: MovementReferencePurchase,
				ReferenceId:   current.ID,
				Notes:         fmt.Sprintf("receipt of %s", current.InvoiceNo),
				MovementDate:  current.PurchaseDate,
			})
			if err != nil {
				return err
			}
			// Latest landed cost becomes the product cost.
			if err := tx.Model(&Product{}).Where("id = ?", d.ProductId).
				Update("cost_price", d.UnitCost).Error; err != nil {
				return err
			}
		}

		return postPurchaseLedger(tx, &current)
	})
	if err != nil {
		return nil, err
	}
	return GetPurchase(ctx, id)
}

// CancelPurchase marks an OPEN purchase CANCELLED. Posted purchases must be
// deleted (which reverses their stock) instead.
func CancelPurchase(ctx context.Context, id int) (*Purchase, error) {

	if _, err := utils.FetchModel[Purchase](ctx, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	res := db.WithContext(ctx).Model(&Purchase{}).
		Where("id = ? AND status = ?", id, PurchaseStatusOpen).
		Update("status", PurchaseStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPurchaseNotOpen
	}
	return GetPurchase(ctx, id)
}

// DeletePurchase removes the document; a POSTED purchase first has its
// receipt reversed, which can fail with InsufficientStock when the received
// goods were already sold.
func DeletePurchase(ctx context.Context, id int) (*Purchase, error) {

	purchase, err := utils.FetchModel[Purchase](ctx, id, "Details")
	if err != nil {
		return nil, err
	}

	productIds := make([]int, 0, len(purchase.Details))
	for _, d := range purchase.Details {
		productIds = append(productIds, d.ProductId)
	}
	for _, release := range lockProducts(ctx, productIds, "purchase.go", "DeletePurchase") {
		defer release()
	}

	db := config.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		var current Purchase
		if err := tx.First(&current, id).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		res := tx.Delete(&Purchase{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrorRecordNotFound
		}

		if current.Status == PurchaseStatusPosted {
			if err := removeDocumentStockEffects(tx, MovementReferencePurchase, id, false); err != nil {
				return err
			}
			if err := tx.Where("reference_type = ? AND reference_id = ?", MovementReferencePurchase, id).
				Delete(&LedgerEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("purchase_id = ?", id).Delete(&PurchaseDetail{}).Error
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	return utils.FetchModel[Purchase](ctx, id, "Details")
}

type PurchaseFilter struct {
	VendorId *int
	Status   *PurchaseStatus
	From     *time.Time
	To       *time.Time
}

func GetPurchases(ctx context.Context, filter *PurchaseFilter) ([]*Purchase, error) {

	db := config.GetDB()
	var results []*Purchase

	dbCtx := db.WithContext(ctx).Preload("Details")
	if filter != nil {
		if filter.VendorId != nil && *filter.VendorId > 0 {
			dbCtx = dbCtx.Where("vendor_id = ?", *filter.VendorId)
		}
		if filter.Status != nil && *filter.Status != "" {
			dbCtx = dbCtx.Where("status = ?", *filter.Status)
		}
		if filter.From != nil {
			dbCtx = dbCtx.Where("purchase_date >= ?", *filter.From)
		}
		if filter.To != nil {
			dbCtx = dbCtx.Where("purchase_date <= ?", *filter.To)
		}
	}
	if err := dbCtx.Order("purchase_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
