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

type LedgerEntry struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	AccountType   AccountType           `gorm:"type:enum('SALES','PURCHASES','CASH','BANK','RECEIVABLE','PAYABLE','EXPENSE','TAX');not null" json:"account_type"`
	Debit         decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"debit"`
	Credit        decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"credit"`
	Description   string                `gorm:"size:255" json:"description"`
	EntryDate     time.Time             `gorm:"index;not null" json:"entry_date"`
	BranchId      int                   `gorm:"index;not null;default:0" json:"branch_id"`
	ReferenceType MovementReferenceType `gorm:"type:enum('SALE','PURCHASE','MANUAL');default:'MANUAL';index:idx_ledger_reference" json:"reference_type"`
	ReferenceId   int                   `gorm:"default:0;index:idx_ledger_reference" json:"reference_id"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLedgerEntry struct {
	AccountType AccountType     `json:"account_type" binding:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	EntryDate   *time.Time      `json:"entry_date"`
	BranchId    int             `json:"branch_id"`
}

var ErrLedgerEntryManaged = errors.New("ledger entry belongs to a document; manage the sale or purchase instead")

func (input *NewLedgerEntry) validate(ctx context.Context) error {
	if !ValidAccountType(input.AccountType) {
		return errorValidation("invalid account type")
	}
	if input.Debit.IsNegative() {
		return errorNegativeAmount("debit")
	}
	if input.Credit.IsNegative() {
		return errorNegativeAmount("credit")
	}
	if input.Debit.IsZero() && input.Credit.IsZero() {
		return errorValidation("debit and credit cannot both be zero")
	}
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, input.BranchId); err != nil {
			return errorNotFound("branch")
		}
	}
	return nil
}

// CreateLedgerEntry records a manual row. Document rows are written by
// postSaleLedger / postPurchaseLedger inside their posting transactions.
func CreateLedgerEntry(ctx context.Context, input *NewLedgerEntry) (*LedgerEntry, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	entryDate := time.Now()
	if input.EntryDate != nil {
		entryDate = *input.EntryDate
	}

	entry := LedgerEntry{
		AccountType:   input.AccountType,
		Debit:         input.Debit,
		Credit:        input.Credit,
		Description:   input.Description,
		EntryDate:     entryDate,
		BranchId:      input.BranchId,
		ReferenceType: MovementReferenceManual,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func DeleteLedgerEntry(ctx context.Context, id int) (*LedgerEntry, error) {

	entry, err := utils.FetchModel[LedgerEntry](ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.ReferenceType != MovementReferenceManual {
		return nil, ErrLedgerEntryManaged
	}

	db := config.GetDB()
	res := db.WithContext(ctx).Delete(&LedgerEntry{}, id)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return entry, nil
}

func GetLedgerEntry(ctx context.Context, id int) (*LedgerEntry, error) {
	return utils.FetchModel[LedgerEntry](ctx, id)
}

type LedgerFilter struct {
	AccountType *AccountType
	BranchId    *int
	From        *time.Time
	To          *time.Time
}

func GetLedgerEntries(ctx context.Context, filter *LedgerFilter) ([]*LedgerEntry, error) {

	db := config.GetDB()
	var results []*LedgerEntry

	dbCtx := db.WithContext(ctx)
	if filter != nil {
		if filter.AccountType != nil && *filter.AccountType != "" {
			dbCtx = dbCtx.Where("account_type = ?", *filter.AccountType)
		}
		if filter.BranchId != nil && *filter.BranchId > 0 {
			dbCtx = dbCtx.Where("branch_id = ?", *filter.BranchId)
		}
		if filter.From != nil {
			dbCtx = dbCtx.Where("entry_date >= ?", *filter.From)
		}
		if filter.To != nil {
			dbCtx = dbCtx.Where("entry_date <= ?", *filter.To)
		}
	}
	if err := dbCtx.Order("entry_date DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// postSaleLedger writes the journal for a posted sale on the caller's
// transaction: debit CASH (or RECEIVABLE for credit sales) for the grand
// total, credit SALES for the goods value, credit TAX for the collected tax.
func postSaleLedger(tx *gorm.DB, sale *Sale) error {

	debitAccount := AccountTypeCash
	if sale.PaymentMethod == PaymentMethodCredit {
		debitAccount = AccountTypeReceivable
	}

	entries := []LedgerEntry{
		{
			AccountType:   debitAccount,
			Debit:         sale.GrandTotal,
			Description:   fmt.Sprintf("sale %s", sale.InvoiceNo),
			EntryDate:     sale.SaleDate,
			BranchId:      sale.BranchId,
			ReferenceType: MovementReferenceSale,
			ReferenceId:   sale.ID,
		},
		{
			AccountType:   AccountTypeSales,
			Credit:        sale.GrandTotal.Sub(sale.TaxTotal),
			Description:   fmt.Sprintf("sale %s", sale.InvoiceNo),
			EntryDate:     sale.SaleDate,
			BranchId:      sale.BranchId,
			ReferenceType: MovementReferenceSale,
			ReferenceId:   sale.ID,
		},
	}
	if sale.TaxTotal.GreaterThan(decimal.Zero) {
		entries = append(entries, LedgerEntry{
			AccountType:   AccountTypeTax,
			Credit:        sale.TaxTotal,
			Description:   fmt.Sprintf("tax on sale %s", sale.InvoiceNo),
			EntryDate:     sale.SaleDate,
			BranchId:      sale.BranchId,
			ReferenceType: MovementReferenceSale,
			ReferenceId:   sale.ID,
		})
	}
	return tx.Create(&entries).Error
}

// postPurchaseLedger writes the journal for a confirmed purchase on the
// caller's transaction: debit PURCHASES, debit TAX for recoverable input tax,
// credit PAYABLE for the amount owed to the vendor.
func postPurchaseLedger(tx *gorm.DB, purchase *Purchase) error {

	entries := []LedgerEntry{
		{
			AccountType:   AccountTypePurchases,
			Debit:         purchase.GrandTotal.Sub(purchase.TaxTotal),
			Description:   fmt.Sprintf("purchase %s", purchase.InvoiceNo),
			EntryDate:     purchase.PurchaseDate,
			BranchId:      purchase.BranchId,
			ReferenceType: MovementReferencePurchase,
			ReferenceId:   purchase.ID,
		},
		{
			AccountType:   AccountTypePayable,
			Credit:        purchase.GrandTotal,
			Description:   fmt.Sprintf("purchase %s", purchase.InvoiceNo),
			EntryDate:     purchase.PurchaseDate,
			BranchId:      purchase.BranchId,
			ReferenceType: MovementReferencePurchase,
			ReferenceId:   purchase.ID,
		},
	}
	if purchase.TaxTotal.GreaterThan(decimal.Zero) {
		entries = append(entries, LedgerEntry{
			AccountType:   AccountTypeTax,
			Debit:         purchase.TaxTotal,
			Description:   fmt.Sprintf("tax on purchase %s", purchase.InvoiceNo),
			EntryDate:     purchase.PurchaseDate,
			BranchId:      purchase.BranchId,
			ReferenceType: MovementReferencePurchase,
			ReferenceId:   purchase.ID,
		})
	}
	return tx.Create(&entries).Error
}
