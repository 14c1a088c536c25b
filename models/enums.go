package models

type UserRole string

const (
	UserRoleAdmin          UserRole = "Admin"
	UserRoleManager        UserRole = "Manager"
	UserRoleAccountant     UserRole = "Accountant"
	UserRoleCashier        UserRole = "Cashier"
	UserRoleWarehouseStaff UserRole = "Warehouse Staff"
)

func ValidUserRole(role UserRole) bool {
	switch role {
	case UserRoleAdmin, UserRoleManager, UserRoleAccountant, UserRoleCashier, UserRoleWarehouseStaff:
		return true
	}
	return false
}

type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "IN"
	MovementDirectionOut MovementDirection = "OUT"
)

type MovementReason string

const (
	MovementReasonPurchase    MovementReason = "PURCHASE"
	MovementReasonSale        MovementReason = "SALE"
	MovementReasonReturnIn    MovementReason = "RETURN_IN"
	MovementReasonReturnOut   MovementReason = "RETURN_OUT"
	MovementReasonAdjustment  MovementReason = "ADJUSTMENT"
	MovementReasonTransferIn  MovementReason = "TRANSFER_IN"
	MovementReasonTransferOut MovementReason = "TRANSFER_OUT"
	MovementReasonDamage      MovementReason = "DAMAGE"
)

func ValidMovementReason(reason MovementReason) bool {
	switch reason {
	case MovementReasonPurchase, MovementReasonSale, MovementReasonReturnIn,
		MovementReasonReturnOut, MovementReasonAdjustment, MovementReasonTransferIn,
		MovementReasonTransferOut, MovementReasonDamage:
		return true
	}
	return false
}

// MovementReferenceType identifies what created a stock movement.
// MANUAL rows are user-managed; SALE/PURCHASE rows belong to their document
// and are only written or removed together with it.
type MovementReferenceType string

const (
	MovementReferenceSale     MovementReferenceType = "SALE"
	MovementReferencePurchase MovementReferenceType = "PURCHASE"
	MovementReferenceManual   MovementReferenceType = "MANUAL"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodMobile PaymentMethod = "MOBILE"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodCredit:
		return true
	}
	return false
}

type SaleStatus string

const (
	// A sale's stock and ledger effects are applied at creation.
	SaleStatusPosted SaleStatus = "POSTED"
)

type PurchaseStatus string

const (
	PurchaseStatusOpen      PurchaseStatus = "OPEN"
	PurchaseStatusPosted    PurchaseStatus = "POSTED"
	PurchaseStatusCancelled PurchaseStatus = "CANCELLED"
)

type DiscountType string

const (
	DiscountTypePercent  DiscountType = "P"
	DiscountTypeAbsolute DiscountType = "A"
)

type AccountType string

const (
	AccountTypeSales      AccountType = "SALES"
	AccountTypePurchases  AccountType = "PURCHASES"
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeReceivable AccountType = "RECEIVABLE"
	AccountTypePayable    AccountType = "PAYABLE"
	AccountTypeExpense    AccountType = "EXPENSE"
	AccountTypeTax        AccountType = "TAX"
)

func ValidAccountType(a AccountType) bool {
	switch a {
	case AccountTypeSales, AccountTypePurchases, AccountTypeCash, AccountTypeBank,
		AccountTypeReceivable, AccountTypePayable, AccountTypeExpense, AccountTypeTax:
		return true
	}
	return false
}
