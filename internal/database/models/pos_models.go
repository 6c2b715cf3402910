package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TableState string

const (
	TableFree     TableState = "free"
	TableOccupied TableState = "occupied"
	// TablePaid is a display label: the order is settled but the table has
	// not been released yet.
	TablePaid TableState = "paid"
)

type OrderState string

const (
	OrderPending   OrderState = "pending"
	OrderDelivered OrderState = "delivered"
	OrderPaid      OrderState = "paid"
)

func ParseOrderState(s string) (OrderState, bool) {
	switch OrderState(s) {
	case OrderPending, OrderDelivered, OrderPaid:
		return OrderState(s), true
	}
	return "", false
}

// IsOpen reports whether lines may still be added or removed.
func (s OrderState) IsOpen() bool {
	return s == OrderPending || s == OrderDelivered
}

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentNequi     PaymentMethod = "nequi"
	PaymentDaviplata PaymentMethod = "daviplata"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentNequi, PaymentDaviplata:
		return PaymentMethod(s), true
	}
	return "", false
}

type Branch struct {
	ID         int32     `gorm:"primaryKey;autoIncrement" json:"id"`
	BranchName string    `gorm:"type:varchar(128);not null" json:"branch_name"`
	Address    string    `gorm:"type:varchar(255)" json:"address"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DiningTable struct {
	ID          int32      `gorm:"primaryKey;autoIncrement" json:"id"`
	BranchID    int32      `gorm:"not null;uniqueIndex:idx_branch_table_number" json:"branch_id"`
	TableNumber int32      `gorm:"not null;uniqueIndex:idx_branch_table_number" json:"table_number"`
	State       TableState `gorm:"type:varchar(16);not null;default:'free'" json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (DiningTable) TableName() string { return "dining_tables" }

type Product struct {
	ID          int32           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductCode string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"product_code"`
	ProductName string          `gorm:"type:varchar(128);not null" json:"product_name"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"sale_price"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Order struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TableID   int32           `gorm:"index;not null" json:"table_id"`
	State     OrderState      `gorm:"type:varchar(16);not null;index" json:"state"`
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	OpenedBy  int64           `gorm:"not null" json:"opened_by"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines"`
}

type OrderLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	ProductID int32           `gorm:"not null" json:"product_id"`
	Quantity  int32           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	CreatedBy int64           `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity))
}

type Payment struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method    PaymentMethod   `gorm:"type:varchar(16);not null" json:"method"`
	Reference *string         `gorm:"type:varchar(100)" json:"reference,omitempty"`
	CreatedBy int64           `gorm:"not null" json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}
