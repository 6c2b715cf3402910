package models

import "time"

type MovementKind string

const (
	MovementPurchase   MovementKind = "purchase"
	MovementSale       MovementKind = "sale"
	MovementAdjustment MovementKind = "adjustment"
	MovementTransfer   MovementKind = "transfer"
)

type InventoryRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID      int32     `gorm:"not null;uniqueIndex:idx_inventory_product_branch" json:"product_id"`
	BranchID       int32     `gorm:"not null;uniqueIndex:idx_inventory_product_branch" json:"branch_id"`
	Quantity       int32     `gorm:"not null;default:0" json:"quantity"`
	AlertThreshold int32     `gorm:"not null;default:0" json:"alert_threshold"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (r InventoryRecord) IsLowStock() bool {
	return r.Quantity <= r.AlertThreshold
}

// StockMovement rows are append-only.
type StockMovement struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int32        `gorm:"index:idx_movement_product_branch;not null" json:"product_id"`
	BranchID  int32        `gorm:"index:idx_movement_product_branch;not null" json:"branch_id"`
	Delta     int32        `gorm:"not null" json:"delta"`
	Kind      MovementKind `gorm:"type:varchar(16);not null" json:"kind"`
	Reference *string      `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	CreatedBy *int64       `json:"created_by,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
