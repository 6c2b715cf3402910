package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/database"
	"resto-system/internal/database/models"
	"resto-system/internal/events"
	"resto-system/internal/logger"
	"resto-system/internal/observability"
	"resto-system/internal/services/inventory"
)

// Service runs the table, order and payment operations of a point of sale.
// Every write goes through one database transaction.
type Service struct {
	coord   *database.Coordinator
	catalog database.Catalog
	ledger  *inventory.Ledger
	events  events.Publisher
	log     *zap.Logger
	tracer  trace.Tracer

	strictRelease bool
}

type Options struct {
	// StrictRelease rejects freeing a table that still has an unpaid order.
	StrictRelease bool
}

func NewService(
	coord *database.Coordinator,
	catalog database.Catalog,
	ledger *inventory.Ledger,
	publisher events.Publisher,
	log *zap.Logger,
	opts Options,
) *Service {
	return &Service{
		coord:         coord,
		catalog:       catalog,
		ledger:        ledger,
		events:        publisher,
		log:           log.Named("pos"),
		tracer:        observability.Tracer("resto-system/pos"),
		strictRelease: opts.StrictRelease,
	}
}

type LineView struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int32           `json:"product_id"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedBy int64           `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewLineView(l models.OrderLine) LineView {
	return LineView{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Subtotal:  l.Subtotal(),
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}

type OrderView struct {
	ID        int64             `json:"id"`
	TableID   int32             `json:"table_id"`
	State     models.OrderState `json:"state"`
	Total     decimal.Decimal   `json:"total"`
	OpenedBy  int64             `json:"opened_by"`
	PaidAt    *time.Time        `json:"paid_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Lines     []LineView        `json:"lines"`
}

func NewOrderView(o models.Order) OrderView {
	lines := make([]LineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, NewLineView(l))
	}
	return OrderView{
		ID:        o.ID,
		TableID:   o.TableID,
		State:     o.State,
		Total:     o.Total,
		OpenedBy:  o.OpenedBy,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Lines:     lines,
	}
}

func (s *Service) loadTable(tx *gorm.DB, tableID int32) (models.DiningTable, error) {
	var table models.DiningTable
	if err := tx.First(&table, tableID).Error; err != nil {
		return table, database.Classify(err, apperrors.ErrTableNotFound.WithMessagef("table %d not found", tableID))
	}
	return table, nil
}

// lockOrder loads the order and holds its row lock until tx ends, along with
// the table it is bound to.
func (s *Service) lockOrder(tx *gorm.DB, id auth.Identity, orderID int64) (models.Order, models.DiningTable, error) {
	var order models.Order
	var table models.DiningTable

	if err := database.ForUpdate(tx).First(&order, orderID).Error; err != nil {
		return order, table, database.Classify(err, apperrors.ErrOrderNotFound.WithMessagef("order %d not found", orderID))
	}
	table, err := s.loadTable(tx, order.TableID)
	if err != nil {
		return order, table, err
	}
	if err := auth.AuthorizeBranch(id, table.BranchID); err != nil {
		return order, table, err
	}
	return order, table, nil
}

func (s *Service) loadOrderView(db *gorm.DB, orderID int64) (OrderView, error) {
	var order models.Order
	err := db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).First(&order, orderID).Error
	if err != nil {
		return OrderView{}, database.Classify(err, apperrors.ErrOrderNotFound.WithMessagef("order %d not found", orderID))
	}
	return NewOrderView(order), nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		logger.WithTrace(ctx, s.log).Warn("failed to publish event",
			zap.String("event_type", e.EventType),
			zap.Error(err),
		)
	}
}

func (s *Service) fail(ctx context.Context, op string, err error, fields ...zap.Field) error {
	if apperrors.KindOf(err) == apperrors.KindUnexpected {
		logger.WithTrace(ctx, s.log).Error("pos operation failed",
			append(fields, zap.String("operation", op), zap.Error(err))...,
		)
	}
	return err
}
