package inventory

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/database"
	"resto-system/internal/database/models"
	"resto-system/internal/events"
	"resto-system/internal/logger"
	"resto-system/internal/observability"
)

// Ledger owns per-(product, branch) stock and the append-only movement log.
type Ledger struct {
	coord   *database.Coordinator
	catalog database.Catalog
	events  events.Publisher
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewLedger(coord *database.Coordinator, catalog database.Catalog, publisher events.Publisher, log *zap.Logger) *Ledger {
	return &Ledger{
		coord:   coord,
		catalog: catalog,
		events:  publisher,
		log:     log.Named("inventory"),
		tracer:  observability.Tracer("resto-system/inventory"),
	}
}

type Movement struct {
	ProductID int32
	BranchID  int32
	Delta     int32
	Kind      models.MovementKind
	ActorID   *int64
	Reference *string
}

type RecordView struct {
	models.InventoryRecord
	IsLowStock bool `json:"is_low_stock"`
}

func NewRecordView(rec models.InventoryRecord) RecordView {
	return RecordView{InventoryRecord: rec, IsLowStock: rec.IsLowStock()}
}

type AdjustResult struct {
	Record   RecordView           `json:"record"`
	Movement models.StockMovement `json:"movement"`
}

// RecordMovement applies m inside tx. The record for (product, branch) is
// created with quantity 0 when missing. A delta that would leave the
// quantity negative fails with ErrNegativeStock and must abort tx.
func (l *Ledger) RecordMovement(tx *gorm.DB, m Movement) (models.InventoryRecord, models.StockMovement, error) {
	var rec models.InventoryRecord
	var mv models.StockMovement

	if m.Delta == 0 {
		return rec, mv, apperrors.ErrInvalidQuantity.WithMessagef("movement quantity must not be 0")
	}
	if _, err := l.catalog.GetProduct(tx, m.ProductID); err != nil {
		return rec, mv, err
	}
	if _, err := l.catalog.GetBranch(tx, m.BranchID); err != nil {
		return rec, mv, err
	}

	now := time.Now()

	seed := models.InventoryRecord{ProductID: m.ProductID, BranchID: m.BranchID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "branch_id"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return rec, mv, apperrors.Unexpected(err)
	}

	// Single conditional update: the sufficiency check and the write happen
	// in one statement, so concurrent decrements cannot both pass.
	res := tx.Model(&models.InventoryRecord{}).
		Where("product_id = ? AND branch_id = ? AND quantity + ? >= 0", m.ProductID, m.BranchID, m.Delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", m.Delta),
			"updated_at": now,
		})
	if res.Error != nil {
		return rec, mv, apperrors.Unexpected(res.Error)
	}

	if err := tx.Where("product_id = ? AND branch_id = ?", m.ProductID, m.BranchID).First(&rec).Error; err != nil {
		return rec, mv, apperrors.Unexpected(err)
	}

	if res.RowsAffected == 0 {
		requested := -m.Delta
		return rec, mv, apperrors.ErrNegativeStock.
			WithMessagef("Insufficient stock. Available: %d, Requested: %d", rec.Quantity, requested).
			WithDetails(map[string]any{
				"product_id": m.ProductID,
				"branch_id":  m.BranchID,
				"available":  rec.Quantity,
				"requested":  requested,
				"deficit":    requested - rec.Quantity,
			})
	}

	mv = models.StockMovement{
		ProductID: m.ProductID,
		BranchID:  m.BranchID,
		Delta:     m.Delta,
		Kind:      m.Kind,
		Reference: m.Reference,
		CreatedBy: m.ActorID,
		CreatedAt: now,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return rec, mv, apperrors.Unexpected(err)
	}

	return rec, mv, nil
}

// AdjustStock applies a manual correction or a received purchase to one
// inventory record.
func (l *Ledger) AdjustStock(ctx context.Context, id auth.Identity, recordID int64, delta int32, kind string) (AdjustResult, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.adjust_stock")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("inventory.record_id", recordID),
		attribute.Int("inventory.delta", int(delta)),
		attribute.String("inventory.kind", kind),
	)

	var result AdjustResult

	if err := auth.Authorize(id, auth.CapAdjustStock); err != nil {
		return result, err
	}

	mk := models.MovementKind(kind)
	if mk != models.MovementPurchase && mk != models.MovementAdjustment {
		return result, apperrors.ErrInvalidMovementKind.WithMessagef("movement kind %q not allowed, use purchase or adjustment", kind)
	}
	if delta == 0 {
		return result, apperrors.ErrInvalidQuantity.WithMessagef("quantity must not be 0")
	}
	if mk == models.MovementPurchase && delta < 0 {
		return result, apperrors.ErrInvalidQuantity.WithMessagef("purchase quantity must be greater than 0")
	}

	actor := id.UserID
	err := l.coord.Run(ctx, func(tx *gorm.DB) error {
		var rec models.InventoryRecord
		if err := tx.First(&rec, recordID).Error; err != nil {
			return database.Classify(err, apperrors.ErrRecordNotFound.WithMessagef("inventory record %d not found", recordID))
		}
		if err := auth.AuthorizeBranch(id, rec.BranchID); err != nil {
			return err
		}

		updated, mv, err := l.RecordMovement(tx, Movement{
			ProductID: rec.ProductID,
			BranchID:  rec.BranchID,
			Delta:     delta,
			Kind:      mk,
			ActorID:   &actor,
		})
		if err != nil {
			return err
		}
		result = AdjustResult{Record: NewRecordView(updated), Movement: mv}
		return nil
	})
	if err != nil {
		return AdjustResult{}, l.fail(ctx, "adjust_stock", err, zap.Int64("record_id", recordID))
	}

	l.publish(ctx, events.Event{
		EventType: events.EventStockAdjusted,
		ActorID:   actor,
		BranchID:  result.Record.BranchID,
		ProductID: result.Record.ProductID,
		Data:      result,
	})
	l.NotifyIfLow(ctx, result.Record.InventoryRecord, actor)

	return result, nil
}

// EnsureRecords creates a record for productID in every branch that does not
// have one yet. Existing records are left untouched.
func (l *Ledger) EnsureRecords(ctx context.Context, id auth.Identity, productID int32, alertThreshold int32) ([]RecordView, error) {
	ctx, span := l.tracer.Start(ctx, "inventory.ensure_records")
	defer span.End()
	span.SetAttributes(attribute.Int("inventory.product_id", int(productID)))

	if err := auth.Authorize(id, auth.CapManageInventory); err != nil {
		return nil, err
	}
	if alertThreshold < 0 {
		return nil, apperrors.ErrValidation.WithMessagef("alert_threshold must not be negative")
	}

	var records []models.InventoryRecord
	err := l.coord.Run(ctx, func(tx *gorm.DB) error {
		if _, err := l.catalog.GetProduct(tx, productID); err != nil {
			return err
		}
		branchIDs, err := l.catalog.ListBranchIDs(tx)
		if err != nil {
			return err
		}
		for _, branchID := range branchIDs {
			rec := models.InventoryRecord{ProductID: productID, BranchID: branchID, AlertThreshold: alertThreshold}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "branch_id"}},
				DoNothing: true,
			}).Create(&rec).Error; err != nil {
				return apperrors.Unexpected(err)
			}
		}
		if err := tx.Where("product_id = ?", productID).Order("branch_id").Find(&records).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return nil, l.fail(ctx, "ensure_records", err, zap.Int32("product_id", productID))
	}

	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, NewRecordView(rec))
	}
	return views, nil
}

// NotifyIfLow publishes a stock.low event when rec is at or below its alert
// threshold. Call it only after the transaction that produced rec committed.
func (l *Ledger) NotifyIfLow(ctx context.Context, rec models.InventoryRecord, actorID int64) {
	if !rec.IsLowStock() {
		return
	}
	l.publish(ctx, events.Event{
		EventType: events.EventStockLow,
		ActorID:   actorID,
		BranchID:  rec.BranchID,
		ProductID: rec.ProductID,
		Data:      NewRecordView(rec),
	})
}

func (l *Ledger) GetRecord(ctx context.Context, id auth.Identity, recordID int64) (RecordView, error) {
	if err := auth.Authorize(id, auth.CapViewStock); err != nil {
		return RecordView{}, err
	}

	var rec models.InventoryRecord
	if err := l.coord.DB().WithContext(ctx).First(&rec, recordID).Error; err != nil {
		return RecordView{}, database.Classify(err, apperrors.ErrRecordNotFound.WithMessagef("inventory record %d not found", recordID))
	}
	if err := auth.AuthorizeBranch(id, rec.BranchID); err != nil {
		return RecordView{}, err
	}
	return NewRecordView(rec), nil
}

// scopeBranch resolves the branch a listing is restricted to. Non-admin
// identities default to their own branch.
func scopeBranch(id auth.Identity, branchID int32) (int32, error) {
	if err := auth.Authorize(id, auth.CapViewStock); err != nil {
		return 0, err
	}
	if branchID == 0 && id.Role != auth.RoleAdmin {
		branchID = id.BranchID
	}
	if branchID != 0 {
		if err := auth.AuthorizeBranch(id, branchID); err != nil {
			return 0, err
		}
	}
	return branchID, nil
}

type RecordFilter struct {
	BranchID     int32
	ProductID    int32
	LowStockOnly bool
}

func (l *Ledger) ListRecords(ctx context.Context, id auth.Identity, f RecordFilter, page database.Page) ([]RecordView, database.PageMeta, error) {
	branchID, err := scopeBranch(id, f.BranchID)
	if err != nil {
		return nil, database.PageMeta{}, err
	}

	query := l.coord.DB().WithContext(ctx).Model(&models.InventoryRecord{})
	if branchID != 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	if f.ProductID != 0 {
		query = query.Where("product_id = ?", f.ProductID)
	}
	if f.LowStockOnly {
		query = query.Where("quantity <= alert_threshold")
	}
	query = query.Order("branch_id, product_id")

	var records []models.InventoryRecord
	meta, err := database.Paginate(query, page, &records)
	if err != nil {
		return nil, database.PageMeta{}, apperrors.Unexpected(err)
	}

	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, NewRecordView(rec))
	}
	return views, meta, nil
}

type MovementFilter struct {
	ProductID int32
	BranchID  int32
	Reference string
}

func (l *Ledger) ListMovements(ctx context.Context, id auth.Identity, f MovementFilter, page database.Page) ([]models.StockMovement, database.PageMeta, error) {
	branchID, err := scopeBranch(id, f.BranchID)
	if err != nil {
		return nil, database.PageMeta{}, err
	}

	query := l.coord.DB().WithContext(ctx).Model(&models.StockMovement{})
	if f.ProductID != 0 {
		query = query.Where("product_id = ?", f.ProductID)
	}
	if branchID != 0 {
		query = query.Where("branch_id = ?", branchID)
	}
	if f.Reference != "" {
		query = query.Where("reference = ?", f.Reference)
	}
	query = query.Order("id")

	var movements []models.StockMovement
	meta, err := database.Paginate(query, page, &movements)
	if err != nil {
		return nil, database.PageMeta{}, apperrors.Unexpected(err)
	}
	return movements, meta, nil
}

func (l *Ledger) publish(ctx context.Context, e events.Event) {
	if err := l.events.Publish(ctx, e); err != nil {
		logger.WithTrace(ctx, l.log).Warn("failed to publish event",
			zap.String("event_type", e.EventType),
			zap.Error(err),
		)
	}
}

func (l *Ledger) fail(ctx context.Context, op string, err error, fields ...zap.Field) error {
	if apperrors.KindOf(err) == apperrors.KindUnexpected {
		logger.WithTrace(ctx, l.log).Error("inventory operation failed",
			append(fields, zap.String("operation", op), zap.Error(err))...,
		)
	}
	return err
}
