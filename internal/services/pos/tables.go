package pos

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/database"
	"resto-system/internal/database/models"
	"resto-system/internal/events"
)

type TableView struct {
	models.DiningTable
	ActiveOrderID *int64 `json:"active_order_id,omitempty"`
}

// OpenOrder seats a free table and starts an empty pending order on it.
func (s *Service) OpenOrder(ctx context.Context, id auth.Identity, tableID int32) (OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "pos.open_order")
	defer span.End()
	span.SetAttributes(attribute.Int("pos.table_id", int(tableID)))

	if err := auth.Authorize(id, auth.CapOpenOrder); err != nil {
		return OrderView{}, err
	}

	var order models.Order
	var table models.DiningTable
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		var err error
		table, err = s.loadTable(tx, tableID)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeBranch(id, table.BranchID); err != nil {
			return err
		}

		notFree := apperrors.ErrTableNotAvailable.
			WithMessagef("table %d is %s", table.TableNumber, table.State).
			WithDetails(map[string]any{"table_id": table.ID, "state": table.State})
		if table.State != models.TableFree {
			return notFree
		}

		now := time.Now()
		res := tx.Model(&models.DiningTable{}).
			Where("id = ? AND state = ?", table.ID, models.TableFree).
			Updates(map[string]any{"state": models.TableOccupied, "updated_at": now})
		if res.Error != nil {
			return apperrors.Unexpected(res.Error)
		}
		if res.RowsAffected == 0 {
			return notFree
		}
		table.State = models.TableOccupied

		order = models.Order{
			TableID:   table.ID,
			State:     models.OrderPending,
			Total:     decimal.Zero,
			OpenedBy:  id.UserID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return OrderView{}, s.fail(ctx, "open_order", err, zap.Int32("table_id", tableID))
	}

	view := NewOrderView(order)
	s.publish(ctx, events.Event{
		EventType: events.EventOrderOpened,
		ActorID:   id.UserID,
		BranchID:  table.BranchID,
		TableID:   table.ID,
		OrderID:   order.ID,
		Data:      view,
	})
	return view, nil
}

// Release frees a table. In strict mode a table whose order is still unpaid
// cannot be freed.
func (s *Service) Release(ctx context.Context, id auth.Identity, tableID int32) (models.DiningTable, error) {
	ctx, span := s.tracer.Start(ctx, "pos.release_table")
	defer span.End()
	span.SetAttributes(
		attribute.Int("pos.table_id", int(tableID)),
		attribute.Bool("pos.strict_release", s.strictRelease),
	)

	if err := auth.Authorize(id, auth.CapReleaseTable); err != nil {
		return models.DiningTable{}, err
	}

	var table models.DiningTable
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&table, tableID).Error; err != nil {
			return database.Classify(err, apperrors.ErrTableNotFound.WithMessagef("table %d not found", tableID))
		}
		if err := auth.AuthorizeBranch(id, table.BranchID); err != nil {
			return err
		}

		if s.strictRelease {
			active, err := activeOrderID(tx, table.ID)
			if err != nil {
				return err
			}
			if active != nil {
				return apperrors.ErrActiveOrderExists.
					WithMessagef("table %d still has unpaid order %d", table.TableNumber, *active).
					WithDetails(map[string]any{"table_id": table.ID, "order_id": *active})
			}
		}

		now := time.Now()
		if err := tx.Model(&table).Updates(map[string]any{"state": models.TableFree, "updated_at": now}).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		table.State = models.TableFree
		table.UpdatedAt = now
		return nil
	})
	if err != nil {
		return models.DiningTable{}, s.fail(ctx, "release_table", err, zap.Int32("table_id", tableID))
	}

	s.publish(ctx, events.Event{
		EventType: events.EventTableReleased,
		ActorID:   id.UserID,
		BranchID:  table.BranchID,
		TableID:   table.ID,
		Data:      table,
	})
	return table, nil
}

func (s *Service) GetTable(ctx context.Context, id auth.Identity, tableID int32) (TableView, error) {
	if err := auth.Authorize(id, auth.CapViewOrders); err != nil {
		return TableView{}, err
	}

	db := s.coord.DB().WithContext(ctx)
	table, err := s.loadTable(db, tableID)
	if err != nil {
		return TableView{}, err
	}
	if err := auth.AuthorizeBranch(id, table.BranchID); err != nil {
		return TableView{}, err
	}
	active, err := activeOrderID(db, table.ID)
	if err != nil {
		return TableView{}, err
	}
	return TableView{DiningTable: table, ActiveOrderID: active}, nil
}

// ListTables lists the tables of a branch. Identities bound to a branch only
// see their own.
func (s *Service) ListTables(ctx context.Context, id auth.Identity, branchID int32) ([]models.DiningTable, error) {
	if err := auth.Authorize(id, auth.CapViewOrders); err != nil {
		return nil, err
	}
	if branchID == 0 && id.Role != auth.RoleAdmin {
		branchID = id.BranchID
	}
	if branchID != 0 {
		if err := auth.AuthorizeBranch(id, branchID); err != nil {
			return nil, err
		}
	}

	query := s.coord.DB().WithContext(ctx).Model(&models.DiningTable{})
	if branchID != 0 {
		query = query.Where("branch_id = ?", branchID)
	}

	var tables []models.DiningTable
	if err := query.Order("branch_id, table_number").Find(&tables).Error; err != nil {
		return nil, s.fail(ctx, "list_tables", apperrors.Unexpected(err))
	}
	return tables, nil
}

func activeOrderID(db *gorm.DB, tableID int32) (*int64, error) {
	var ids []int64
	err := db.Model(&models.Order{}).
		Where("table_id = ? AND state <> ?", tableID, models.OrderPaid).
		Order("id").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}
