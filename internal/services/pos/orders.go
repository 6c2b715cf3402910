package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/database"
	"resto-system/internal/database/models"
	"resto-system/internal/events"
	"resto-system/internal/services/inventory"
)

// LineReference is the stock movement reference of an order line.
func LineReference(lineID int64) string {
	return fmt.Sprintf("order-line:%d", lineID)
}

func closedOrder(order models.Order) error {
	return apperrors.ErrOrderClosed.
		WithMessagef("order %d is already paid", order.ID).
		WithDetails(map[string]any{"order_id": order.ID})
}

// ChangeStatus moves an order between pending and delivered. Paid is only
// reachable through Pay, and a paid order never leaves that state.
func (s *Service) ChangeStatus(ctx context.Context, id auth.Identity, orderID int64, state string) (OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "pos.change_status")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("pos.order_id", orderID),
		attribute.String("pos.state", state),
	)

	if err := auth.Authorize(id, auth.CapChangeOrderStatus); err != nil {
		return OrderView{}, err
	}

	var previous models.OrderState
	var table models.DiningTable
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		var order models.Order
		var err error
		order, table, err = s.lockOrder(tx, id, orderID)
		if err != nil {
			return err
		}

		previous = order.State
		// A paid order rejects every target but paid, recognised or not.
		if order.State == models.OrderPaid && models.OrderState(state) != models.OrderPaid {
			return apperrors.ErrInvalidTransition.
				WithMessagef("order %d is paid and cannot move to %s", order.ID, state).
				WithDetails(map[string]any{"from": order.State, "to": state})
		}

		next, ok := models.ParseOrderState(state)
		if !ok {
			return apperrors.ErrInvalidState.WithMessagef("unknown order state %q", state)
		}

		switch {
		case next == models.OrderPaid && order.State != models.OrderPaid:
			return apperrors.ErrInvalidTransition.
				WithMessagef("order %d can only become paid through a payment", order.ID).
				WithDetails(map[string]any{"from": order.State, "to": next})
		case next == order.State:
			return nil
		}

		if err := tx.Model(&order).Updates(map[string]any{"state": next, "updated_at": time.Now()}).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return OrderView{}, s.fail(ctx, "change_status", err, zap.Int64("order_id", orderID))
	}

	view, err := s.loadOrderView(s.coord.DB().WithContext(ctx), orderID)
	if err != nil {
		return OrderView{}, s.fail(ctx, "change_status", err, zap.Int64("order_id", orderID))
	}

	if view.State != previous {
		s.publish(ctx, events.Event{
			EventType: events.EventOrderStatusChanged,
			ActorID:   id.UserID,
			BranchID:  table.BranchID,
			TableID:   view.TableID,
			OrderID:   view.ID,
			Data:      map[string]any{"from": previous, "to": view.State},
		})
	}
	return view, nil
}

type AddLineResult struct {
	Line  LineView             `json:"line"`
	Order OrderView            `json:"order"`
	Stock inventory.RecordView `json:"stock"`
	Move  models.StockMovement `json:"movement"`
}

// AddLine appends a line to an open order. The line, the new total, the stock
// decrement and its sale movement commit together or not at all.
func (s *Service) AddLine(ctx context.Context, id auth.Identity, orderID int64, productID int32, quantity int32) (AddLineResult, error) {
	ctx, span := s.tracer.Start(ctx, "pos.add_line")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("pos.order_id", orderID),
		attribute.Int("pos.product_id", int(productID)),
		attribute.Int("pos.quantity", int(quantity)),
	)

	if err := auth.Authorize(id, auth.CapAddLine); err != nil {
		return AddLineResult{}, err
	}

	var result AddLineResult
	var stock models.InventoryRecord
	var branchID int32
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		order, table, err := s.lockOrder(tx, id, orderID)
		if err != nil {
			return err
		}
		branchID = table.BranchID

		if !order.State.IsOpen() {
			return closedOrder(order)
		}
		if quantity <= 0 {
			return apperrors.ErrInvalidQuantity.WithDetails(map[string]any{"quantity": quantity})
		}

		product, err := s.catalog.GetProduct(tx, productID)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return apperrors.ErrProductInactive.
				WithMessagef("product %s is not active", product.ProductCode).
				WithDetails(map[string]any{"product_id": product.ID})
		}

		now := time.Now()
		line := models.OrderLine{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.SalePrice,
			CreatedBy: id.UserID,
			CreatedAt: now,
		}
		if err := tx.Create(&line).Error; err != nil {
			return apperrors.Unexpected(err)
		}

		actor := id.UserID
		ref := LineReference(line.ID)
		rec, mv, err := s.ledger.RecordMovement(tx, inventory.Movement{
			ProductID: product.ID,
			BranchID:  table.BranchID,
			Delta:     -quantity,
			Kind:      models.MovementSale,
			ActorID:   &actor,
			Reference: &ref,
		})
		if errors.Is(err, apperrors.ErrNegativeStock) {
			short := apperrors.From(err)
			return apperrors.ErrInsufficientStock.WithMessagef("%s", short.Message).WithDetails(short.Details)
		}
		if err != nil {
			return err
		}

		order.Total = order.Total.Add(line.Subtotal())
		if err := tx.Model(&order).Updates(map[string]any{"total": order.Total, "updated_at": now}).Error; err != nil {
			return apperrors.Unexpected(err)
		}

		stock = rec
		result.Line = NewLineView(line)
		result.Stock = inventory.NewRecordView(rec)
		result.Move = mv
		return nil
	})
	if err != nil {
		return AddLineResult{}, s.fail(ctx, "add_line", err,
			zap.Int64("order_id", orderID),
			zap.Int32("product_id", productID),
		)
	}

	result.Order, err = s.loadOrderView(s.coord.DB().WithContext(ctx), orderID)
	if err != nil {
		return AddLineResult{}, s.fail(ctx, "add_line", err, zap.Int64("order_id", orderID))
	}

	s.publish(ctx, events.Event{
		EventType: events.EventOrderLineAdded,
		ActorID:   id.UserID,
		BranchID:  branchID,
		TableID:   result.Order.TableID,
		OrderID:   orderID,
		ProductID: productID,
		Data:      result.Line,
	})
	s.ledger.NotifyIfLow(ctx, stock, id.UserID)
	return result, nil
}

// RemoveLine deletes a line from an open order and puts its quantity back in
// stock with an adjustment movement.
func (s *Service) RemoveLine(ctx context.Context, id auth.Identity, lineID int64) (OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "pos.remove_line")
	defer span.End()
	span.SetAttributes(attribute.Int64("pos.line_id", lineID))

	if err := auth.Authorize(id, auth.CapRemoveLine); err != nil {
		return OrderView{}, err
	}

	lineGone := apperrors.ErrLineNotFound.WithMessagef("order line %d not found", lineID)

	var line models.OrderLine
	var branchID int32
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&line, lineID).Error; err != nil {
			return database.Classify(err, lineGone)
		}
		order, table, err := s.lockOrder(tx, id, line.OrderID)
		if err != nil {
			return err
		}
		branchID = table.BranchID

		if !order.State.IsOpen() {
			return closedOrder(order)
		}

		// A concurrent removal may have won the order lock first.
		res := tx.Delete(&models.OrderLine{}, line.ID)
		if res.Error != nil {
			return apperrors.Unexpected(res.Error)
		}
		if res.RowsAffected == 0 {
			return lineGone
		}

		actor := id.UserID
		ref := LineReference(line.ID)
		if _, _, err := s.ledger.RecordMovement(tx, inventory.Movement{
			ProductID: line.ProductID,
			BranchID:  table.BranchID,
			Delta:     line.Quantity,
			Kind:      models.MovementAdjustment,
			ActorID:   &actor,
			Reference: &ref,
		}); err != nil {
			return err
		}

		order.Total = order.Total.Sub(line.Subtotal())
		if err := tx.Model(&order).Updates(map[string]any{"total": order.Total, "updated_at": time.Now()}).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return OrderView{}, s.fail(ctx, "remove_line", err, zap.Int64("line_id", lineID))
	}

	view, err := s.loadOrderView(s.coord.DB().WithContext(ctx), line.OrderID)
	if err != nil {
		return OrderView{}, s.fail(ctx, "remove_line", err, zap.Int64("line_id", lineID))
	}

	s.publish(ctx, events.Event{
		EventType: events.EventOrderLineRemoved,
		ActorID:   id.UserID,
		BranchID:  branchID,
		TableID:   view.TableID,
		OrderID:   view.ID,
		ProductID: line.ProductID,
		Data:      NewLineView(line),
	})
	return view, nil
}

func (s *Service) GetOrder(ctx context.Context, id auth.Identity, orderID int64) (OrderView, error) {
	if err := auth.Authorize(id, auth.CapViewOrders); err != nil {
		return OrderView{}, err
	}

	db := s.coord.DB().WithContext(ctx)
	view, err := s.loadOrderView(db, orderID)
	if err != nil {
		return OrderView{}, s.fail(ctx, "get_order", err, zap.Int64("order_id", orderID))
	}
	table, err := s.loadTable(db, view.TableID)
	if err != nil {
		return OrderView{}, s.fail(ctx, "get_order", err, zap.Int64("order_id", orderID))
	}
	if err := auth.AuthorizeBranch(id, table.BranchID); err != nil {
		return OrderView{}, err
	}
	return view, nil
}

type OrderFilter struct {
	TableID  int32
	BranchID int32
	State    string
}

func (s *Service) ListOrders(ctx context.Context, id auth.Identity, f OrderFilter, page database.Page) ([]OrderView, database.PageMeta, error) {
	if err := auth.Authorize(id, auth.CapViewOrders); err != nil {
		return nil, database.PageMeta{}, err
	}

	branchID := f.BranchID
	if branchID == 0 && id.Role != auth.RoleAdmin {
		branchID = id.BranchID
	}
	if branchID != 0 {
		if err := auth.AuthorizeBranch(id, branchID); err != nil {
			return nil, database.PageMeta{}, err
		}
	}

	db := s.coord.DB().WithContext(ctx)
	query := db.Model(&models.Order{})
	if f.TableID != 0 {
		query = query.Where("table_id = ?", f.TableID)
	}
	if f.State != "" {
		state, ok := models.ParseOrderState(f.State)
		if !ok {
			return nil, database.PageMeta{}, apperrors.ErrInvalidState.WithMessagef("unknown order state %q", f.State)
		}
		query = query.Where("state = ?", state)
	}
	if branchID != 0 {
		query = query.Where("table_id IN (?)", db.Model(&models.DiningTable{}).Select("id").Where("branch_id = ?", branchID))
	}
	query = query.Order("id DESC")

	var orders []models.Order
	meta, err := database.Paginate(query, page, &orders)
	if err != nil {
		return nil, database.PageMeta{}, s.fail(ctx, "list_orders", apperrors.Unexpected(err))
	}
	if err := attachLines(db, orders); err != nil {
		return nil, database.PageMeta{}, s.fail(ctx, "list_orders", err)
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views, meta, nil
}

func attachLines(db *gorm.DB, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var lines []models.OrderLine
	if err := db.Where("order_id IN ?", ids).Order("id").Find(&lines).Error; err != nil {
		return apperrors.Unexpected(err)
	}

	byOrder := make(map[int64][]models.OrderLine, len(orders))
	for _, l := range lines {
		byOrder[l.OrderID] = append(byOrder[l.OrderID], l)
	}
	for i := range orders {
		orders[i].Lines = byOrder[orders[i].ID]
	}
	return nil
}
