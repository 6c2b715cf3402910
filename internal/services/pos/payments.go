package pos

import (
	"context"
	"strings"
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

type PayRequest struct {
	OrderID   int64
	Amount    decimal.Decimal
	Method    string
	Reference string
}

type PaymentResult struct {
	Payment models.Payment `json:"payment"`
	Order   OrderView      `json:"order"`
}

func alreadyPaid(orderID int64) error {
	return apperrors.ErrAlreadyPaid.
		WithMessagef("order %d is already paid", orderID).
		WithDetails(map[string]any{"order_id": orderID})
}

// Pay settles an order in full. The payment row, the paid order and the
// table's paid label commit together. Releasing the table stays a separate
// call.
func (s *Service) Pay(ctx context.Context, id auth.Identity, req PayRequest) (PaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "pos.pay")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("pos.order_id", req.OrderID),
		attribute.String("pos.method", req.Method),
	)

	if err := auth.Authorize(id, auth.CapTakePayment); err != nil {
		return PaymentResult{}, err
	}

	var payment models.Payment
	var table models.DiningTable
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		var order models.Order
		var err error
		// The row lock keeps AddLine and RemoveLine from moving the total
		// between the amount check and the state flip.
		order, table, err = s.lockOrder(tx, id, req.OrderID)
		if err != nil {
			return err
		}

		if order.State == models.OrderPaid {
			return alreadyPaid(order.ID)
		}
		if !req.Amount.Equal(order.Total) {
			return apperrors.ErrAmountMismatch.
				WithMessagef("payment amount %s does not match order total %s", req.Amount.StringFixed(2), order.Total.StringFixed(2)).
				WithDetails(map[string]any{
					"order_id": order.ID,
					"amount":   req.Amount.StringFixed(2),
					"total":    order.Total.StringFixed(2),
				})
		}
		method, ok := models.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(req.Method)))
		if !ok {
			return apperrors.ErrInvalidMethod.
				WithMessagef("unknown payment method %q", req.Method).
				WithDetails(map[string]any{"allowed": []models.PaymentMethod{
					models.PaymentCash, models.PaymentCard, models.PaymentNequi, models.PaymentDaviplata,
				}})
		}

		now := time.Now()
		payment = models.Payment{
			OrderID:   order.ID,
			Amount:    req.Amount,
			Method:    method,
			CreatedBy: id.UserID,
			CreatedAt: now,
		}
		if ref := strings.TrimSpace(req.Reference); ref != "" {
			payment.Reference = &ref
		}
		if err := tx.Create(&payment).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return alreadyPaid(order.ID)
			}
			return apperrors.Unexpected(err)
		}

		if err := tx.Model(&order).Updates(map[string]any{
			"state":      models.OrderPaid,
			"paid_at":    now,
			"updated_at": now,
		}).Error; err != nil {
			return apperrors.Unexpected(err)
		}

		if err := tx.Model(&models.DiningTable{}).
			Where("id = ? AND state = ?", table.ID, models.TableOccupied).
			Updates(map[string]any{"state": models.TablePaid, "updated_at": now}).Error; err != nil {
			return apperrors.Unexpected(err)
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, s.fail(ctx, "pay", err, zap.Int64("order_id", req.OrderID))
	}

	view, err := s.loadOrderView(s.coord.DB().WithContext(ctx), req.OrderID)
	if err != nil {
		return PaymentResult{}, s.fail(ctx, "pay", err, zap.Int64("order_id", req.OrderID))
	}
	result := PaymentResult{Payment: payment, Order: view}

	s.publish(ctx, events.Event{
		EventType: events.EventPaymentProcessed,
		ActorID:   id.UserID,
		BranchID:  table.BranchID,
		TableID:   table.ID,
		OrderID:   req.OrderID,
		Data:      result,
	})
	return result, nil
}
