package pos

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"resto-system/internal/apperrors"
	"resto-system/internal/auth"
	"resto-system/internal/database"
	"resto-system/internal/database/dbtest"
	"resto-system/internal/database/models"
	"resto-system/internal/events"
	"resto-system/internal/services/inventory"
)

var (
	admin   = auth.Identity{UserID: 1, Username: "admin", Role: auth.RoleAdmin}
	cashier = auth.Identity{UserID: 2, Username: "caja", Role: auth.RoleCashier}
	waiter  = auth.Identity{UserID: 3, Username: "mesero", Role: auth.RoleWaiter}
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	recorder *events.Recorder
	branch   models.Branch
	table    models.DiningTable
	product  models.Product
	stock    models.InventoryRecord
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	coord := database.NewCoordinator(db)
	rec := &events.Recorder{}
	ledger := inventory.NewLedger(coord, database.GormCatalog{}, rec, zap.NewNop())

	f := &fixture{
		db:       db,
		svc:      NewService(coord, database.GormCatalog{}, ledger, rec, zap.NewNop(), opts),
		recorder: rec,
	}
	f.branch = dbtest.Branch(t, db, "Centro")
	f.table = dbtest.Table(t, db, f.branch.ID, 3)
	f.product = dbtest.Product(t, db, "P-7", 50000, true)
	f.stock = dbtest.Stock(t, db, f.product.ID, f.branch.ID, 10, 2)
	return f
}

func strict(t *testing.T) *fixture {
	return newFixture(t, Options{StrictRelease: true})
}

type snapshot struct {
	OrderState models.OrderState
	Total      string
	Lines      int64
	Stock      int32
	Movements  int64
	Payments   int64
	TableState models.TableState
}

func (f *fixture) snapshot(t *testing.T, orderID int64) snapshot {
	t.Helper()
	var s snapshot

	var order models.Order
	require.NoError(t, f.db.First(&order, orderID).Error)
	s.OrderState = order.State
	s.Total = order.Total.StringFixed(2)

	var table models.DiningTable
	require.NoError(t, f.db.First(&table, f.table.ID).Error)
	s.TableState = table.State

	var rec models.InventoryRecord
	require.NoError(t, f.db.First(&rec, f.stock.ID).Error)
	s.Stock = rec.Quantity

	require.NoError(t, f.db.Model(&models.OrderLine{}).Where("order_id = ?", orderID).Count(&s.Lines).Error)
	require.NoError(t, f.db.Model(&models.StockMovement{}).Count(&s.Movements).Error)
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&s.Payments).Error)
	return s
}

func (f *fixture) movements(t *testing.T) []models.StockMovement {
	t.Helper()
	var mvs []models.StockMovement
	require.NoError(t, f.db.Order("id").Find(&mvs).Error)
	return mvs
}

// checkInvariants verifies that the order total matches its lines and that
// stock and the ledger agree on the net effect of all lines.
func (f *fixture) checkInvariants(t *testing.T, orderID int64) {
	t.Helper()

	var order models.Order
	require.NoError(t, f.db.Preload("Lines").First(&order, orderID).Error)
	sum := decimal.Zero
	var sold int32
	for _, l := range order.Lines {
		sum = sum.Add(l.Subtotal())
		if l.ProductID == f.product.ID {
			sold += l.Quantity
		}
	}
	assert.True(t, order.Total.Equal(sum), "total %s != sum of lines %s", order.Total, sum)

	var rec models.InventoryRecord
	require.NoError(t, f.db.First(&rec, f.stock.ID).Error)
	assert.GreaterOrEqual(t, rec.Quantity, int32(0))
	assert.Equal(t, f.stock.Quantity-sold, rec.Quantity)

	var net int32
	for _, mv := range f.movements(t) {
		if mv.ProductID == f.product.ID {
			net += mv.Delta
		}
	}
	assert.Equal(t, -sold, net, "ledger net must equal the quantity held by lines")
}

func TestOpenOrder_SeatsFreeTable(t *testing.T) {
	f := strict(t)

	order, err := f.svc.OpenOrder(context.Background(), waiter, f.table.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.State)
	assert.True(t, order.Total.IsZero())
	assert.Equal(t, f.table.ID, order.TableID)
	assert.Equal(t, waiter.UserID, order.OpenedBy)
	assert.Empty(t, order.Lines)

	table, err := f.svc.GetTable(context.Background(), waiter, f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableOccupied, table.State)
	require.NotNil(t, table.ActiveOrderID)
	assert.Equal(t, order.ID, *table.ActiveOrderID)

	assert.Equal(t, []string{events.EventOrderOpened}, f.recorder.Types())
}

func TestOpenOrder_Rejections(t *testing.T) {
	f := strict(t)
	ctx := context.Background()

	_, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	_, err = f.svc.OpenOrder(ctx, waiter, f.table.ID)
	assert.True(t, errors.Is(err, apperrors.ErrTableNotAvailable), "got %v", err)

	_, err = f.svc.OpenOrder(ctx, waiter, 999)
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))

	_, err = f.svc.OpenOrder(ctx, cashier, f.table.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.svc.OpenOrder(ctx, auth.Identity{}, f.table.ID)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestOpenOrder_ConcurrentOpensHaveOneWinner(t *testing.T) {
	f := strict(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.OpenOrder(context.Background(), waiter, f.table.ID)
		}(i)
	}
	wg.Wait()

	var won int
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.True(t, errors.Is(err, apperrors.ErrTableNotAvailable), "got %v", err)
	}
	assert.Equal(t, 1, won)
}

func TestAddLine_UpdatesTotalStockAndLedger(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	res, err := f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 2)
	require.NoError(t, err)

	assert.True(t, res.Order.Total.Equal(decimal.NewFromInt(100000)), "total %s", res.Order.Total)
	assert.True(t, res.Line.UnitPrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, res.Line.Subtotal.Equal(decimal.NewFromInt(100000)))
	assert.Equal(t, int32(8), res.Stock.Quantity)
	require.Len(t, res.Order.Lines, 1)

	mvs := f.movements(t)
	require.Len(t, mvs, 1)
	assert.Equal(t, models.MovementSale, mvs[0].Kind)
	assert.Equal(t, int32(-2), mvs[0].Delta)
	require.NotNil(t, mvs[0].Reference)
	assert.Equal(t, LineReference(res.Line.ID), *mvs[0].Reference)
	require.NotNil(t, mvs[0].CreatedBy)
	assert.Equal(t, waiter.UserID, *mvs[0].CreatedBy)

	assert.Equal(t, []string{events.EventOrderOpened, events.EventOrderLineAdded}, f.recorder.Types())
	f.checkInvariants(t, order.ID)
}

func TestAddLine_KeepsPriceSnapshot(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", f.product.ID).
		Update("sale_price", decimal.NewFromInt(60000)).Error)

	res, err := f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 1)
	require.NoError(t, err)

	require.Len(t, res.Order.Lines, 2)
	assert.True(t, res.Order.Lines[0].UnitPrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, res.Order.Lines[1].UnitPrice.Equal(decimal.NewFromInt(60000)))
	assert.True(t, res.Order.Total.Equal(decimal.NewFromInt(110000)))
	f.checkInvariants(t, order.ID)
}

func TestRemoveLine_ReversesAddLine(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)
	added, err := f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 2)
	require.NoError(t, err)

	view, err := f.svc.RemoveLine(ctx, admin, added.Line.ID)
	require.NoError(t, err)

	assert.True(t, view.Total.IsZero(), "total %s", view.Total)
	assert.Empty(t, view.Lines)
	assert.Equal(t, int32(10), f.snapshot(t, order.ID).Stock)

	mvs := f.movements(t)
	require.Len(t, mvs, 2)
	assert.Equal(t, models.MovementAdjustment, mvs[1].Kind)
	assert.Equal(t, int32(2), mvs[1].Delta)
	assert.Equal(t, LineReference(added.Line.ID), *mvs[1].Reference)

	_, err = f.svc.RemoveLine(ctx, admin, added.Line.ID)
	assert.True(t, errors.Is(err, apperrors.ErrLineNotFound))

	f.checkInvariants(t, order.ID)
}

func TestAddLine_InsufficientStockChangesNothing(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	before := f.snapshot(t, order.ID)
	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 11)
	require.True(t, errors.Is(err, apperrors.ErrInsufficientStock), "got %v", err)

	details := apperrors.From(err).Details
	assert.Equal(t, int32(10), details["available"])
	assert.Equal(t, int32(11), details["requested"])
	assert.Equal(t, int32(1), details["deficit"])

	assert.Equal(t, before, f.snapshot(t, order.ID))

	// Rejection is stable across retries.
	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 11)
	require.True(t, errors.Is(err, apperrors.ErrInsufficientStock))
	assert.Equal(t, before, f.snapshot(t, order.ID))
}

func TestAddLine_Validation(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)
	inactive := dbtest.Product(t, f.db, "P-OLD", 1000, false)

	cases := []struct {
		name      string
		orderID   int64
		productID int32
		quantity  int32
		want      error
	}{
		{"unknown order", 999, f.product.ID, 1, apperrors.ErrOrderNotFound},
		{"zero quantity", order.ID, f.product.ID, 0, apperrors.ErrInvalidQuantity},
		{"negative quantity", order.ID, f.product.ID, -3, apperrors.ErrInvalidQuantity},
		{"unknown product", order.ID, 999, 1, apperrors.ErrProductNotFound},
		{"inactive product", order.ID, inactive.ID, 1, apperrors.ErrProductInactive},
	}

	before := f.snapshot(t, order.ID)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddLine(ctx, waiter, tc.orderID, tc.productID, tc.quantity)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.Equal(t, before, f.snapshot(t, order.ID))
}

// The test database runs on one connection, so these calls commit one after
// another. Oversell protection under real parallelism rests on the
// conditional quantity update in inventory.Ledger.RecordMovement.
func TestAddLine_ParallelCallersStopAtZeroStock(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	const attempts = 15
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 1)
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock), "got %v", err)
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, int32(0), f.snapshot(t, order.ID).Stock)
	f.checkInvariants(t, order.ID)
}

func TestInvariantsHoldAcrossInterleavedLines(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	other := dbtest.Product(t, f.db, "P-9", 12500, true)
	dbtest.Stock(t, f.db, other.ID, f.branch.ID, 100, 0)

	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	var lineIDs []int64
	for _, q := range []int32{3, 1, 4} {
		res, err := f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, q)
		require.NoError(t, err)
		lineIDs = append(lineIDs, res.Line.ID)
		_, err = f.svc.AddLine(ctx, waiter, order.ID, other.ID, q)
		require.NoError(t, err)
		f.checkInvariants(t, order.ID)
	}

	_, err = f.svc.RemoveLine(ctx, admin, lineIDs[1])
	require.NoError(t, err)
	f.checkInvariants(t, order.ID)

	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 3)
	require.NoError(t, err)
	f.checkInvariants(t, order.ID)

	view, err := f.svc.GetOrder(ctx, cashier, order.ID)
	require.NoError(t, err)
	// 3+4+3 units at 50000 plus 3+1+4 units at 12500.
	assert.True(t, view.Total.Equal(decimal.NewFromInt(600000)), "total %s", view.Total)
}

func TestPay_SettlesOrderAndClosesIt(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)
	added, err := f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 2)
	require.NoError(t, err)

	res, err := f.svc.Pay(ctx, cashier, PayRequest{
		OrderID:   order.ID,
		Amount:    decimal.NewFromInt(100000),
		Method:    "cash",
		Reference: "caja-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPaid, res.Order.State)
	require.NotNil(t, res.Order.PaidAt)
	assert.Equal(t, models.PaymentCash, res.Payment.Method)
	assert.True(t, res.Payment.Amount.Equal(res.Order.Total))
	require.NotNil(t, res.Payment.Reference)
	assert.Equal(t, "caja-1", *res.Payment.Reference)

	snap := f.snapshot(t, order.ID)
	assert.Equal(t, models.TablePaid, snap.TableState)
	assert.Equal(t, int64(1), snap.Payments)

	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 1)
	assert.True(t, errors.Is(err, apperrors.ErrOrderClosed), "got %v", err)
	_, err = f.svc.RemoveLine(ctx, admin, added.Line.ID)
	assert.True(t, errors.Is(err, apperrors.ErrOrderClosed), "got %v", err)
	_, err = f.svc.ChangeStatus(ctx, admin, order.ID, "pending")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition), "got %v", err)
	_, err = f.svc.ChangeStatus(ctx, admin, order.ID, "cooking")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition), "paid is checked before the state name, got %v", err)
	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: order.ID, Amount: decimal.NewFromInt(100000), Method: "cash"})
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyPaid), "got %v", err)

	assert.Equal(t, snap, f.snapshot(t, order.ID))

	// Moving a paid order to paid is a no-op.
	view, err := f.svc.ChangeStatus(ctx, admin, order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, view.State)

	assert.Contains(t, f.recorder.Types(), events.EventPaymentProcessed)
}

func TestPay_Rejections(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 2)
	require.NoError(t, err)

	before := f.snapshot(t, order.ID)

	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: order.ID, Amount: decimal.NewFromInt(99999), Method: "cash"})
	require.True(t, errors.Is(err, apperrors.ErrAmountMismatch), "got %v", err)
	assert.Equal(t, "100000.00", apperrors.From(err).Details["total"])

	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: order.ID, Amount: decimal.RequireFromString("100000.01"), Method: "cash"})
	assert.True(t, errors.Is(err, apperrors.ErrAmountMismatch))

	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: order.ID, Amount: decimal.NewFromInt(100000), Method: "bitcoin"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidMethod))

	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: 999, Amount: decimal.NewFromInt(1), Method: "cash"})
	assert.True(t, errors.Is(err, apperrors.ErrOrderNotFound))

	_, err = f.svc.Pay(ctx, waiter, PayRequest{OrderID: order.ID, Amount: decimal.NewFromInt(100000), Method: "cash"})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	assert.Equal(t, before, f.snapshot(t, order.ID))

	res, err := f.svc.Pay(ctx, admin, PayRequest{OrderID: order.ID, Amount: decimal.RequireFromString("100000.00"), Method: " Nequi "})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentNequi, res.Payment.Method)
	assert.Nil(t, res.Payment.Reference)
}

func TestChangeStatus(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	view, err := f.svc.ChangeStatus(ctx, admin, order.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, view.State)

	// Delivered orders still accept lines.
	_, err = f.svc.AddLine(ctx, waiter, order.ID, f.product.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, admin, order.ID, "cooking")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	_, err = f.svc.ChangeStatus(ctx, admin, order.ID, "paid")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	_, err = f.svc.ChangeStatus(ctx, admin, 999, "pending")
	assert.True(t, errors.Is(err, apperrors.ErrOrderNotFound))

	_, err = f.svc.ChangeStatus(ctx, waiter, order.ID, "pending")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	view, err = f.svc.ChangeStatus(ctx, admin, order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, view.State)
	assert.True(t, view.Total.Equal(decimal.NewFromInt(50000)), "status changes leave the total alone")

	var changes int
	for _, e := range f.recorder.Events {
		if e.EventType == events.EventOrderStatusChanged {
			changes++
		}
	}
	assert.Equal(t, 2, changes)
}

func TestRelease_Strict(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	order, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	_, err = f.svc.Release(ctx, cashier, f.table.ID)
	require.True(t, errors.Is(err, apperrors.ErrActiveOrderExists), "got %v", err)
	assert.Equal(t, order.ID, apperrors.From(err).Details["order_id"])

	_, err = f.svc.Pay(ctx, cashier, PayRequest{OrderID: order.ID, Amount: decimal.Zero, Method: "card"})
	require.NoError(t, err)

	_, err = f.svc.OpenOrder(ctx, waiter, f.table.ID)
	assert.True(t, errors.Is(err, apperrors.ErrTableNotAvailable), "paid table waits for release")

	table, err := f.svc.Release(ctx, cashier, f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, table.State)

	_, err = f.svc.Release(ctx, cashier, 999)
	assert.True(t, errors.Is(err, apperrors.ErrTableNotFound))
	_, err = f.svc.Release(ctx, waiter, f.table.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.svc.OpenOrder(ctx, waiter, f.table.ID)
	assert.NoError(t, err)
}

func TestRelease_Permissive(t *testing.T) {
	f := newFixture(t, Options{StrictRelease: false})
	ctx := context.Background()
	_, err := f.svc.OpenOrder(ctx, waiter, f.table.ID)
	require.NoError(t, err)

	table, err := f.svc.Release(ctx, admin, f.table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, table.State)
	assert.Equal(t, events.EventTableReleased, f.recorder.Types()[len(f.recorder.Events)-1])
}

func TestBranchScoping(t *testing.T) {
	f := strict(t)
	ctx := context.Background()
	other := dbtest.Branch(t, f.db, "Norte")
	otherTable := dbtest.Table(t, f.db, other.ID, 1)

	local := auth.Identity{UserID: 7, Role: auth.RoleWaiter, BranchID: f.branch.ID}

	_, err := f.svc.OpenOrder(ctx, local, otherTable.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	order, err := f.svc.OpenOrder(ctx, local, f.table.ID)
	require.NoError(t, err)
	_, err = f.svc.OpenOrder(ctx, admin, otherTable.ID)
	require.NoError(t, err)

	tables, err := f.svc.ListTables(ctx, local, 0)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, f.table.ID, tables[0].ID)

	_, err = f.svc.ListTables(ctx, local, other.ID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	orders, meta, err := f.svc.ListOrders(ctx, local, OrderFilter{}, database.Page{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.Equal(t, int64(1), meta.TotalCount)

	all, _, err := f.svc.ListOrders(ctx, admin, OrderFilter{State: "pending"}, database.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, _, err = f.svc.ListOrders(ctx, admin, OrderFilter{State: "lost"}, database.Page{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
}
