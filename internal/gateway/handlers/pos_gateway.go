package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"resto-system/internal/gateway/middleware"
	"resto-system/internal/services/pos"
)

type POSHTTPHandler struct {
	pos *pos.Service
}

func NewPOSHTTPHandler(service *pos.Service) *POSHTTPHandler {
	return &POSHTTPHandler{
		pos: service,
	}
}

// Request structs
type OpenOrderRequest struct {
	TableID int32 `json:"table_id" binding:"required"`
}

type AddLineRequest struct {
	OrderID   int64 `json:"order_id" binding:"required"`
	ProductID int32 `json:"product_id" binding:"required"`
	Quantity  int32 `json:"quantity"`
}

type ChangeStatusRequest struct {
	State string `json:"state" binding:"required"`
}

type PayRequest struct {
	OrderID   int64            `json:"order_id" binding:"required"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Method    string           `json:"method" binding:"required"`
	Reference string           `json:"reference"`
}

// Query structs
type ListOrdersQuery struct {
	PageQuery
	TableID  int32  `form:"table_id"`
	BranchID int32  `form:"branch_id"`
	State    string `form:"state"`
}

type ListTablesQuery struct {
	BranchID int32 `form:"branch_id"`
}

// --- Order Handlers ---

func (h *POSHTTPHandler) OpenOrder(c *gin.Context) {
	var req OpenOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.pos.OpenOrder(c.Request.Context(), middleware.IdentityFrom(c), req.TableID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order opened successfully", order))
}

func (h *POSHTTPHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.pos.GetOrder(c.Request.Context(), middleware.IdentityFrom(c), orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	orders, meta, err := h.pos.ListOrders(c.Request.Context(), middleware.IdentityFrom(c), pos.OrderFilter{
		TableID:  query.TableID,
		BranchID: query.BranchID,
		State:    query.State,
	}, query.page())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders, meta))
}

func (h *POSHTTPHandler) ChangeStatus(c *gin.Context) {
	orderID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.pos.ChangeStatus(c.Request.Context(), middleware.IdentityFrom(c), orderID, req.State)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order status updated successfully", order))
}

// --- Order Line Handlers ---

func (h *POSHTTPHandler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.pos.AddLine(c.Request.Context(), middleware.IdentityFrom(c), req.OrderID, req.ProductID, req.Quantity)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Line added successfully", res))
}

func (h *POSHTTPHandler) RemoveLine(c *gin.Context) {
	lineID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	order, err := h.pos.RemoveLine(c.Request.Context(), middleware.IdentityFrom(c), lineID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Line removed successfully", order))
}

// --- Payment Handlers ---

func (h *POSHTTPHandler) Pay(c *gin.Context) {
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.pos.Pay(c.Request.Context(), middleware.IdentityFrom(c), pos.PayRequest{
		OrderID:   req.OrderID,
		Amount:    *req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Payment processed successfully", res))
}

// --- Table Handlers ---

func (h *POSHTTPHandler) FreeTable(c *gin.Context) {
	tableID, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	table, err := h.pos.Release(c.Request.Context(), middleware.IdentityFrom(c), tableID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Table freed successfully", table))
}

func (h *POSHTTPHandler) GetTable(c *gin.Context) {
	tableID, ok := parseIntParam(c, "id")
	if !ok {
		return
	}

	table, err := h.pos.GetTable(c.Request.Context(), middleware.IdentityFrom(c), tableID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Table retrieved successfully", table))
}

func (h *POSHTTPHandler) ListTables(c *gin.Context) {
	var query ListTablesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	tables, err := h.pos.ListTables(c.Request.Context(), middleware.IdentityFrom(c), query.BranchID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Tables retrieved successfully", tables))
}
