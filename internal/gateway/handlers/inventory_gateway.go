package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resto-system/internal/gateway/middleware"
	"resto-system/internal/services/inventory"
)

type InventoryHTTPHandler struct {
	ledger *inventory.Ledger
}

func NewInventoryHTTPHandler(ledger *inventory.Ledger) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{
		ledger: ledger,
	}
}

type AdjustStockRequest struct {
	Quantity int32  `json:"quantity"`
	Kind     string `json:"kind" binding:"required"`
}

type InitProductStockRequest struct {
	AlertThreshold int32 `json:"alert_threshold"`
}

type ListInventoryQuery struct {
	PageQuery
	BranchID  int32 `form:"branch_id"`
	ProductID int32 `form:"product_id"`
	LowStock  bool  `form:"low_stock"`
}

type ListMovementsQuery struct {
	PageQuery
	ProductID int32  `form:"product_id"`
	BranchID  int32  `form:"branch_id"`
	Reference string `form:"reference"`
}

// Inventory endpoints
func (h *InventoryHTTPHandler) AdjustStock(c *gin.Context) {
	recordID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.ledger.AdjustStock(c.Request.Context(), middleware.IdentityFrom(c), recordID, req.Quantity, req.Kind)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Stock adjusted successfully", res))
}

func (h *InventoryHTTPHandler) GetRecord(c *gin.Context) {
	recordID, ok := parseInt64Param(c, "id")
	if !ok {
		return
	}

	rec, err := h.ledger.GetRecord(c.Request.Context(), middleware.IdentityFrom(c), recordID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Inventory record retrieved successfully", rec))
}

func (h *InventoryHTTPHandler) ListInventory(c *gin.Context) {
	var query ListInventoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	records, meta, err := h.ledger.ListRecords(c.Request.Context(), middleware.IdentityFrom(c), inventory.RecordFilter{
		BranchID:     query.BranchID,
		ProductID:    query.ProductID,
		LowStockOnly: query.LowStock,
	}, query.page())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Inventory retrieved successfully", records, meta))
}

func (h *InventoryHTTPHandler) ListMovements(c *gin.Context) {
	var query ListMovementsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	movements, meta, err := h.ledger.ListMovements(c.Request.Context(), middleware.IdentityFrom(c), inventory.MovementFilter{
		ProductID: query.ProductID,
		BranchID:  query.BranchID,
		Reference: query.Reference,
	}, query.page())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Stock movements retrieved successfully", movements, meta))
}

// Product endpoints
func (h *InventoryHTTPHandler) InitProductStock(c *gin.Context) {
	productID, ok := parseIntParam(c, "id")
	if !ok {
		return
	}
	var req InitProductStockRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	records, err := h.ledger.EnsureRecords(c.Request.Context(), middleware.IdentityFrom(c), productID, req.AlertThreshold)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product stock initialized successfully", records))
}
