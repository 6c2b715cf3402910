package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resto-system/internal/apperrors"
	"resto-system/internal/database"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

func errorResponse(code, message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Error:   code,
	}
}

// --- Helper for handling service errors ---
func handleServiceError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	_ = c.Error(err)

	resp := errorResponse(appErr.Code, appErr.Message)
	if appErr.Kind == apperrors.KindUnexpected {
		resp.Message = "internal server error"
	} else if len(appErr.Details) > 0 {
		resp.Details = appErr.Details
	}
	c.JSON(appErr.Kind.HTTPStatus(), resp)
}

func bindError(c *gin.Context, err error) {
	resp := errorResponse(apperrors.ErrValidation.Code, "invalid request body")
	resp.Details = map[string]string{"reason": err.Error()}
	c.JSON(http.StatusBadRequest, resp)
}

func parseIntParam(c *gin.Context, param string) (int32, bool) {
	val, err := strconv.ParseInt(c.Param(param), 10, 32)
	if err != nil || val <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse(apperrors.ErrValidation.Code, "invalid "+param))
		return 0, false
	}
	return int32(val), true
}

func parseInt64Param(c *gin.Context, param string) (int64, bool) {
	val, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || val <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse(apperrors.ErrValidation.Code, "invalid "+param))
		return 0, false
	}
	return val, true
}

type PageQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20"`
}

func (q PageQuery) page() database.Page {
	return database.Page{Page: q.Page, PageSize: q.PageSize}
}
