package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindValidation
	KindBusinessRule
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

// HTTPStatus maps an error kind to the status code returned by the REST API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBusinessRule:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Two errors are the same for errors.Is when
// their codes match, so derived instances still match their sentinel.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) clone() *Error {
	c := *e
	if e.Details != nil {
		c.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return &c
}

func (e *Error) WithMessagef(format string, args ...any) *Error {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	return c
}

func (e *Error) WithDetails(details map[string]any) *Error {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		c.Details[k] = v
	}
	return c
}

func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.Err = err
	return c
}

var (
	ErrUnexpected   = New(KindUnexpected, "UNEXPECTED", "unexpected error")
	ErrUnauthorized = New(KindUnauthorized, "UNAUTHORIZED", "missing or invalid token")
	ErrForbidden    = New(KindForbidden, "FORBIDDEN", "role is not allowed to perform this operation")
	ErrValidation   = New(KindValidation, "VALIDATION_ERROR", "invalid request")

	ErrBranchNotFound  = New(KindNotFound, "BRANCH_NOT_FOUND", "branch not found")
	ErrTableNotFound   = New(KindNotFound, "TABLE_NOT_FOUND", "table not found")
	ErrOrderNotFound   = New(KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrLineNotFound    = New(KindNotFound, "ORDER_LINE_NOT_FOUND", "order line not found")
	ErrProductNotFound = New(KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrRecordNotFound  = New(KindNotFound, "INVENTORY_RECORD_NOT_FOUND", "inventory record not found")

	ErrInvalidQuantity     = New(KindValidation, "INVALID_QUANTITY", "quantity must be greater than 0")
	ErrInvalidState        = New(KindValidation, "INVALID_STATE", "unknown order state")
	ErrInvalidMethod       = New(KindValidation, "INVALID_METHOD", "unknown payment method")
	ErrInvalidMovementKind = New(KindValidation, "INVALID_MOVEMENT_KIND", "movement kind not allowed")

	ErrTableNotAvailable = New(KindBusinessRule, "TABLE_NOT_AVAILABLE", "table is not free")
	ErrActiveOrderExists = New(KindBusinessRule, "ACTIVE_ORDER_EXISTS", "table still has an unpaid order")
	ErrInvalidTransition = New(KindBusinessRule, "INVALID_TRANSITION", "order state transition not allowed")
	ErrOrderClosed       = New(KindBusinessRule, "ORDER_CLOSED", "order is already paid")
	ErrProductInactive   = New(KindBusinessRule, "PRODUCT_INACTIVE", "product is not active")
	ErrInsufficientStock = New(KindBusinessRule, "INSUFFICIENT_STOCK", "insufficient stock")
	ErrNegativeStock     = New(KindBusinessRule, "NEGATIVE_STOCK", "movement would leave negative stock")
	ErrAlreadyPaid       = New(KindBusinessRule, "ALREADY_PAID", "order already paid")
	ErrAmountMismatch    = New(KindBusinessRule, "AMOUNT_MISMATCH", "payment amount does not match order total")
)

// Unexpected wraps a storage or infrastructure failure.
func Unexpected(err error) *Error {
	return ErrUnexpected.Wrap(err)
}

// From returns the classified error inside err, or an unexpected error
// wrapping it when err carries no classification.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unexpected(err)
}

func KindOf(err error) Kind {
	return From(err).Kind
}
