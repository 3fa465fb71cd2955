package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeInvalidParameter       = "INVALID_PARAMETER"
	ErrCodeEmptyCart              = "EMPTY_CART"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeCartItemNotFound       = "CART_ITEM_NOT_FOUND"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInvalidProduct         = "INVALID_PRODUCT"
	ErrCodeInvalidShippingAddress = "INVALID_SHIPPING_ADDRESS"
	ErrCodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so a detailed error
// satisfies errors.Is against its sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart              = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInsufficientStock      = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidStatus          = NewDomainError(ErrCodeInvalidStatus, "Status must be one of PENDING, PROCESSING, SHIPPED, DELIVERED, CANCELLED")
	ErrInvalidTransition      = NewDomainError(ErrCodeInvalidTransition, "Status transition is not allowed")
	ErrOrderNotFound          = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound        = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartItemNotFound       = NewDomainError(ErrCodeCartItemNotFound, "Item is not in the cart")
	ErrInvalidQuantity        = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be between 1 and 10")
	ErrInvalidProduct         = NewDomainError(ErrCodeInvalidProduct, "Product fields are invalid")
	ErrInvalidShippingAddress = NewDomainError(ErrCodeInvalidShippingAddress, "Shipping address is incomplete")
	ErrInvalidPaymentMethod   = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method is required")
	ErrUnauthorised           = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden              = NewDomainError(ErrCodeForbidden, "Insufficient privileges")
)

// NewInsufficientStockError names the product that cannot be fulfilled and
// how many units remain.
func NewInsufficientStockError(productID, productName string, available, requested int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s: only %d available", productName, available),
		Details: map[string]any{
			"productId":   productID,
			"productName": productName,
			"available":   available,
			"requested":   requested,
		},
	}
}

// NewInvalidJSONError reports a request body that could not be decoded.
func NewInvalidJSONError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidJSON,
		Message: "Request body is not valid JSON",
	}
}

// NewInvalidParameterError names a malformed path or query parameter.
func NewInvalidParameterError(name string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidParameter,
		Message: fmt.Sprintf("Invalid %s parameter", name),
		Details: map[string]any{"parameter": name},
	}
}

// NewInvalidProductError describes which product field failed validation.
func NewInvalidProductError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidProduct,
		Message: reason,
	}
}

// NewInvalidTransitionError names the rejected transition.
func NewInvalidTransitionError(from, to OrderStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot move order from %s to %s", from, to),
		Details: map[string]any{
			"from": string(from),
			"to":   string(to),
		},
	}
}

// AsDomainError returns the DomainError in err's chain, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
