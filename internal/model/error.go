package model

import "fmt"

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidCart        = "INVALID_CART"
	ErrCodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"
	ErrCodeMalformedPayload   = "MALFORMED_PAYLOAD"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError carries a stable code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
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
	ErrInvalidCart        = NewDomainError(ErrCodeInvalidCart, "Order must contain at least one item with quantity of one or more")
	ErrGatewayUnavailable = NewDomainError(ErrCodeGatewayUnavailable, "Payment service unavailable, try again")
	ErrInvalidSignature   = NewDomainError(ErrCodeInvalidSignature, "Notification signature verification failed")
	ErrMalformedPayload   = NewDomainError(ErrCodeMalformedPayload, "Notification payload could not be parsed")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// ProductUnavailableError identifies which product made the cart
// unplaceable, so the client gets an actionable failure.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is unavailable", e.ProductID)
}

// NewProductUnavailableError creates a ProductUnavailableError for the
// given product.
func NewProductUnavailableError(productID string) *ProductUnavailableError {
	return &ProductUnavailableError{ProductID: productID}
}
