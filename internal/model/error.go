package model

// Standard error codes for domain errors
const (
	ErrCodeEmptyCart        = "EMPTY_CART"
	ErrCodeNoAddress        = "NO_ADDRESS"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNotSignedIn      = "NOT_SIGNED_IN"
	ErrCodeProvisionalItem  = "PROVISIONAL_ITEM"
	ErrCodeInvalidCEP       = "INVALID_CEP"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
)

// DomainError is a business-logic error with a stable code.
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
	ErrEmptyCart       = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrNoAddress       = NewDomainError(ErrCodeNoAddress, "Select an address to continue")
	ErrNotFound        = NewDomainError(ErrCodeNotFound, "Record not found")
	ErrNotSignedIn     = NewDomainError(ErrCodeNotSignedIn, "No authenticated session")
	ErrProvisionalItem = NewDomainError(ErrCodeProvisionalItem, "Cart item not yet confirmed by the backend; reload the cart first")
	ErrInvalidCEP      = NewDomainError(ErrCodeInvalidCEP, "CEP must contain exactly 8 digits")
	ErrInvalidState    = NewDomainError(ErrCodeInvalidState, "State must be a 2-letter code")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
)
