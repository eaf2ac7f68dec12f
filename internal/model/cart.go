package model

// CartItem represents one product selection in the authenticated user's
// cart. The ID is assigned by the backend once the row is persisted; items
// added optimistically carry a negative provisional ID until the next
// reload replaces them with the backend's row.
type CartItem struct {
	ID        int64   `json:"id" db:"id"`
	ProductID int64   `json:"productId" db:"produto_id"`
	Quantity  int     `json:"quantity" db:"quantidade"`
	Product   Product `json:"product" db:"produto"`
}

// Provisional reports whether the item still carries a client-generated
// placeholder ID.
func (i CartItem) Provisional() bool {
	return i.ID < 0
}
