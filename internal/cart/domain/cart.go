package domain

import "time"

// NoCartID marks a product that has no cart line.
const NoCartID int64 = -1

// CartLine is one product in the cart. A quantity of zero is never stored:
// the line is removed instead.
type CartLine struct {
	CartID    int64
	ProductID int64
	Quantity  int
	AddedAt   time.Time
}

func (l CartLine) Persisted() bool {
	return l.CartID > 0
}
