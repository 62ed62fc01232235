package domain

import (
	"fmt"
	"math"
)

// MaxQuantity is the largest quantity or stock level storage can hold.
const MaxQuantity = math.MaxInt32

// LineItem is anything priced as unit price times quantity.
type LineItem interface {
	Amounts() (unitPrice int64, quantity int)
}

// Total folds unit price times quantity over items. It is the only way cart
// and order totals are computed. Amounts that do not fit in int64 fail with
// ErrValidation.
func Total[T LineItem](items []T) (int64, error) {
	var total int64
	for _, item := range items {
		price, quantity := item.Amounts()
		subtotal, ok := multiply(price, int64(quantity))
		if !ok {
			return 0, fmt.Errorf("%w: line amount %d x %d is out of range", ErrValidation, price, quantity)
		}
		if (subtotal > 0 && total > math.MaxInt64-subtotal) || (subtotal < 0 && total < math.MinInt64-subtotal) {
			return 0, fmt.Errorf("%w: total amount is out of range", ErrValidation)
		}
		total += subtotal
	}
	return total, nil
}

func multiply(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}
