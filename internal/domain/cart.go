package domain

import "time"

type CartItem struct {
	ID          string `json:"-"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

func (i CartItem) Amounts() (int64, int) {
	return i.UnitPrice, i.Quantity
}

type Cart struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	TotalAmount int64      `json:"totalAmount"`
	Items       []CartItem `json:"items"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Item returns the line for productID, or nil when the cart has none.
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
