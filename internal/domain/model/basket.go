package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BasketItem is a product placed in the shopping basket.
type BasketItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	PictureURL  string          `json:"pictureUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Basket is the shopping cart of a single user, keyed by user name.
type Basket struct {
	UserName  string       `json:"userName"`
	Items     []BasketItem `json:"items"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// TotalPrice sums price times quantity of all items.
func (b *Basket) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
