package dto

import "github.com/shopspring/decimal"

// BasketItem is a product in the basket.
type BasketItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	PictureURL  string          `json:"pictureUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// BasketRequest replaces the caller's basket.
type BasketRequest struct {
	Items []BasketItem `json:"items"`
}

// BasketResponse is the caller's basket.
type BasketResponse struct {
	BuyerID string          `json:"buyerId"`
	Items   []BasketItem    `json:"items"`
	Total   decimal.Decimal `json:"total"`
}
