package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Checkout handles POST /api/v1/orders/checkout.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed checkout request"})
		return
	}

	identity := CurrentIdentity(c)
	checkout := model.CheckoutRequest{
		BuyerID:  identity.BuyerID,
		UserName: identity.UserName,
		Address: model.Address{
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			Country: req.Country,
			ZipCode: req.ZipCode,
		},
		Items: make([]model.CheckoutItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		checkout.Items = append(checkout.Items, model.CheckoutItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PictureURL:  item.PictureURL,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	order, err := h.facade.Checkout(c.Request.Context(), checkout)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{OrderID: order.ID, OrderCode: order.Code})
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentIdentity(c).UserName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderSummary, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderSummary(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if order.UserName != CurrentIdentity(c).UserName {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Delete handles DELETE /api/v1/orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toOrderSummary(order model.Order) dto.OrderSummary {
	return dto.OrderSummary{
		OrderID:   order.ID,
		OrderCode: order.Code,
		Date:      order.CreatedAt,
		Status:    string(order.Status),
		Total:     order.TotalPrice(),
	}
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			PictureURL:  item.PictureURL,
			UnitPrice:   item.UnitPrice,
			Units:       item.Quantity,
		})
	}
	a := order.Address
	return dto.OrderResponse{
		OrderSummary: toOrderSummary(order),
		Address:      dto.Address{Street: a.Street, City: a.City, State: a.State, Country: a.Country, ZipCode: a.ZipCode},
		Items:        items,
	}
}
