package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/server/http/dto"
)

// BasketHandler serves the caller's basket.
type BasketHandler struct {
	facade BasketFacade
}

// NewBasketHandler constructs BasketHandler.
func NewBasketHandler(facade BasketFacade) *BasketHandler {
	return &BasketHandler{facade: facade}
}

// Get handles GET /api/v1/basket.
func (h *BasketHandler) Get(c *gin.Context) {
	basket, err := h.facade.Basket(c.Request.Context(), CurrentIdentity(c).UserName)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBasketResponse(basket))
}

// Update handles POST /api/v1/basket.
func (h *BasketHandler) Update(c *gin.Context) {
	var req dto.BasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed basket"})
		return
	}

	items := make([]model.BasketItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.BasketItem(item))
	}

	basket, err := h.facade.UpdateBasket(c.Request.Context(), CurrentIdentity(c).UserName, items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBasketResponse(basket))
}

// Delete handles DELETE /api/v1/basket.
func (h *BasketHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteBasket(c.Request.Context(), CurrentIdentity(c).UserName); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toBasketResponse(basket *model.Basket) dto.BasketResponse {
	items := make([]dto.BasketItem, 0, len(basket.Items))
	for _, item := range basket.Items {
		items = append(items, dto.BasketItem(item))
	}
	return dto.BasketResponse{BuyerID: basket.UserName, Items: items, Total: basket.TotalPrice()}
}
