package pos

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/handler"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/service/pos"
)

type Handler struct {
	service pos.Servicer
}

func NewHandler(service pos.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sales := r.Group("/pos/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
		sales.GET("/:id/items", h.ListItems)
		sales.POST("/:id/items", h.AddItem)
		sales.POST("/:id/complete", h.CompleteSale)
		sales.POST("/:id/cancel", h.CancelSale)
		sales.POST("/:id/refund", h.RefundSale)
	}
	items := r.Group("/pos/items")
	{
		items.PATCH("/:id/quantity", h.UpdateItemQuantity)
		items.DELETE("/:id", h.RemoveItem)
	}
}

func (h *Handler) CreateSale(c *gin.Context) {
	var req model.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), &req, actorID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sale))
}

func (h *Handler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid sale ID"))
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sale))
}

func (h *Handler) ListSales(c *gin.Context) {
	filters := &model.SaleFilters{
		Status: model.SaleStatus(c.Query("status")),
	}
	if date := c.Query("start_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			filters.StartDate = parsed
		}
	}
	if date := c.Query("end_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			filters.EndDate = parsed.Add(24*time.Hour - time.Second)
		}
	}

	sales, err := h.service.ListSales(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sales))
}

func (h *Handler) ListItems(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid sale ID"))
		return
	}

	items, err := h.service.ListItems(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) AddItem(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid sale ID"))
		return
	}

	var req model.AddSaleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sale, err := h.service.AddItem(c.Request.Context(), saleID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sale))
}

func (h *Handler) UpdateItemQuantity(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sale, err := h.service.UpdateItemQuantity(c.Request.Context(), itemID, req.Quantity)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sale))
}

func (h *Handler) RemoveItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid item ID"))
		return
	}

	sale, err := h.service.RemoveItem(c.Request.Context(), itemID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sale))
}

func (h *Handler) CompleteSale(c *gin.Context) {
	h.transition(c, h.service.CompleteSale)
}

func (h *Handler) CancelSale(c *gin.Context) {
	h.transition(c, h.service.CancelSale)
}

func (h *Handler) RefundSale(c *gin.Context) {
	h.transition(c, h.service.RefundSale)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.POSSale, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid sale ID"))
		return
	}

	sale, err := fn(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sale))
}

func actorID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("userID")
	if !exists {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
