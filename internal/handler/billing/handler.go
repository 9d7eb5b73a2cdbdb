package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/handler"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/service/billing"
)

type Handler struct {
	service billing.Servicer
}

func NewHandler(service billing.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	billings := r.Group("/billings")
	{
		billings.GET("", h.ListBillings)
		billings.GET("/:id", h.GetBilling)
		billings.GET("/:id/payments", h.ListPayments)
		billings.POST("/:id/payments", h.RecordPayment)
		billings.PATCH("/:id/fees", h.UpdateFees)
	}
	r.GET("/bookings/:id/billing", h.GetBillingByBooking)
}

func (h *Handler) GetBilling(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid billing ID"))
		return
	}

	bill, err := h.service.GetBilling(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}

func (h *Handler) GetBillingByBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	bill, err := h.service.GetBillingByBooking(c.Request.Context(), bookingID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}

func (h *Handler) ListBillings(c *gin.Context) {
	unpaidOnly := c.Query("unpaid") == "true"

	billings, err := h.service.ListBillings(c.Request.Context(), unpaidOnly)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(billings))
}

func (h *Handler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid billing ID"))
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(payments))
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid billing ID"))
		return
	}

	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	bill, err := h.service.RecordPayment(c.Request.Context(), id, &req, actorID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(bill))
}

func (h *Handler) UpdateFees(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid billing ID"))
		return
	}

	var req model.UpdateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	bill, err := h.service.UpdateFees(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
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
