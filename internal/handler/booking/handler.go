package booking

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/handler"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/service/booking"
)

type Handler struct {
	service booking.Servicer
}

func NewHandler(service booking.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes booking creation without auth; patients book
// through the clinic site.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/bookings", h.CreateBooking)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/confirm", h.ConfirmBooking)
		bookings.POST("/:id/consultation/start", h.StartConsultation)
		bookings.POST("/:id/consultation/complete", h.CompleteConsultation)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
	r.GET("/appointments", h.ListAppointments)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	booked, err := h.service.CreateBooking(c.Request.Context(), &req, actorID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(booked))
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	booked, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(booked))
}

func (h *Handler) ListBookings(c *gin.Context) {
	filters := &model.BookingFilters{
		Status:       model.BookingStatus(c.Query("status")),
		Consultation: model.ConsultationStatus(c.Query("consultation_status")),
		PatientEmail: c.Query("patient_email"),
	}
	if date := c.Query("start_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			filters.StartDate = parsed
		}
	}
	if date := c.Query("end_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			filters.EndDate = parsed
		}
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.service.ConfirmBooking)
}

func (h *Handler) StartConsultation(c *gin.Context) {
	h.transition(c, h.service.StartConsultation)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	h.transition(c, h.service.CancelBooking)
}

func (h *Handler) CompleteConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	result, err := h.service.CompleteConsultation(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var startDate, endDate time.Time
	if date := c.Query("start_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			startDate = parsed
		}
	}
	if date := c.Query("end_date"); date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			endDate = parsed
		}
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), startDate, endDate)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Booking, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking ID"))
		return
	}

	booked, err := fn(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(booked))
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
