package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmagtibay/clinic-api/internal/handler"
	"github.com/rmagtibay/clinic-api/internal/model"
	"github.com/rmagtibay/clinic-api/internal/service/catalog"
)

type Handler struct {
	service catalog.Servicer
}

func NewHandler(service catalog.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes exposes the service list; the booking form needs it
// before any login exists.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/services", h.ListServices)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.POST("", h.CreateService)
		services.GET("/:id", h.GetService)
		services.PUT("/:id", h.UpdateService)
	}
}

func (h *Handler) CreateService(c *gin.Context) {
	var svc model.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.CreateService(c.Request.Context(), &svc); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	var svc model.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	svc.ID = id

	if err := h.service.UpdateService(c.Request.Context(), &svc); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) ListServices(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	services, err := h.service.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}
