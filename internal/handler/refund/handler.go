package refund

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pawhub/petcare-api/internal/handler"
	"github.com/pawhub/petcare-api/internal/middleware"
	"github.com/pawhub/petcare-api/internal/model"
	refundService "github.com/pawhub/petcare-api/internal/service/refund"
)

type Handler struct {
	service *refundService.Service
}

func NewHandler(service *refundService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid refund request ID"))
		return
	}

	req, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
}

func (h *Handler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid refund request ID"))
		return
	}

	var req model.ResolveRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resolved, err := h.service.Resolve(c.Request.Context(), id, req.Decision)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resolved))
}

func (h *Handler) List(c *gin.Context) {
	filters := &model.RefundFilters{
		Status: model.RefundStatus(c.Query("status")),
		Search: c.Query("search"),
	}

	requests, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	refunds := r.Group("/refunds")
	refunds.Use(auth.Authenticate(), auth.RequireRole(model.RoleAdmin))
	{
		refunds.GET("", h.List)
		refunds.GET("/:id", h.Get)
		refunds.POST("/:id/resolve", h.Resolve)
	}
}
