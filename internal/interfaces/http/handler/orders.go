package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/dto"
)

// OrderHandler serves the order list and status changes
type OrderHandler struct {
	BaseHandler
	reports   *desk.ReportService
	lifecycle *desk.LifecycleService
	orders    *desk.OrderService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(reports *desk.ReportService, lifecycle *desk.LifecycleService, orders *desk.OrderService) *OrderHandler {
	return &OrderHandler{reports: reports, lifecycle: lifecycle, orders: orders}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/preview", h.Preview)
	g.POST("/:id/approve", h.Approve)
	g.PUT("/:id/status", h.SetStatus)
}

// List godoc
// @Summary      List orders
// @Description  List today's orders or every order, newest first, with the product catalog
// @Tags         orders
// @Produce      json
// @Param        scope query string false "Listing scope" Enums(today, all) default(today)
// @Success      200 {object} dto.Response{data=desk.Listing}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	scope, err := desk.ParseScope(c.Query("scope"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	listing, err := h.reports.Orders(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, listing)
}

// Create godoc
// @Summary      Place an order
// @Description  Price and place a shop's order before the daily cut-off
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "Order to place"
// @Success      201 {object} dto.Response{data=order.Order}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	created, err := h.orders.Create(c.Request.Context(), req.ToDraft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Preview godoc
// @Summary      Preview an order
// @Description  Price an order against the current catalog without placing it
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "Order to price"
// @Success      200 {object} dto.Response{data=order.Order}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/preview [post]
func (h *OrderHandler) Preview(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	priced, err := h.orders.Preview(c.Request.Context(), req.ToDraft())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, priced)
}

// Approve godoc
// @Summary      Approve an order
// @Description  Move a pending order to approved
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=order.Order}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	snap, err := h.lifecycle.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondWithOrder(c, snap, id)
}

// SetStatus godoc
// @Summary      Change order status
// @Description  Set an order's status directly
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body dto.StatusRequest true "New status"
// @Success      200 {object} dto.Response{data=order.Order}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) SetStatus(c *gin.Context) {
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	snap, err := h.lifecycle.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondWithOrder(c, snap, id)
}

func (h *OrderHandler) respondWithOrder(c *gin.Context, snap *desk.Snapshot, id string) {
	if o, ok := snap.Find(id); ok {
		h.Success(c, o)
		return
	}
	h.Success(c, nil)
}
