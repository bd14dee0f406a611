package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
)

// ReportHandler serves the monthly report, the daily rollup and the summary
type ReportHandler struct {
	BaseHandler
	reports *desk.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reports *desk.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports")
	g.GET("/monthly", h.Monthly)
	g.GET("/rollup", h.Rollup)
	g.GET("/summary", h.Summary)
}

// Monthly godoc
// @Summary      Get a shop's monthly report
// @Description  Per-day quantities and revenue for one shop over a calendar month
// @Tags         reports
// @Produce      json
// @Param        shop query string true "Shop key"
// @Param        month query string false "Month (YYYY-MM), defaults to the current month"
// @Success      200 {object} dto.Response{data=report.MonthlyReport}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		h.BadRequest(c, "shop is required")
		return
	}
	month := h.reports.Today()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, h.reports.Location())
		if err != nil {
			h.BadRequest(c, "month must be YYYY-MM")
			return
		}
		month = parsed
	}

	r, err := h.reports.Monthly(c.Request.Context(), shop, month.Year(), month.Month())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Rollup godoc
// @Summary      Get a shop's daily rollup
// @Description  One shop's quantities and revenue for a single day
// @Tags         reports
// @Produce      json
// @Param        shop query string true "Shop key"
// @Param        date query string false "Day (YYYY-MM-DD), defaults to today" format(date)
// @Success      200 {object} dto.Response{data=report.Rollup}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/rollup [get]
func (h *ReportHandler) Rollup(c *gin.Context) {
	shop := c.Query("shop")
	if shop == "" {
		h.BadRequest(c, "shop is required")
		return
	}
	day, ok := parseDay(c, "date", h.reports.Location(), h.reports.Today())
	if !ok {
		h.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	r, err := h.reports.Rollup(c.Request.Context(), shop, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// Summary godoc
// @Summary      Get the day summary
// @Description  Order counts by status and revenue across all shops for a day
// @Tags         reports
// @Produce      json
// @Param        date query string false "Day (YYYY-MM-DD), defaults to today" format(date)
// @Success      200 {object} dto.Response{data=report.Summary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	day, ok := parseDay(c, "date", h.reports.Location(), h.reports.Today())
	if !ok {
		h.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	s, err := h.reports.Summary(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s)
}
