package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/dto"
)

// MatrixHandler serves the daily matrix and the target reconciliation
type MatrixHandler struct {
	BaseHandler
	reports   *desk.ReportService
	reconcile *desk.ReconcileService
}

// NewMatrixHandler creates a MatrixHandler
func NewMatrixHandler(reports *desk.ReportService, reconcile *desk.ReconcileService) *MatrixHandler {
	return &MatrixHandler{reports: reports, reconcile: reconcile}
}

// RegisterRoutes registers the matrix routes
func (h *MatrixHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/matrix/daily")
	g.GET("", h.Daily)
	g.PUT("/targets", h.Stage)
	g.DELETE("/targets", h.Discard)
	g.GET("/plan", h.Plan)
	g.POST("/save", h.Save)
}

// Daily godoc
// @Summary      Get the daily matrix
// @Description  Shop by product quantities for one day. Only today's matrix is editable and carries the staged targets
// @Tags         matrix
// @Produce      json
// @Param        date query string false "Day to show (YYYY-MM-DD), defaults to today" format(date)
// @Success      200 {object} dto.Response{data=dto.MatrixResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /matrix/daily [get]
func (h *MatrixHandler) Daily(c *gin.Context) {
	today := h.reports.Today()
	day, ok := parseDay(c, "date", h.reports.Location(), today)
	if !ok {
		h.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	view, err := h.reports.DailyMatrix(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewMatrixResponse(view, day.Equal(today), h.reconcile.Pending()))
}

// Stage godoc
// @Summary      Stage target quantities
// @Description  Stage target quantities for today's cells and return the plan against the displayed matrix
// @Tags         matrix
// @Accept       json
// @Produce      json
// @Param        seq query int true "Seq of the displayed matrix" minimum(1)
// @Param        request body []dto.TargetEditRequest true "Cells to stage"
// @Success      200 {object} dto.Response{data=dto.StagedResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /matrix/daily/targets [put]
func (h *MatrixHandler) Stage(c *gin.Context) {
	var q dto.SnapshotQuery
	if !h.BindQuery(c, &q) {
		return
	}
	var req []dto.TargetEditRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.reconcile.Stage(q.Seq, dto.ToEdits(req)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.staged(c, q.Seq)
}

// Plan godoc
// @Summary      Get the save plan
// @Description  List the upserts a save would send, computed against the displayed matrix
// @Tags         matrix
// @Produce      json
// @Param        seq query int true "Seq of the displayed matrix" minimum(1)
// @Success      200 {object} dto.Response{data=dto.StagedResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /matrix/daily/plan [get]
func (h *MatrixHandler) Plan(c *gin.Context) {
	var q dto.SnapshotQuery
	if !h.BindQuery(c, &q) {
		return
	}
	h.staged(c, q.Seq)
}

func (h *MatrixHandler) staged(c *gin.Context, seq uint64) {
	plan, err := h.reconcile.Preview(seq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.StagedResponse{Seq: seq, Pending: dto.FromPending(h.reconcile.Pending()), Plan: plan})
}

// Discard godoc
// @Summary      Discard staged targets
// @Description  Drop every staged target without saving
// @Tags         matrix
// @Success      204
// @Router       /matrix/daily/targets [delete]
func (h *MatrixHandler) Discard(c *gin.Context) {
	h.reconcile.Discard()
	h.NoContent(c)
}

// Save godoc
// @Summary      Save staged targets
// @Description  Send the plan computed against the displayed matrix to the backend and reload it
// @Tags         matrix
// @Produce      json
// @Param        seq query int true "Seq of the displayed matrix" minimum(1)
// @Success      200 {object} dto.Response{data=desk.SaveResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{data=desk.SaveResult,error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /matrix/daily/save [post]
func (h *MatrixHandler) Save(c *gin.Context) {
	var q dto.SnapshotQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.reconcile.Save(c.Request.Context(), q.Seq)
	if err != nil {
		if result != nil {
			h.HandleErrorWithData(c, err, result)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
