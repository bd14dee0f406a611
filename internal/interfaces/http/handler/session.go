package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mehmetnuribasa/boreksan/internal/application/desk"
	"github.com/mehmetnuribasa/boreksan/internal/interfaces/http/dto"
)

// SessionHandler logs the desk in and out of the order backend
type SessionHandler struct {
	BaseHandler
	sessions *desk.SessionService
}

// NewSessionHandler creates a SessionHandler
func NewSessionHandler(sessions *desk.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes registers the session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/session")
	g.GET("", h.State)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
}

// Login godoc
// @Summary      Log the desk in
// @Description  Sign in to the order backend with the operator's credentials
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Operator credentials"
// @Success      200 {object} dto.Response{data=desk.SessionState}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}
	state, err := h.sessions.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// Logout godoc
// @Summary      Log the desk out
// @Description  End the backend session and forget the access token
// @Tags         session
// @Produce      json
// @Success      204
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// State godoc
// @Summary      Get session state
// @Description  Report whether the desk holds a live session and who is signed in
// @Tags         session
// @Produce      json
// @Success      200 {object} dto.Response{data=desk.SessionState}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session [get]
func (h *SessionHandler) State(c *gin.Context) {
	state, err := h.sessions.State(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}
