package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blinkforge/blinkforge-api/internal/application"
	"github.com/blinkforge/blinkforge-api/internal/ui"
	"github.com/blinkforge/blinkforge-api/pkg/response"
	"github.com/blinkforge/blinkforge-api/pkg/validation"
)

// UIHandler serves the server-held client UI state: the view router and the
// dashboard for the signed-in user.
type UIHandler struct {
	UI     *ui.Manager
	Logger *logrus.Logger
}

func NewUIHandler(uiMgr *ui.Manager, logger *logrus.Logger) *UIHandler {
	return &UIHandler{UI: uiMgr, Logger: logger}
}

// session fetches the caller's UI session or writes a 401.
func (h *UIHandler) session(c *gin.Context) (*ui.Session, bool) {
	s, ok := h.UI.Get(c.GetString("userID"))
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "no active ui session", nil)
		return nil, false
	}
	return s, true
}

func (h *UIHandler) CurrentView(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"view": s.Router.Current()}, "current view", nil)
}

type navigateRequest struct {
	View string `json:"view" binding:"required"`
}

func (h *UIHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	got := s.Navigate(ui.View(req.View))
	response.Success(c, http.StatusOK, gin.H{"view": got}, "navigated", nil)
}

// LoadDashboard triggers one list call for the dashboard and returns the
// resulting snapshot. A load failure still renders: the snapshot carries the
// error phase and an empty list.
func (h *UIHandler) LoadDashboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Dashboard.Load(c.Request.Context()); err != nil {
		response.Success(c, http.StatusOK, s.Dashboard.Snapshot(), "dashboard load failed", nil)
		return
	}
	response.Success(c, http.StatusOK, s.Dashboard.Snapshot(), "dashboard loaded", nil)
}

func (h *UIHandler) Dashboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, s.Dashboard.Snapshot(), "dashboard", nil)
}

// DeleteProject deletes one dashboard row. The row's pending marker and the
// local removal are handled by the dashboard itself.
func (h *UIHandler) DeleteProject(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Dashboard.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ui.ErrDeleteInFlight) {
			response.Error[any](c, http.StatusConflict, "delete already in flight", nil)
			return
		}
		response.Error[any](c, http.StatusInternalServerError, "failed to delete project", nil)
		return
	}
	response.Success(c, http.StatusOK, s.Dashboard.Snapshot(), "project deleted", nil)
}

// Pricing serves the static plan catalog.
func (h *UIHandler) Pricing(c *gin.Context) {
	response.Success(c, http.StatusOK, application.PricingTiers(), "pricing", nil)
}
