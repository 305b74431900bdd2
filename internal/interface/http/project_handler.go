package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blinkforge/blinkforge-api/internal/application"
	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	"github.com/blinkforge/blinkforge-api/internal/ui"
	"github.com/blinkforge/blinkforge-api/pkg/response"
	"github.com/blinkforge/blinkforge-api/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	UI     *ui.Manager
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, uiMgr *ui.Manager, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, UI: uiMgr, Logger: logger}
}

type createProjectRequest struct {
	Prompt string `json:"prompt" binding:"required,prompt"`
}

// Create starts the prompt -> project flow. Returns 202: the record exists
// with status creating and the build finishes asynchronously.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	user := &entity.User{
		ID:    c.GetString("userID"),
		Email: c.GetString("userEmail"),
	}
	p, err := h.Svc.CreateFromPrompt(c.Request.Context(), user, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyPrompt):
			response.Error[any](c, http.StatusBadRequest, "prompt must not be empty", nil)
		case errors.Is(err, application.ErrBuildPending):
			response.Error[any](c, http.StatusConflict, "a build is already pending", nil)
		default:
			response.Error[any](c, http.StatusInternalServerError, "failed to create project", nil)
		}
		return
	}

	// An accepted create lands the user on the dashboard, where the new
	// project shows up with its creating status.
	if s, ok := h.UI.Get(user.ID); ok {
		s.Navigate(ui.ViewDashboard)
	}
	response.Success(c, http.StatusAccepted, p, "project created", nil)
}

func (h *ProjectHandler) List(c *gin.Context) {
	uid := c.GetString("userID")
	items, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("project list failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list projects", nil)
		return
	}
	response.Success(c, http.StatusOK, items, "projects", map[string]any{"count": len(items)})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to delete project", nil)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "project deleted", nil)
}

func (h *ProjectHandler) Search(c *gin.Context) {
	uid := c.GetString("userID")
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), uid, q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("project search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
