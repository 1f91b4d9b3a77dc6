package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kwatanabe/portfolio-api/internal/dto"
	apperrors "github.com/kwatanabe/portfolio-api/internal/errors"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

// ProjectHandler exposes the project aggregate endpoints.
type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func respondUpsertError(c *gin.Context, err error) {
	var conflict *services.NameConflictError
	switch {
	case errors.Is(err, services.ErrProjectNameRequired):
		apperrors.BadRequest(c, "Project name is required")
	case errors.As(err, &conflict):
		apperrors.Conflict(c, conflict.Error())
	default:
		apperrors.InternalError(c, "Failed to save project")
	}
}

// ListProjects returns every project with children attached.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.ListProjects()
	if err != nil {
		apperrors.InternalError(c, "Failed to list projects")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// CreateProject applies a full aggregate payload.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var payload dto.ProjectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projects.UpsertProject(payload.ToInput())
	if err != nil {
		respondUpsertError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns one project with children attached.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projects.GetProject(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			apperrors.NotFound(c, "Project not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject applies a full aggregate payload to an existing id. An id
// that does not exist yet is created under that id.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var payload dto.ProjectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	projectID := c.Param("id")
	if payload.ID != "" && payload.ID != projectID {
		apperrors.BadRequest(c, "Project ID mismatch")
		return
	}
	payload.ID = projectID

	project, err := h.projects.UpsertProject(payload.ToInput())
	if err != nil {
		respondUpsertError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject removes a project and everything it owns.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projects.DeleteProject(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			apperrors.NotFound(c, "Project not found")
			return
		}
		apperrors.InternalError(c, "Failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}
