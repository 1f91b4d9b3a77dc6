package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kwatanabe/portfolio-api/internal/dto"
	apperrors "github.com/kwatanabe/portfolio-api/internal/errors"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

// PortfolioHandler exposes whole-portfolio export and import.
type PortfolioHandler struct {
	projects *services.ProjectService
}

func NewPortfolioHandler(projects *services.ProjectService) *PortfolioHandler {
	return &PortfolioHandler{projects: projects}
}

// Export returns a versioned snapshot of the portfolio, or of a single
// project when ?project_id= is given.
func (h *PortfolioHandler) Export(c *gin.Context) {
	var projects []dto.ProjectDTO

	if projectID := c.Query("project_id"); projectID != "" {
		project, err := h.projects.GetProject(projectID)
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apperrors.NotFound(c, "Project not found")
				return
			}
			apperrors.InternalError(c, "Failed to export project")
			return
		}
		projects = []dto.ProjectDTO{dto.ToProjectDTO(*project)}
	} else {
		all, err := h.projects.ListProjects()
		if err != nil {
			apperrors.InternalError(c, "Failed to export portfolio")
			return
		}
		projects = dto.ToProjectDTOs(all)
	}

	c.JSON(http.StatusOK, dto.ExportDTO{
		Version:    1,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Projects:   projects,
	})
}

// Import ingests a portfolio snapshot in replace or merge mode.
func (h *PortfolioHandler) Import(c *gin.Context) {
	var payload dto.ImportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Invalid import payload")
		return
	}

	inputs := make([]services.UpsertProjectInput, 0, len(payload.Projects))
	for _, project := range payload.Projects {
		inputs = append(inputs, project.ToInput())
	}

	projects, err := h.projects.ImportPortfolio(payload.Mode, inputs)
	if err != nil {
		var conflict *services.NameConflictError
		switch {
		case errors.Is(err, services.ErrInvalidImportMode):
			apperrors.BadRequest(c, "Invalid import mode")
		case errors.Is(err, services.ErrProjectNameRequired):
			apperrors.BadRequest(c, "Project name is required")
		case errors.As(err, &conflict):
			apperrors.Conflict(c, conflict.Error())
		default:
			apperrors.InternalError(c, "Failed to import portfolio")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}
