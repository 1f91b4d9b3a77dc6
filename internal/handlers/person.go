package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kwatanabe/portfolio-api/internal/dto"
	apperrors "github.com/kwatanabe/portfolio-api/internal/errors"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

// PersonHandler exposes the people endpoints. All identity logic lives in the
// person service; the handler only translates HTTP.
type PersonHandler struct {
	people *services.PersonService
}

func NewPersonHandler(people *services.PersonService) *PersonHandler {
	return &PersonHandler{people: people}
}

// ListPeople returns all people, collapsing any remaining legacy duplicates.
func (h *PersonHandler) ListPeople(c *gin.Context) {
	people, err := h.people.ListDeduplicated()
	if err != nil {
		apperrors.InternalError(c, "Failed to list people")
		return
	}
	c.JSON(http.StatusOK, dto.ToPersonDTOs(people))
}

// CreatePerson resolves the payload to a canonical person, creating one if
// needed.
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var payload dto.PersonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	ref := payload.ToRef()
	person, err := h.people.Resolve(&ref)
	if err != nil {
		var conflict *services.NameConflictError
		if errors.As(err, &conflict) {
			apperrors.Conflict(c, conflict.Error())
			return
		}
		apperrors.InternalError(c, "Failed to create person")
		return
	}
	if person == nil {
		apperrors.BadRequest(c, "Person name is required")
		return
	}

	c.JSON(http.StatusCreated, dto.ToPersonDTO(*person))
}

// GetPerson returns one person by id.
func (h *PersonHandler) GetPerson(c *gin.Context) {
	person, err := h.people.GetPerson(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			apperrors.NotFound(c, "Person not found")
			return
		}
		apperrors.InternalError(c, "Failed to fetch person")
		return
	}
	c.JSON(http.StatusOK, dto.ToPersonDTO(*person))
}

// UpdatePerson applies an explicit edit to a person.
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	var payload dto.PersonPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	person, err := h.people.UpdatePerson(c.Param("id"), services.UpdatePersonInput{
		Name:  payload.Name,
		Team:  payload.Team,
		Email: payload.Email,
	})
	if err != nil {
		var nameConflict *services.NameConflictError
		var emailConflict *services.EmailConflictError
		switch {
		case errors.Is(err, services.ErrPersonNotFound):
			apperrors.NotFound(c, "Person not found")
		case errors.Is(err, services.ErrPersonNameRequired):
			apperrors.BadRequest(c, "Person name is required")
		case errors.As(err, &nameConflict):
			apperrors.Conflict(c, nameConflict.Error())
		case errors.As(err, &emailConflict):
			apperrors.Conflict(c, emailConflict.Error())
		default:
			apperrors.InternalError(c, "Failed to update person")
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToPersonDTO(*person))
}

// DeletePerson removes a person explicitly.
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	if err := h.people.DeletePerson(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrPersonNotFound) {
			apperrors.NotFound(c, "Person not found")
			return
		}
		apperrors.InternalError(c, "Failed to delete person")
		return
	}
	c.Status(http.StatusNoContent)
}
