package repository

import (
	"github.com/kwatanabe/portfolio-api/internal/models"
)

// PersonRepository defines the interface for person data access. All
// name/email lookups are case-insensitive; callers receive
// gorm.ErrRecordNotFound when nothing matches.
type PersonRepository interface {
	// Create inserts a new person
	Create(person *models.Person) error

	// FindByID finds a person by ID
	FindByID(id string) (*models.Person, error)

	// FindByName finds a person by name, case-insensitively
	FindByName(name string) (*models.Person, error)

	// FindByEmail finds a person by email, case-insensitively
	FindByEmail(email string) (*models.Person, error)

	// List returns all people in creation order
	List() ([]models.Person, error)

	// Update persists changes to a person
	Update(person *models.Person) error

	// Delete removes a person; owning rows keep their denormalized names
	Delete(id string) error

	// ReassignReferences rewrites every reference to fromID (task and
	// subtask assignees, activity authors, stakeholder links) to point at
	// toID, dropping stakeholder links that would collide
	ReassignReferences(fromID, toID string) error
}

// ProjectRepository defines the interface for project aggregate data access.
type ProjectRepository interface {
	// Create inserts a new project row (scalars only)
	Create(project *models.Project) error

	// Save persists a project's scalar fields
	Save(project *models.Project) error

	// FindByID finds a project by ID without children
	FindByID(id string) (*models.Project, error)

	// FindByName finds a project by name, case-insensitively
	FindByName(name string) (*models.Project, error)

	// FindWithChildren loads a project with tasks, subtasks, activities,
	// stakeholders, and resolved people eagerly attached
	FindWithChildren(id string) (*models.Project, error)

	// ListWithChildren loads every project fully populated
	ListWithChildren() ([]models.Project, error)

	// ReplaceChildren swaps the project's task and activity collections for
	// the given, fully-built replacements
	ReplaceChildren(projectID string, tasks []models.Task, activities []models.Activity) error

	// ReplaceStakeholders swaps the project's stakeholder set
	ReplaceStakeholders(project *models.Project, people []models.Person) error

	// Delete removes a project and everything it owns
	Delete(id string) error
}
