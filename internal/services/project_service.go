package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/repository"
	"github.com/kwatanabe/portfolio-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrInvalidImportMode   = errors.New("import mode must be \"replace\" or \"merge\"")
)

// Import modes accepted by ImportPortfolio.
const (
	ImportModeReplace = "replace"
	ImportModeMerge   = "merge"
)

// SubtaskInput represents one subtask in an upsert payload.
type SubtaskInput struct {
	ID            string
	Title         string
	Status        string
	DueDate       *string
	CompletedDate *string
	Assignee      *PersonRef
}

// TaskInput represents one task in an upsert payload.
type TaskInput struct {
	ID            string
	Title         string
	Status        string
	DueDate       *string
	CompletedDate *string
	Assignee      *PersonRef
	Subtasks      []SubtaskInput
}

// ActivityInput represents one activity-log entry in an upsert payload.
type ActivityInput struct {
	ID          string
	Date        string
	Note        string
	Author      *PersonRef
	TaskContext *string
}

// UpsertProjectInput carries a full project aggregate: scalar fields,
// stakeholder references, the ordered task plan, and the activity log.
type UpsertProjectInput struct {
	ID              string
	Name            string
	Status          string
	Priority        string
	Progress        int
	Description     string
	ExecutiveUpdate *string
	StartDate       *string
	TargetDate      *string
	Stakeholders    []PersonRef
	Plan            []TaskInput
	RecentActivity  []ActivityInput
}

// ProjectService applies whole-aggregate writes, delegating every person
// reference it encounters to the identity resolver.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService creates a ProjectService bound to the given session
// handle.
func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// UpsertProject applies a project payload as a replace-children write: the
// project row is created or updated, and its stakeholder set, task plan, and
// activity log are swapped for the payload's. The entire child set is
// resolved and validated before anything is written, and the whole write runs
// in one transaction. Supplying an id that does not exist creates the project
// under that id. A case-insensitive name collision with another project is a
// *NameConflictError.
func (s *ProjectService) UpsertProject(input UpsertProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	var projectID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		projects := repository.NewProjectRepository(tx)
		people := NewPersonService(tx)

		other, err := projects.FindByName(name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check project name: %w", err)
		}
		if other != nil && other.ID != input.ID {
			return &NameConflictError{Resource: "project", Name: name}
		}

		var project *models.Project
		if input.ID != "" {
			project, err = projects.FindByID(input.ID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to find project: %w", err)
			}
		}
		isNew := project == nil
		if isNew {
			id := input.ID
			if id == "" {
				id = utils.GenerateID("project")
			}
			project = &models.Project{ID: id}
		}

		stakeholders, err := s.resolveStakeholders(people, input.Stakeholders)
		if err != nil {
			return err
		}
		tasks, err := s.buildPlan(people, project.ID, input.Plan)
		if err != nil {
			return err
		}
		activities, err := s.buildActivityLog(people, project.ID, input.RecentActivity)
		if err != nil {
			return err
		}

		project.Name = name
		project.Status = defaultString(input.Status, "planning")
		project.Priority = defaultString(input.Priority, "medium")
		project.Progress = input.Progress
		project.Description = input.Description
		project.ExecutiveUpdate = input.ExecutiveUpdate
		project.StartDate = input.StartDate
		project.TargetDate = input.TargetDate
		// lastUpdate mirrors the note of the newest activity
		project.LastUpdate = nil
		if len(activities) > 0 {
			note := activities[len(activities)-1].Note
			project.LastUpdate = &note
		}

		if isNew {
			if err := projects.Create(project); err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}
		} else if err := projects.Save(project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		if err := projects.ReplaceChildren(project.ID, tasks, activities); err != nil {
			return fmt.Errorf("failed to replace project children: %w", err)
		}
		if err := projects.ReplaceStakeholders(project, stakeholders); err != nil {
			return fmt.Errorf("failed to replace stakeholders: %w", err)
		}

		projectID = project.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(projectID)
}

// resolveStakeholders resolves each reference and de-duplicates repeated
// references to the same person within one payload.
func (s *ProjectService) resolveStakeholders(people *PersonService, refs []PersonRef) ([]models.Person, error) {
	seen := make(map[string]struct{}, len(refs))
	stakeholders := make([]models.Person, 0, len(refs))

	for i := range refs {
		person, err := people.Resolve(&refs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stakeholder: %w", err)
		}
		if person == nil {
			continue
		}
		if _, dup := seen[person.ID]; dup {
			continue
		}
		seen[person.ID] = struct{}{}
		stakeholders = append(stakeholders, *person)
	}
	return stakeholders, nil
}

// buildPlan materializes the ordered task list, resolving assignees and
// assigning fresh ids where the payload supplies none.
func (s *ProjectService) buildPlan(people *PersonService, projectID string, inputs []TaskInput) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(inputs))

	for pos, in := range inputs {
		task := models.Task{
			ID:            defaultString(in.ID, utils.GenerateID("task")),
			ProjectID:     projectID,
			Title:         in.Title,
			Status:        defaultString(in.Status, "todo"),
			DueDate:       in.DueDate,
			CompletedDate: in.CompletedDate,
			Position:      pos,
		}

		assignee, err := people.Resolve(in.Assignee)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve task assignee: %w", err)
		}
		if assignee != nil {
			task.AssigneeID = &assignee.ID
		}

		for spos, sin := range in.Subtasks {
			subtask := models.Subtask{
				ID:            defaultString(sin.ID, utils.GenerateID("subtask")),
				TaskID:        task.ID,
				Title:         sin.Title,
				Status:        defaultString(sin.Status, "todo"),
				DueDate:       sin.DueDate,
				CompletedDate: sin.CompletedDate,
				Position:      spos,
			}
			subAssignee, err := people.Resolve(sin.Assignee)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve subtask assignee: %w", err)
			}
			if subAssignee != nil {
				subtask.AssigneeID = &subAssignee.ID
			}
			task.Subtasks = append(task.Subtasks, subtask)
		}

		tasks = append(tasks, task)
	}
	return tasks, nil
}

// buildActivityLog materializes the activity list in chronological order
// regardless of input order. A resolved author overrides any stale free-text
// display name in the payload with the canonical one.
func (s *ProjectService) buildActivityLog(people *PersonService, projectID string, inputs []ActivityInput) ([]models.Activity, error) {
	sorted := append([]ActivityInput(nil), inputs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	activities := make([]models.Activity, 0, len(sorted))
	for _, in := range sorted {
		activity := models.Activity{
			ID:          defaultString(in.ID, utils.GenerateID("activity")),
			ProjectID:   projectID,
			Date:        in.Date,
			Note:        in.Note,
			TaskContext: in.TaskContext,
		}

		author, err := people.Resolve(in.Author)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve activity author: %w", err)
		}
		if author != nil {
			activity.Author = author.Name
			activity.AuthorID = &author.ID
		} else if in.Author != nil {
			activity.Author = strings.TrimSpace(in.Author.Name)
		}

		activities = append(activities, activity)
	}
	return activities, nil
}

// GetProject returns a project with all children eagerly attached.
func (s *ProjectService) GetProject(id string) (*models.Project, error) {
	projects := repository.NewProjectRepository(s.db)
	project, err := projects.FindWithChildren(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ListProjects returns every project fully populated.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	projects, err := repository.NewProjectRepository(s.db).ListWithChildren()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and everything it owns.
func (s *ProjectService) DeleteProject(id string) error {
	projects := repository.NewProjectRepository(s.db)
	if _, err := projects.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if err := projects.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ImportPortfolio ingests a portfolio snapshot. Replace mode discards every
// existing project first; merge mode upserts over what is already there.
func (s *ProjectService) ImportPortfolio(mode string, inputs []UpsertProjectInput) ([]models.Project, error) {
	if mode == "" {
		mode = ImportModeReplace
	}
	if mode != ImportModeReplace && mode != ImportModeMerge {
		return nil, ErrInvalidImportMode
	}

	if mode == ImportModeReplace {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			projects := repository.NewProjectRepository(tx)
			existing, err := projects.ListWithChildren()
			if err != nil {
				return err
			}
			for _, project := range existing {
				if err := projects.Delete(project.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to clear portfolio: %w", err)
		}
	}

	for _, input := range inputs {
		if _, err := s.UpsertProject(input); err != nil {
			return nil, err
		}
	}
	return s.ListProjects()
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
