package dto

import (
	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

// SubtaskPayload is the request shape for one subtask.
type SubtaskPayload struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Status        string            `json:"status"`
	DueDate       *string           `json:"dueDate"`
	CompletedDate *string           `json:"completedDate"`
	AssigneeID    string            `json:"assigneeId"`
	Assignee      *PersonRefPayload `json:"assignee"`
}

// TaskPayload is the request shape for one task.
type TaskPayload struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Status        string            `json:"status"`
	DueDate       *string           `json:"dueDate"`
	CompletedDate *string           `json:"completedDate"`
	AssigneeID    string            `json:"assigneeId"`
	Assignee      *PersonRefPayload `json:"assignee"`
	Subtasks      []SubtaskPayload  `json:"subtasks"`
}

// ActivityPayload is the request shape for one activity-log entry.
type ActivityPayload struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Note        string  `json:"note"`
	Author      string  `json:"author"`
	AuthorID    string  `json:"authorId"`
	TaskContext *string `json:"taskContext"`
}

// ProjectPayload is the request shape for a full project aggregate.
type ProjectPayload struct {
	ID              string             `json:"id"`
	Name            string             `json:"name" binding:"required"`
	Status          string             `json:"status"`
	Priority        string             `json:"priority"`
	Progress        int                `json:"progress"`
	Description     string             `json:"description"`
	ExecutiveUpdate *string            `json:"executiveUpdate"`
	StartDate       *string            `json:"startDate"`
	TargetDate      *string            `json:"targetDate"`
	Stakeholders    []PersonRefPayload `json:"stakeholders"`
	Plan            []TaskPayload      `json:"plan"`
	RecentActivity  []ActivityPayload  `json:"recentActivity"`
}

// ImportPayload is the request shape for a portfolio import.
type ImportPayload struct {
	Projects []ProjectPayload `json:"projects" binding:"required"`
	Mode     string           `json:"mode"`
}

// assigneeRef folds the separate assigneeId field and the polymorphic
// assignee value into one resolver reference.
func assigneeRef(id string, assignee *PersonRefPayload) *services.PersonRef {
	if assignee == nil && id == "" {
		return nil
	}
	ref := services.PersonRef{ID: id}
	if assignee != nil {
		ref = assignee.ToRef()
		if ref.ID == "" {
			ref.ID = id
		}
	}
	return &ref
}

// ToInput converts the wire payload to the upsert engine's input shape.
func (p ProjectPayload) ToInput() services.UpsertProjectInput {
	input := services.UpsertProjectInput{
		ID:              p.ID,
		Name:            p.Name,
		Status:          p.Status,
		Priority:        p.Priority,
		Progress:        p.Progress,
		Description:     p.Description,
		ExecutiveUpdate: p.ExecutiveUpdate,
		StartDate:       p.StartDate,
		TargetDate:      p.TargetDate,
	}

	for _, ref := range p.Stakeholders {
		input.Stakeholders = append(input.Stakeholders, ref.ToRef())
	}

	for _, task := range p.Plan {
		taskInput := services.TaskInput{
			ID:            task.ID,
			Title:         task.Title,
			Status:        task.Status,
			DueDate:       task.DueDate,
			CompletedDate: task.CompletedDate,
			Assignee:      assigneeRef(task.AssigneeID, task.Assignee),
		}
		for _, subtask := range task.Subtasks {
			taskInput.Subtasks = append(taskInput.Subtasks, services.SubtaskInput{
				ID:            subtask.ID,
				Title:         subtask.Title,
				Status:        subtask.Status,
				DueDate:       subtask.DueDate,
				CompletedDate: subtask.CompletedDate,
				Assignee:      assigneeRef(subtask.AssigneeID, subtask.Assignee),
			})
		}
		input.Plan = append(input.Plan, taskInput)
	}

	for _, activity := range p.RecentActivity {
		activityInput := services.ActivityInput{
			ID:          activity.ID,
			Date:        activity.Date,
			Note:        activity.Note,
			TaskContext: activity.TaskContext,
		}
		if activity.Author != "" || activity.AuthorID != "" {
			activityInput.Author = &services.PersonRef{
				ID:   activity.AuthorID,
				Name: activity.Author,
			}
		}
		input.RecentActivity = append(input.RecentActivity, activityInput)
	}

	return input
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	DueDate       *string    `json:"dueDate"`
	CompletedDate *string    `json:"completedDate"`
	AssigneeID    *string    `json:"assigneeId"`
	Assignee      *PersonDTO `json:"assignee,omitempty"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Status        string       `json:"status"`
	DueDate       *string      `json:"dueDate"`
	CompletedDate *string      `json:"completedDate"`
	AssigneeID    *string      `json:"assigneeId"`
	Assignee      *PersonDTO   `json:"assignee,omitempty"`
	Subtasks      []SubtaskDTO `json:"subtasks"`
}

// ActivityDTO represents an activity-log entry in API responses
type ActivityDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Note        string  `json:"note"`
	Author      string  `json:"author"`
	AuthorID    *string `json:"authorId"`
	TaskContext *string `json:"taskContext,omitempty"`
}

// ProjectDTO represents a full project aggregate in API responses
type ProjectDTO struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Status          string        `json:"status"`
	Priority        string        `json:"priority"`
	Progress        int           `json:"progress"`
	LastUpdate      *string       `json:"lastUpdate"`
	Description     string        `json:"description"`
	ExecutiveUpdate *string       `json:"executiveUpdate"`
	StartDate       *string       `json:"startDate"`
	TargetDate      *string       `json:"targetDate"`
	Stakeholders    []PersonDTO   `json:"stakeholders"`
	Plan            []TaskDTO     `json:"plan"`
	RecentActivity  []ActivityDTO `json:"recentActivity"`
}

// ToProjectDTO converts a fully-loaded Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	projectDTO := ProjectDTO{
		ID:              project.ID,
		Name:            project.Name,
		Status:          project.Status,
		Priority:        project.Priority,
		Progress:        project.Progress,
		LastUpdate:      project.LastUpdate,
		Description:     project.Description,
		ExecutiveUpdate: project.ExecutiveUpdate,
		StartDate:       project.StartDate,
		TargetDate:      project.TargetDate,
		Stakeholders:    ToPersonDTOs(project.Stakeholders),
		Plan:            make([]TaskDTO, 0, len(project.Plan)),
		RecentActivity:  make([]ActivityDTO, 0, len(project.RecentActivity)),
	}
	if projectDTO.Stakeholders == nil {
		projectDTO.Stakeholders = []PersonDTO{}
	}

	for _, task := range project.Plan {
		taskDTO := TaskDTO{
			ID:            task.ID,
			Title:         task.Title,
			Status:        task.Status,
			DueDate:       task.DueDate,
			CompletedDate: task.CompletedDate,
			AssigneeID:    task.AssigneeID,
			Subtasks:      make([]SubtaskDTO, 0, len(task.Subtasks)),
		}
		if task.Assignee != nil {
			assignee := ToPersonDTO(*task.Assignee)
			taskDTO.Assignee = &assignee
		}
		for _, subtask := range task.Subtasks {
			subtaskDTO := SubtaskDTO{
				ID:            subtask.ID,
				Title:         subtask.Title,
				Status:        subtask.Status,
				DueDate:       subtask.DueDate,
				CompletedDate: subtask.CompletedDate,
				AssigneeID:    subtask.AssigneeID,
			}
			if subtask.Assignee != nil {
				assignee := ToPersonDTO(*subtask.Assignee)
				subtaskDTO.Assignee = &assignee
			}
			taskDTO.Subtasks = append(taskDTO.Subtasks, subtaskDTO)
		}
		projectDTO.Plan = append(projectDTO.Plan, taskDTO)
	}

	for _, activity := range project.RecentActivity {
		projectDTO.RecentActivity = append(projectDTO.RecentActivity, ActivityDTO{
			ID:          activity.ID,
			Date:        activity.Date,
			Note:        activity.Note,
			Author:      activity.Author,
			AuthorID:    activity.AuthorID,
			TaskContext: activity.TaskContext,
		})
	}

	return projectDTO
}

// ToProjectDTOs converts a slice of Project models
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}

// ExportDTO is the portfolio snapshot returned by the export endpoint.
type ExportDTO struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Projects   []ProjectDTO `json:"projects"`
}
