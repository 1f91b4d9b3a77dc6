package repository

import (
	"github.com/kwatanabe/portfolio-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository bound to the given
// session handle.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a new project row without touching associations.
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// Save persists a project's scalar fields without touching associations.
func (r *GormProjectRepository) Save(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// FindByID finds a project by ID without children
func (r *GormProjectRepository) FindByID(id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByName finds a project by name, case-insensitively
func (r *GormProjectRepository) FindByName(name string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Plan", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Plan.Assignee").
		Preload("Plan.Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Plan.Subtasks.Assignee").
		Preload("RecentActivity", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, id ASC") }).
		Preload("RecentActivity.AuthorPerson").
		Preload("Stakeholders")
}

// FindWithChildren loads a project with all owned children and the people
// they reference. Callers never observe a partially-loaded aggregate.
func (r *GormProjectRepository) FindWithChildren(id string) (*models.Project, error) {
	var project models.Project
	if err := withChildren(r.db).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListWithChildren loads every project fully populated
func (r *GormProjectRepository) ListWithChildren() ([]models.Project, error) {
	var projects []models.Project
	if err := withChildren(r.db).Order("created_at ASC, id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ReplaceChildren swaps the project's task and activity collections. The
// replacements must be fully built (ids assigned, assignees resolved) before
// this is called so the swap is a pure write.
func (r *GormProjectRepository) ReplaceChildren(projectID string, tasks []models.Task, activities []models.Activity) error {
	taskIDs := r.db.Model(&models.Task{}).Select("id").Where("project_id = ?", projectID)
	if err := r.db.Where("task_id IN (?)", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := r.db.Where("project_id = ?", projectID).Delete(&models.Activity{}).Error; err != nil {
		return err
	}
	if len(tasks) > 0 {
		// nested Subtasks are created alongside their tasks
		if err := r.db.Create(&tasks).Error; err != nil {
			return err
		}
	}
	if len(activities) > 0 {
		if err := r.db.Create(&activities).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceStakeholders swaps the project's stakeholder set
func (r *GormProjectRepository) ReplaceStakeholders(project *models.Project, people []models.Person) error {
	return r.db.Model(project).Association("Stakeholders").Replace(&people)
}

// Delete removes a project and everything it owns. Explicit deletes rather
// than relying on database-level cascade, which sqlite only honors with
// foreign keys enabled.
func (r *GormProjectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM project_people WHERE project_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
}
