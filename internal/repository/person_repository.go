package repository

import (
	"github.com/kwatanabe/portfolio-api/internal/models"
	"gorm.io/gorm"
)

// GormPersonRepository is a GORM implementation of PersonRepository
type GormPersonRepository struct {
	db *gorm.DB
}

// NewPersonRepository creates a new PersonRepository bound to the given
// session handle (a *gorm.DB or an open transaction).
func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &GormPersonRepository{db: db}
}

// Create inserts a new person
func (r *GormPersonRepository) Create(person *models.Person) error {
	return r.db.Create(person).Error
}

// FindByID finds a person by ID
func (r *GormPersonRepository) FindByID(id string) (*models.Person, error) {
	var person models.Person
	if err := r.db.Where("id = ?", id).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByName finds a person by name, case-insensitively
func (r *GormPersonRepository) FindByName(name string) (*models.Person, error) {
	var person models.Person
	if err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// FindByEmail finds a person by email, case-insensitively
func (r *GormPersonRepository) FindByEmail(email string) (*models.Person, error) {
	var person models.Person
	if err := r.db.Where("email IS NOT NULL AND LOWER(email) = LOWER(?)", email).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// List returns all people in creation order, id as tie-break so the order is
// stable for the dedup passes that rely on "first record wins".
func (r *GormPersonRepository) List() ([]models.Person, error) {
	var people []models.Person
	if err := r.db.Order("created_at ASC, id ASC").Find(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

// Update persists changes to a person
func (r *GormPersonRepository) Update(person *models.Person) error {
	return r.db.Save(person).Error
}

// Delete removes a person
func (r *GormPersonRepository) Delete(id string) error {
	return r.db.Delete(&models.Person{}, "id = ?", id).Error
}

// ReassignReferences rewrites every foreign key pointing at fromID to point
// at toID. Stakeholder links that would duplicate an existing (project,
// person) pair are dropped instead of rewritten.
func (r *GormPersonRepository) ReassignReferences(fromID, toID string) error {
	if err := r.db.Model(&models.Task{}).
		Where("assignee_id = ?", fromID).
		Update("assignee_id", toID).Error; err != nil {
		return err
	}
	if err := r.db.Model(&models.Subtask{}).
		Where("assignee_id = ?", fromID).
		Update("assignee_id", toID).Error; err != nil {
		return err
	}
	if err := r.db.Model(&models.Activity{}).
		Where("author_id = ?", fromID).
		Update("author_id", toID).Error; err != nil {
		return err
	}
	if err := r.db.Exec(
		`DELETE FROM project_people WHERE person_id = ? AND project_id IN `+
			`(SELECT project_id FROM project_people WHERE person_id = ?)`,
		fromID, toID).Error; err != nil {
		return err
	}
	return r.db.Exec(
		`UPDATE project_people SET person_id = ? WHERE person_id = ?`,
		toID, fromID).Error
}
