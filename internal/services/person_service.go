package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/repository"
	"github.com/kwatanabe/portfolio-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrPersonNotFound     = errors.New("person not found")
	ErrPersonNameRequired = errors.New("person name is required")
)

// NameConflictError reports a case-insensitive name collision that could not
// be resolved safely. It is surfaced to callers as a structured error rather
// than a raw constraint violation.
type NameConflictError struct {
	Resource string
	Name     string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("a %s named %q already exists", e.Resource, e.Name)
}

// EmailConflictError reports an email address already owned by another
// person.
type EmailConflictError struct {
	Email string
}

func (e *EmailConflictError) Error() string {
	return fmt.Sprintf("a person with email %q already exists", e.Email)
}

// PersonRef is the normalized shape for every way the outside world refers to
// a person: a bare display name, a legacy embedded record, or a structured
// payload with any subset of id/name/team/email. The boundary layer collapses
// its polymorphic inputs into this one shape so the resolution algorithm is
// written exactly once.
type PersonRef struct {
	ID    string
	Name  string
	Team  string
	Email string
}

// NameRef wraps a bare display name as a reference.
func NameRef(name string) *PersonRef {
	return &PersonRef{Name: name}
}

// PersonService resolves heterogeneous person references to the single
// canonical Person record, creating or updating people as needed.
type PersonService struct {
	db     *gorm.DB
	people repository.PersonRepository
}

// NewPersonService creates a PersonService bound to the given session handle.
// Callers that need resolution inside their own transaction construct one
// over the transaction.
func NewPersonService(db *gorm.DB) *PersonService {
	return &PersonService{
		db:     db,
		people: repository.NewPersonRepository(db),
	}
}

// Resolve returns the canonical person for a reference, or (nil, nil) when
// the reference carries nothing usable. Lookup priority is id, then email,
// then name; a reference whose id matches no existing person is treated as an
// explicit identity and created under that id rather than matched by name.
// Matched people absorb any non-empty fields the reference supplies.
func (s *PersonService) Resolve(ref *PersonRef) (*models.Person, error) {
	if ref == nil {
		return nil, nil
	}

	id := strings.TrimSpace(ref.ID)
	name := strings.TrimSpace(ref.Name)
	team := strings.TrimSpace(ref.Team)
	email := strings.ToLower(strings.TrimSpace(ref.Email))

	if id != "" {
		person, err := s.people.FindByID(id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find person by id: %w", err)
		}
		if person != nil {
			return s.applyReference(person, name, team, email)
		}
		// The caller chose this identity; do not silently reuse a name
		// match under a different id.
		if name == "" {
			return nil, nil
		}
		return s.create(id, name, team, email)
	}

	if email != "" {
		person, err := s.people.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find person by email: %w", err)
		}
		if person != nil {
			return s.applyReference(person, name, team, email)
		}
	}

	if name != "" {
		person, err := s.people.FindByName(name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find person by name: %w", err)
		}
		if person != nil {
			return s.applyReference(person, name, team, email)
		}
		return s.create(utils.GenerateID("person"), name, team, email)
	}

	return nil, nil
}

// create inserts a new person. A duplicate-key violation means a concurrent
// request created the same identity between our lookup and the insert; the
// lookup is re-run once and the winner absorbs this reference's fields. The
// insert runs in a nested transaction so the violation rolls back to a
// savepoint: postgres otherwise aborts the whole enclosing transaction on the
// failed statement and the retry lookups would fail with it.
func (s *PersonService) create(id, name, team, email string) (*models.Person, error) {
	person := &models.Person{
		ID:   id,
		Name: name,
		Team: team,
	}
	if person.Team == "" {
		person.Team = models.DefaultTeam
	}
	if email != "" {
		person.Email = &email
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewPersonRepository(tx).Create(person)
	})
	if err == nil {
		return person, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}
	return s.resolveAfterConflict(name, team, email)
}

// resolveAfterConflict re-runs the email-then-name lookup after a lost create
// race. The retry is single-shot: if it also misses, the original conflict is
// surfaced.
func (s *PersonService) resolveAfterConflict(name, team, email string) (*models.Person, error) {
	if email != "" {
		person, err := s.people.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find person by email: %w", err)
		}
		if person != nil {
			return s.applyReference(person, name, team, email)
		}
	}
	person, err := s.people.FindByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NameConflictError{Resource: "person", Name: name}
		}
		return nil, fmt.Errorf("failed to find person by name: %w", err)
	}
	return s.applyReference(person, name, team, email)
}

// applyReference merges the reference's non-empty fields into a matched
// person. The name is only rewritten when no other person owns the new one;
// an existing owner means the stored name stays, never a second collision.
// Nothing is written when every supplied field already matches.
func (s *PersonService) applyReference(person *models.Person, name, team, email string) (*models.Person, error) {
	changed := false

	if team != "" && person.Team != team {
		person.Team = team
		changed = true
	}
	if email != "" && person.EmailValue() != email {
		person.Email = &email
		changed = true
	}
	if name != "" && !strings.EqualFold(person.Name, name) {
		owner, err := s.people.FindByName(name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check name availability: %w", err)
		}
		if owner == nil || owner.ID == person.ID {
			person.Name = name
			changed = true
		}
	}

	if changed {
		if err := s.people.Update(person); err != nil {
			return nil, fmt.Errorf("failed to update person: %w", err)
		}
	}
	return person, nil
}

// GetPerson returns a person by id.
func (s *PersonService) GetPerson(id string) (*models.Person, error) {
	person, err := s.people.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return person, nil
}

// UpdatePersonInput represents input for an explicit person update.
type UpdatePersonInput struct {
	Name  string
	Team  string
	Email string
}

// UpdatePerson applies an explicit edit to a person. Unlike resolution, the
// supplied fields replace the stored ones, and a name collision is an error.
func (s *PersonService) UpdatePerson(id string, input UpdatePersonInput) (*models.Person, error) {
	person, err := s.GetPerson(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPersonNameRequired
	}

	owner, err := s.people.FindByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check name availability: %w", err)
	}
	if owner != nil && owner.ID != person.ID {
		return nil, &NameConflictError{Resource: "person", Name: name}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" {
		owner, err := s.people.FindByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email availability: %w", err)
		}
		if owner != nil && owner.ID != person.ID {
			return nil, &EmailConflictError{Email: email}
		}
	}

	person.Name = name
	person.Team = strings.TrimSpace(input.Team)
	if email == "" {
		person.Email = nil
	} else {
		person.Email = &email
	}

	if err := s.people.Update(person); err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}
	return person, nil
}

// DeletePerson removes a person explicitly. Tasks and activities keep their
// denormalized display names; their references are detached by the store.
func (s *PersonService) DeletePerson(id string) error {
	if _, err := s.GetPerson(id); err != nil {
		return err
	}
	if err := s.people.Delete(id); err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return nil
}

// ListDeduplicated returns all people, collapsing any case-insensitive
// duplicates the store still contains from before the uniqueness constraint.
// Duplicate detection matches the resolver's key priority: email first, then
// name. The first-seen record wins, absorbs the loser's non-empty fields, and
// inherits its references; losers are deleted. The pass runs in one
// transaction so readers never observe a half-collapsed state.
func (s *PersonService) ListDeduplicated() ([]models.Person, error) {
	var result []models.Person

	err := s.db.Transaction(func(tx *gorm.DB) error {
		people := repository.NewPersonRepository(tx)

		all, err := people.List()
		if err != nil {
			return fmt.Errorf("failed to list people: %w", err)
		}

		byEmail := make(map[string]*models.Person)
		byName := make(map[string]*models.Person)
		var kept []*models.Person

		for i := range all {
			person := &all[i]
			emailKey := strings.ToLower(person.EmailValue())
			nameKey := strings.ToLower(person.Name)

			var keeper *models.Person
			if emailKey != "" {
				keeper = byEmail[emailKey]
			}
			if keeper == nil {
				keeper = byName[nameKey]
			}

			if keeper == nil {
				byName[nameKey] = person
				if emailKey != "" {
					byEmail[emailKey] = person
				}
				kept = append(kept, person)
				continue
			}

			changed := false
			if keeper.Team == "" && person.Team != "" {
				keeper.Team = person.Team
				changed = true
			}
			if keeper.Email == nil && person.Email != nil {
				keeper.Email = person.Email
				byEmail[strings.ToLower(*person.Email)] = keeper
				changed = true
			}
			if err := people.ReassignReferences(person.ID, keeper.ID); err != nil {
				return fmt.Errorf("failed to reassign person references: %w", err)
			}
			// the duplicate goes first so absorbing its email cannot trip
			// the uniqueness constraint
			if err := people.Delete(person.ID); err != nil {
				return fmt.Errorf("failed to delete duplicate person: %w", err)
			}
			if changed {
				if err := people.Update(keeper); err != nil {
					return fmt.Errorf("failed to merge duplicate person: %w", err)
				}
			}
		}

		result = make([]models.Person, 0, len(kept))
		for _, person := range kept {
			result = append(result, *person)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
