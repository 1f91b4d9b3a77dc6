package dto

import (
	"encoding/json"

	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

// PersonDTO represents a person in API responses
type PersonDTO struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Team  string  `json:"team"`
	Email *string `json:"email"`
}

// ToPersonDTO converts a Person model to PersonDTO
func ToPersonDTO(person models.Person) PersonDTO {
	return PersonDTO{
		ID:    person.ID,
		Name:  person.Name,
		Team:  person.Team,
		Email: person.Email,
	}
}

// ToPersonDTOs converts a slice of Person models
func ToPersonDTOs(people []models.Person) []PersonDTO {
	dtos := make([]PersonDTO, len(people))
	for i, person := range people {
		dtos[i] = ToPersonDTO(person)
	}
	return dtos
}

// PersonPayload is the request body for person create/update endpoints.
type PersonPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Team  string `json:"team"`
	Email string `json:"email"`
}

// ToRef converts the payload to a resolver reference.
func (p PersonPayload) ToRef() services.PersonRef {
	return services.PersonRef{
		ID:    p.ID,
		Name:  p.Name,
		Team:  p.Team,
		Email: p.Email,
	}
}

// PersonRefPayload accepts every wire shape a person reference arrives in: a
// bare JSON string (a display name) or an object with any subset of
// id/name/team/email. Both normalize to the resolver's PersonRef.
type PersonRefPayload struct {
	ID    string
	Name  string
	Team  string
	Email string
}

func (r *PersonRefPayload) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = PersonRefPayload{Name: name}
		return nil
	}

	var obj struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Team  string `json:"team"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = PersonRefPayload{ID: obj.ID, Name: obj.Name, Team: obj.Team, Email: obj.Email}
	return nil
}

// MarshalJSON keeps the payload symmetric for export round-trips.
func (r PersonRefPayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string `json:"id,omitempty"`
		Name  string `json:"name"`
		Team  string `json:"team,omitempty"`
		Email string `json:"email,omitempty"`
	}{r.ID, r.Name, r.Team, r.Email})
}

// ToRef converts the payload to a resolver reference.
func (r PersonRefPayload) ToRef() services.PersonRef {
	return services.PersonRef{
		ID:    r.ID,
		Name:  r.Name,
		Team:  r.Team,
		Email: r.Email,
	}
}
