package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Talent is a young person showcased on the site.
type Talent struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Age         int      `json:"age"`
	TalentType  string   `json:"talentType"`
	Description string   `json:"description"`
	FullStory   string   `json:"fullStory,omitempty"`
	ImageURL    MediaURL `json:"imageUrl"`
	Status      string   `json:"status"`
	Views       Views    `json:"views"`
}

// Known talent types. The set is open; these are the ones the admin form offers.
const (
	TalentMusic  = "Music"
	TalentSports = "Sports"
	TalentArt    = "Art"
	TalentDance  = "Dance"
	TalentDrama  = "Drama"
)

func (t *Talent) GetID() string   { return t.ID }
func (t *Talent) SetID(id string) { t.ID = id }
func (t *Talent) AddView()        { t.Views++ }

func (t *Talent) Validate() error {
	return validation.ValidateStruct(t,
		validation.Field(&t.Name, validation.Required.Error("name is required"), validation.Length(1, 120)),
		validation.Field(&t.Age, validation.Min(0).Error("age must be a non-negative integer")),
		validation.Field(&t.TalentType, validation.Required.Error("talent type is required")),
		validation.Field(&t.Description, validation.Length(0, 500)),
	)
}
