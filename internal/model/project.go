package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Project struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription,omitempty"`
	Date            string   `json:"date"` // display string, e.g. "March 2024"
	Participants    int      `json:"participants"`
	ImageURL        MediaURL `json:"imageUrl"`
	Status          string   `json:"status"`
}

func (p *Project) GetID() string   { return p.ID }
func (p *Project) SetID(id string) { p.ID = id }

func (p *Project) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required.Error("title is required"), validation.Length(1, 200)),
		validation.Field(&p.Participants, validation.Min(0).Error("participants must be a non-negative integer")),
	)
}
