package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Visitor is the anonymous per-browser identity used by interaction counters.
type Visitor struct {
	ID           string    `json:"id"`
	UUID         string    `json:"uuid"`
	ProfileImage MediaURL  `json:"profileImage,omitempty"`
	IsBanned     bool      `json:"isBanned"`
	IsVerified   bool      `json:"isVerified"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

func (v *Visitor) GetID() string   { return v.ID }
func (v *Visitor) SetID(id string) { v.ID = id }

func (v *Visitor) Validate() error {
	return validation.ValidateStruct(v,
		validation.Field(&v.UUID, validation.Required, is.UUID),
	)
}
