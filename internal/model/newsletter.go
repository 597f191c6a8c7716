package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type NewsletterSubscriber struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	SubscribedDate time.Time `json:"subscribedDate"`
}

func (n *NewsletterSubscriber) GetID() string   { return n.ID }
func (n *NewsletterSubscriber) SetID(id string) { n.ID = id }

func (n *NewsletterSubscriber) Validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(3, 255),
		),
		validation.Field(&n.Name, validation.Required.Error("name is required"), validation.Length(1, 120)),
	)
}
