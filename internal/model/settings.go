package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type SiteSettings struct {
	SiteName     string            `json:"siteName"`
	Tagline      string            `json:"tagline"`
	ContactEmail string            `json:"contactEmail"`
	ContactPhone string            `json:"contactPhone"`
	Address      string            `json:"address"`
	SocialLinks  map[string]string `json:"socialLinks"`
}

func (s *SiteSettings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.SiteName, validation.Required),
		validation.Field(&s.ContactEmail, is.EmailFormat),
	)
}
