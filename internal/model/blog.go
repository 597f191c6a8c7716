package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type BlogPost struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content,omitempty"`
	Author   string   `json:"author"`
	Date     string   `json:"date"`
	Category string   `json:"category"`
	ImageURL MediaURL `json:"imageUrl,omitempty"`
	ReadTime string   `json:"readTime,omitempty"` // "5 min read"
	Views    Views    `json:"views"`
}

func (b *BlogPost) GetID() string   { return b.ID }
func (b *BlogPost) SetID(id string) { b.ID = id }
func (b *BlogPost) AddView()        { b.Views++ }

func (b *BlogPost) Validate() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Title, validation.Required.Error("title is required"), validation.Length(1, 200)),
		validation.Field(&b.Excerpt, validation.Required.Error("excerpt is required"), validation.Length(1, 500)),
		validation.Field(&b.Author, validation.Required.Error("author is required")),
	)
}
