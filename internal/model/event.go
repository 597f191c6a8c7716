package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventOngoing  EventStatus = "ongoing"
	EventPast     EventStatus = "past"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventUpcoming, EventOngoing, EventPast:
		return true
	}
	return false
}

type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	FullDescription string      `json:"fullDescription,omitempty"`
	Date            string      `json:"date"`
	Time            string      `json:"time"` // free-text range, "10:00 - 14:00"
	Location        string      `json:"location"`
	Status          EventStatus `json:"status"`
	ImageURL        MediaURL    `json:"imageUrl,omitempty"`
	VideoURL        MediaURL    `json:"videoUrl,omitempty"`
}

func (e *Event) GetID() string   { return e.ID }
func (e *Event) SetID(id string) { e.ID = id }

func (e *Event) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.Required.Error("title is required"), validation.Length(1, 200)),
		validation.Field(&e.Status,
			validation.Required.Error("status is required"),
			validation.In(EventUpcoming, EventOngoing, EventPast).Error("status must be upcoming, ongoing or past"),
		),
	)
}

// FilterEvents keeps events with the given status, preserving order.
func FilterEvents(events []Event, status EventStatus) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out
}
