package models

import "time"

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventDraft     EventStatus = "DRAFT"
	EventPublished EventStatus = "PUBLISHED"
	EventCancelled EventStatus = "CANCELLED"
	EventCompleted EventStatus = "COMPLETED"
)

// TicketType represents a priced admission category of an event
type TicketType struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	GSTRate        float64 `json:"gstRate"`
	DiscountRate   float64 `json:"discountRate"`
	TotalAvailable int     `json:"totalAvailable,omitempty"`
	SeatsLeft      int     `json:"seatLeft"`
}

// PublishedEventSummary is the public listing view of an event
type PublishedEventSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"eventDescription"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Venue       string     `json:"venue"`
	ImageURL    string     `json:"imageUrl,omitempty"`
}

// PublishedEvent is the public detail view of an event, including its
// purchasable ticket types
type PublishedEvent struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"eventDescription"`
	Start       *time.Time   `json:"start,omitempty"`
	End         *time.Time   `json:"end,omitempty"`
	Venue       string       `json:"venue"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	TicketTypes []TicketType `json:"ticketTypes"`
}

// TicketTypeByID locates a ticket type on the event. The bool reports
// whether it was found.
func (e *PublishedEvent) TicketTypeByID(id string) (TicketType, bool) {
	for _, tt := range e.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return TicketType{}, false
}

// Event is the organizer's full view of an event, draft fields included
type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"eventDescription"`
	Start       *time.Time   `json:"start,omitempty"`
	End         *time.Time   `json:"end,omitempty"`
	Venue       string       `json:"venue"`
	SalesStart  *time.Time   `json:"salesStart,omitempty"`
	SalesEnd    *time.Time   `json:"salesEnd,omitempty"`
	Status      EventStatus  `json:"status"`
	TicketTypes []TicketType `json:"ticketTypes"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	CreatedAt   *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
}

// CreateEventRequest is the payload for creating an event as an organizer
type CreateEventRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"eventDescription"`
	Start       *time.Time   `json:"start,omitempty"`
	End         *time.Time   `json:"end,omitempty"`
	Venue       string       `json:"venue"`
	SalesStart  *time.Time   `json:"salesStart,omitempty"`
	SalesEnd    *time.Time   `json:"salesEnd,omitempty"`
	Status      EventStatus  `json:"status"`
	TicketTypes []TicketType `json:"ticketTypes"`
}

// UpdateEventRequest is the payload for updating an organizer's event
type UpdateEventRequest struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"eventDescription"`
	Start       *time.Time   `json:"start,omitempty"`
	End         *time.Time   `json:"end,omitempty"`
	Venue       string       `json:"venue"`
	SalesStart  *time.Time   `json:"salesStart,omitempty"`
	SalesEnd    *time.Time   `json:"salesEnd,omitempty"`
	Status      EventStatus  `json:"status"`
	TicketTypes []TicketType `json:"ticketTypes"`
}
