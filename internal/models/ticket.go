package models

import "time"

// TicketStatus represents the status of a purchased ticket
type TicketStatus string

const (
	TicketPurchased TicketStatus = "PURCHASED"
	TicketCancelled TicketStatus = "CANCELLED"
)

// TicketSummary is the list view of a ticket on the dashboard
type TicketSummary struct {
	ID         string       `json:"id"`
	Status     TicketStatus `json:"status"`
	TicketType TicketType   `json:"ticketType"`
}

// TicketDetails is the full view of a single ticket
type TicketDetails struct {
	ID           string       `json:"id"`
	Status       TicketStatus `json:"status"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	GSTRate      float64      `json:"gstRate"`
	DiscountRate float64      `json:"discountRate"`
	Description  string       `json:"description"`
	EventName    string       `json:"eventName"`
	EventVenue   string       `json:"eventVenue"`
	EventStart   *time.Time   `json:"eventStart,omitempty"`
	EventEnd     *time.Time   `json:"eventEnd,omitempty"`
}

// PurchaseOrder is the backend's response to a purchase request: a payment
// order the gateway charges against before the purchase is confirmed
type PurchaseOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// ValidationMethod is how a staff member validated a ticket at the venue
type ValidationMethod string

const (
	ValidationQRScan ValidationMethod = "QR_SCAN"
	ValidationManual ValidationMethod = "MANUAL"
)

// ValidationStatus is the backend's verdict on a validation attempt
type ValidationStatus string

const (
	ValidationValid   ValidationStatus = "VALID"
	ValidationInvalid ValidationStatus = "INVALID"
	ValidationExpired ValidationStatus = "EXPIRED"
)

// ValidateTicketRequest asks the backend to validate a ticket
type ValidateTicketRequest struct {
	ID     string           `json:"id"`
	Method ValidationMethod `json:"method"`
}

// ValidateTicketResponse is the outcome of a ticket validation
type ValidateTicketResponse struct {
	TicketID string           `json:"ticketId"`
	Status   ValidationStatus `json:"status"`
}

// OrganizerAnalytics aggregates sales figures for an organizer's events
type OrganizerAnalytics struct {
	TotalTicketsSold  int                 `json:"totalTicketsSold"`
	TotalRevenue      float64             `json:"totalRevenue"`
	TopEvents         []TopEvent          `json:"topEvents"`
	TicketTypeRevenue []TicketTypeRevenue `json:"ticketTypeRevenue"`
}

// TopEvent is one row of the organizer's best-selling events
type TopEvent struct {
	EventID     string  `json:"eventId"`
	EventName   string  `json:"eventName"`
	EventDate   string  `json:"eventDate"`
	TicketsSold int     `json:"ticketsSold"`
	Revenue     float64 `json:"revenue"`
}

// TicketTypeRevenue is revenue attributed to a single ticket type
type TicketTypeRevenue struct {
	TicketTypeID   string  `json:"ticketTypeId"`
	TicketTypeName string  `json:"ticketTypeName"`
	Revenue        float64 `json:"revenue"`
	Percentage     float64 `json:"percentage"`
}
