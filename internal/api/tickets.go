package api

import (
	"context"
	"fmt"
	"net/url"

	"evantra-web/internal/models"
)

const ticketPageSize = 8

// ListTickets fetches one page of the signed-in attendee's tickets.
func (c *Client) ListTickets(ctx context.Context, accessToken string, page int) (*models.Page[models.TicketSummary], error) {
	path := fmt.Sprintf("/tickets?page=%d&size=%d", page, ticketPageSize)
	var result models.Page[models.TicketSummary]
	if err := c.do(ctx, "GET", path, accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTicket fetches the detail view of one of the attendee's tickets.
func (c *Client) GetTicket(ctx context.Context, accessToken, id string) (*models.TicketDetails, error) {
	var result models.TicketDetails
	if err := c.do(ctx, "GET", "/tickets/"+url.PathEscape(id), accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTicketQR fetches the scannable credential image for a ticket. Returns
// the image bytes and their content type.
func (c *Client) GetTicketQR(ctx context.Context, accessToken, id string) ([]byte, string, error) {
	return c.raw(ctx, "GET", "/tickets/"+url.PathEscape(id)+"/qr-codes", accessToken)
}

// ValidateTicket submits a staff validation of a ticket at the venue.
func (c *Client) ValidateTicket(ctx context.Context, accessToken string, req *models.ValidateTicketRequest) (*models.ValidateTicketResponse, error) {
	var result models.ValidateTicketResponse
	if err := c.do(ctx, "POST", "/ticket-validations", accessToken, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
