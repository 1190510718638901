package api

import (
	"context"
	"fmt"
	"net/url"

	"evantra-web/internal/models"
)

// PurchaseTicket asks the backend to reserve tickets and create a payment
// order for them. The order must be settled through the payment gateway and
// then confirmed; an unconfirmed order never grants a ticket.
func (c *Client) PurchaseTicket(ctx context.Context, accessToken, eventID, ticketTypeID string, quantity int) (*models.PurchaseOrder, error) {
	path := fmt.Sprintf("/events/%s/ticket-types/%s/tickets?quantity=%d",
		url.PathEscape(eventID), url.PathEscape(ticketTypeID), quantity)
	var result models.PurchaseOrder
	if err := c.do(ctx, "POST", path, accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmPurchase reports a settled payment order back to the backend,
// which issues the tickets.
func (c *Client) ConfirmPurchase(ctx context.Context, accessToken, eventID, ticketTypeID, orderID string, quantity int) error {
	path := fmt.Sprintf("/events/%s/ticket-types/%s/tickets/confirm?orderId=%s&quantity=%d",
		url.PathEscape(eventID), url.PathEscape(ticketTypeID), url.QueryEscape(orderID), quantity)
	return c.do(ctx, "POST", path, accessToken, nil, nil)
}
