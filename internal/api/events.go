package api

import (
	"context"
	"fmt"
	"net/url"

	"evantra-web/internal/models"
)

// Published event page sizes match what the backend serves to the web UI.
const (
	publishedPageSize = 50
	organizerPageSize = 2
)

// ListPublishedEvents fetches one page of publicly browsable events.
func (c *Client) ListPublishedEvents(ctx context.Context, page int) (*models.Page[models.PublishedEventSummary], error) {
	path := fmt.Sprintf("/published-events?page=%d&size=%d", page, publishedPageSize)
	var result models.Page[models.PublishedEventSummary]
	if err := c.do(ctx, "GET", path, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchPublishedEvents fetches one page of events matching the query.
func (c *Client) SearchPublishedEvents(ctx context.Context, query string, page int) (*models.Page[models.PublishedEventSummary], error) {
	path := fmt.Sprintf("/published-events?q=%s&page=%d&size=%d", url.QueryEscape(query), page, publishedPageSize)
	var result models.Page[models.PublishedEventSummary]
	if err := c.do(ctx, "GET", path, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPublishedEvent fetches the public detail view of one event.
func (c *Client) GetPublishedEvent(ctx context.Context, id string) (*models.PublishedEvent, error) {
	var result models.PublishedEvent
	if err := c.do(ctx, "GET", "/published-events/"+url.PathEscape(id), "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListEvents fetches one page of the organizer's own events.
func (c *Client) ListEvents(ctx context.Context, accessToken string, page int) (*models.Page[models.Event], error) {
	path := fmt.Sprintf("/events?page=%d&size=%d", page, organizerPageSize)
	var result models.Page[models.Event]
	if err := c.do(ctx, "GET", path, accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetEvent fetches the organizer's full view of one of their events.
func (c *Client) GetEvent(ctx context.Context, accessToken, id string) (*models.Event, error) {
	var result models.Event
	if err := c.do(ctx, "GET", "/events/"+url.PathEscape(id), accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateEvent creates a new event for the signed-in organizer. The event
// goes as a JSON "event" part of a multipart request; image may be nil.
func (c *Client) CreateEvent(ctx context.Context, accessToken string, req *models.CreateEventRequest, image *Upload) error {
	return c.doMultipart(ctx, "POST", "/events", accessToken, req, image)
}

// UpdateEvent updates one of the signed-in organizer's events, same request
// shape as CreateEvent.
func (c *Client) UpdateEvent(ctx context.Context, accessToken, id string, req *models.UpdateEventRequest, image *Upload) error {
	return c.doMultipart(ctx, "PUT", "/events/"+url.PathEscape(id), accessToken, req, image)
}

// DeleteEvent deletes one of the signed-in organizer's events.
func (c *Client) DeleteEvent(ctx context.Context, accessToken, id string) error {
	return c.do(ctx, "DELETE", "/events/"+url.PathEscape(id), accessToken, nil, nil)
}

// GetOrganizerAnalytics fetches sales analytics for the signed-in organizer.
func (c *Client) GetOrganizerAnalytics(ctx context.Context, accessToken string) (*models.OrganizerAnalytics, error) {
	var result models.OrganizerAnalytics
	if err := c.do(ctx, "GET", "/organizers/analytics", accessToken, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
