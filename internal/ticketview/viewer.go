// Package ticketview loads a purchased ticket and its scannable credential
// for display.
package ticketview

import (
	"context"
	"sync"

	"evantra-web/internal/models"

	"golang.org/x/sync/errgroup"
)

// Backend is the slice of the API client the viewer needs.
type Backend interface {
	GetTicket(ctx context.Context, accessToken, id string) (*models.TicketDetails, error)
	GetTicketQR(ctx context.Context, accessToken, id string) ([]byte, string, error)
}

// CredentialHandle owns the credential image bytes for one ticket. It is a
// scoped resource: Release must run exactly once, on replacement by a newer
// load or on viewer close, whichever comes first.
type CredentialHandle struct {
	ticketID    string
	contentType string

	mu   sync.Mutex
	data []byte
}

// TicketID returns the ticket the credential belongs to.
func (h *CredentialHandle) TicketID() string {
	return h.ticketID
}

// ContentType returns the image content type reported by the backend.
func (h *CredentialHandle) ContentType() string {
	return h.contentType
}

// Bytes returns the image data, nil after release.
func (h *CredentialHandle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data
}

// Release frees the credential. Releasing twice is safe and does nothing
// the second time.
func (h *CredentialHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
}

// Released reports whether the handle has been released.
func (h *CredentialHandle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data == nil
}

// View is the loaded state of the ticket page. Details and Credential land
// independently; either may be set while the other errored.
type View struct {
	Details       *models.TicketDetails
	DetailsErr    error
	Credential    *CredentialHandle
	CredentialErr error
}

// Viewer fetches tickets and owns the lifetime of their credential handles.
// A newer load for a different ticket releases the previous credential; so
// does Close.
type Viewer struct {
	api Backend

	mu      sync.Mutex
	current *CredentialHandle
	closed  bool
}

// NewViewer creates a ticket viewer
func NewViewer(api Backend) *Viewer {
	return &Viewer{api: api}
}

// Load fetches the ticket details and credential concurrently. Each result
// is reported independently in the returned View, so the page can render the
// credential even when the details call failed, and vice versa.
func (v *Viewer) Load(ctx context.Context, accessToken, ticketID string) *View {
	view := &View{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Details, view.DetailsErr = v.api.GetTicket(gctx, accessToken, ticketID)
		// Failures are carried in the view, not the group: the other
		// fetch must keep going.
		return nil
	})

	var credData []byte
	var credType string
	var credErr error
	g.Go(func() error {
		credData, credType, credErr = v.api.GetTicketQR(gctx, accessToken, ticketID)
		return nil
	})
	_ = g.Wait()

	if credErr != nil {
		view.CredentialErr = credErr
		return view
	}

	handle := &CredentialHandle{ticketID: ticketID, contentType: credType, data: credData}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		// The view went away while the fetch was in flight; the fresh
		// credential has no owner, release it immediately.
		handle.Release()
		view.CredentialErr = context.Canceled
		return view
	}
	if v.current != nil {
		v.current.Release()
	}
	v.current = handle
	view.Credential = handle
	return view
}

// Credential returns the currently held credential handle, nil if none.
func (v *Viewer) Credential() *CredentialHandle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Close releases the held credential. Loads completing after Close release
// their result instead of keeping it.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.current != nil {
		v.current.Release()
		v.current = nil
	}
}
