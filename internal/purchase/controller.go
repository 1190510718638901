// Package purchase drives a ticket purchase from selection through the
// external payment gateway to backend confirmation.
package purchase

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"evantra-web/internal/models"
	"evantra-web/internal/roles"
)

// State is the purchase transaction's position in the flow.
type State int

const (
	Idle State = iota
	FetchingTicketType
	Ready
	AuthorizingPayment
	ConfirmingPurchase
	Success
	Blocked
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingTicketType:
		return "fetching_ticket_type"
	case Ready:
		return "ready"
	case AuthorizingPayment:
		return "authorizing_payment"
	case ConfirmingPurchase:
		return "confirming_purchase"
	case Success:
		return "success"
	case Blocked:
		return "blocked"
	case Failed:
		return "failed"
	}
	return "unknown"
}

const (
	// maxQuantity caps a single purchase regardless of availability.
	maxQuantity = 10

	// successNavigationDelay is how long the success screen shows before
	// the automatic move to the ticket list.
	successNavigationDelay = 3 * time.Second
)

var (
	// ErrBusy means a transition is already in flight; the caller's action
	// is a no-op, not a failure to display.
	ErrBusy = errors.New("purchase transition already in flight")

	// ErrSoldOut means no seats remain; no order is ever created.
	ErrSoldOut = errors.New("ticket type is sold out")

	// ErrRoleIneligible means the signed-in role may not purchase. This is
	// a local short-circuit, distinct from a server rejection.
	ErrRoleIneligible = errors.New("only attendees can purchase tickets")

	errWrongState = errors.New("action not valid in current state")
)

// Backend is the slice of the API client the controller needs.
type Backend interface {
	GetPublishedEvent(ctx context.Context, id string) (*models.PublishedEvent, error)
	PurchaseTicket(ctx context.Context, accessToken, eventID, ticketTypeID string, quantity int) (*models.PurchaseOrder, error)
	ConfirmPurchase(ctx context.Context, accessToken, eventID, ticketTypeID, orderID string, quantity int) error
}

// Controller is one purchase transaction. Transitions are strictly
// sequential: a second action while a network call is outstanding is
// rejected with ErrBusy. Closing the controller suppresses any late effects
// from in-flight calls.
type Controller struct {
	api        Backend
	role       roles.Role
	eventID    string
	ticketType string
	onNavigate func()

	mu         sync.Mutex
	state      State
	inFlight   bool
	tt         models.TicketType
	eventName  string
	quantity   int
	order      *models.PurchaseOrder
	errMessage string
	failedStep State
	navTimer   *time.Timer
	closed     bool
}

// NewController creates a purchase transaction for one ticket type. The
// role decides up front whether the purchase action is available; onNavigate
// fires once, three seconds after success, unless the controller is closed
// first. onNavigate may be nil.
func NewController(api Backend, role roles.Role, eventID, ticketTypeID string, onNavigate func()) *Controller {
	return &Controller{
		api:        api,
		role:       role,
		eventID:    eventID,
		ticketType: ticketTypeID,
		onNavigate: onNavigate,
		state:      Idle,
		quantity:   1,
	}
}

// Start loads the ticket type from the published event. Idle → Ready, or
// Blocked for non-attendee roles (details still load so the page can show
// them), or Failed when the fetch fails or the ticket type is gone.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.state != Idle && !(c.state == Failed && c.failedStep == FetchingTicketType) {
		c.mu.Unlock()
		return errWrongState
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = FetchingTicketType
	c.inFlight = true
	c.mu.Unlock()

	event, err := c.api.GetPublishedEvent(ctx, c.eventID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		return nil
	}
	if err != nil {
		c.fail(FetchingTicketType, err)
		return err
	}

	tt, found := event.TicketTypeByID(c.ticketType)
	if !found {
		err := models.NewAPIError(404, "Ticket type not found")
		c.fail(FetchingTicketType, err)
		return err
	}

	c.tt = tt
	c.eventName = event.Name
	c.quantity = clampQuantity(c.quantity, tt.SeatsLeft)
	if c.role != roles.Attendee {
		c.state = Blocked
	} else {
		c.state = Ready
	}
	return nil
}

// SetQuantity records the attendee's quantity selection, clamped to
// [1, min(10, seats left)].
func (c *Controller) SetQuantity(quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready && c.state != Blocked {
		return
	}
	c.quantity = clampQuantity(quantity, c.tt.SeatsLeft)
}

// Quantities returns the selectable quantity values for the UI.
func (c *Controller) Quantities() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	max := c.tt.SeatsLeft
	if max > maxQuantity {
		max = maxQuantity
	}
	choices := make([]int, 0, max)
	for i := 1; i <= max; i++ {
		choices = append(choices, i)
	}
	return choices
}

// Amount is the payable amount in whole currency units:
// price x quantity x (1 + gst% - discount%), rounded to nearest.
func (c *Controller) Amount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return payable(c.tt, c.quantity)
}

func payable(tt models.TicketType, quantity int) int64 {
	factor := 1 + tt.GSTRate/100 - tt.DiscountRate/100
	return int64(math.Round(tt.Price * float64(quantity) * factor))
}

// BeginPayment creates the payment order on the backend and moves to
// AuthorizingPayment. The returned order is what the gateway overlay charges
// against; creating it is the point of no return for money movement, so
// every local precondition is checked before the call.
func (c *Controller) BeginPayment(ctx context.Context, accessToken string) (*models.PurchaseOrder, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errWrongState
	}
	if c.state == Blocked {
		c.mu.Unlock()
		return nil, ErrRoleIneligible
	}
	if c.inFlight || c.state == AuthorizingPayment || c.state == ConfirmingPurchase {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.state != Ready && !(c.state == Failed && c.failedStep == AuthorizingPayment) {
		c.mu.Unlock()
		return nil, errWrongState
	}
	if c.tt.SeatsLeft == 0 {
		c.mu.Unlock()
		return nil, ErrSoldOut
	}
	quantity := c.quantity
	c.state = AuthorizingPayment
	c.inFlight = true
	c.mu.Unlock()

	order, err := c.api.PurchaseTicket(ctx, accessToken, c.eventID, c.ticketType, quantity)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		return nil, errWrongState
	}
	if err != nil {
		c.fail(AuthorizingPayment, err)
		return nil, err
	}
	c.order = order
	return order, nil
}

// CompletePayment runs the confirm step. It is triggered only by the
// gateway's verified success callback, never inferred by polling. A confirm
// failure keeps the order so a retry re-invokes confirm alone.
func (c *Controller) CompletePayment(ctx context.Context, accessToken string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errWrongState
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != AuthorizingPayment && !(c.state == Failed && c.failedStep == ConfirmingPurchase) {
		c.mu.Unlock()
		return errWrongState
	}
	if c.order == nil {
		c.mu.Unlock()
		return errWrongState
	}
	orderID := c.order.OrderID
	quantity := c.quantity
	c.state = ConfirmingPurchase
	c.inFlight = true
	c.mu.Unlock()

	err := c.api.ConfirmPurchase(ctx, accessToken, c.eventID, c.ticketType, orderID, quantity)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if c.closed {
		return errWrongState
	}
	if err != nil {
		c.fail(ConfirmingPurchase, err)
		return err
	}
	c.state = Success
	c.navTimer = time.AfterFunc(successNavigationDelay, func() {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if !closed && c.onNavigate != nil {
			c.onNavigate()
		}
	})
	return nil
}

// Retry re-runs the step that failed. The controller does not reset on
// failure, so a confirm retry reuses the existing order instead of creating
// a new one.
func (c *Controller) Retry(ctx context.Context, accessToken string) error {
	c.mu.Lock()
	if c.state != Failed {
		c.mu.Unlock()
		return errWrongState
	}
	step := c.failedStep
	c.mu.Unlock()

	switch step {
	case FetchingTicketType:
		return c.Start(ctx)
	case AuthorizingPayment:
		_, err := c.BeginPayment(ctx, accessToken)
		return err
	case ConfirmingPurchase:
		return c.CompletePayment(ctx, accessToken)
	}
	return errWrongState
}

// Close tears the transaction down: the navigation timer is cancelled and
// any in-flight call's completion is suppressed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.navTimer != nil {
		c.navTimer.Stop()
		c.navTimer = nil
	}
}

// fail records the failed step and message. Caller holds the lock.
func (c *Controller) fail(step State, err error) {
	c.state = Failed
	c.failedStep = step
	c.errMessage = models.UserMessage(err)
}

// Snapshot is a consistent read of the transaction for rendering.
type Snapshot struct {
	State        State
	EventID      string
	EventName    string
	TicketType   models.TicketType
	Quantity     int
	Amount       int64
	Order        *models.PurchaseOrder
	ErrorMessage string
	SoldOut      bool
	CanPurchase  bool
}

// Snapshot returns the current view of the transaction.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:        c.state,
		EventID:      c.eventID,
		EventName:    c.eventName,
		TicketType:   c.tt,
		Quantity:     c.quantity,
		Amount:       payable(c.tt, c.quantity),
		Order:        c.order,
		ErrorMessage: c.errMessage,
		SoldOut:      c.state != Idle && c.state != FetchingTicketType && c.tt.SeatsLeft == 0,
		CanPurchase:  c.state == Ready && c.tt.SeatsLeft > 0 && !c.inFlight,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorMessage returns the display message of the last failure, "" if none.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMessage
}

func clampQuantity(quantity, seatsLeft int) int {
	max := seatsLeft
	if max > maxQuantity {
		max = maxQuantity
	}
	if max < 1 {
		// Sold out: the action is disabled, but keep a sane value.
		return 1
	}
	if quantity < 1 {
		return 1
	}
	if quantity > max {
		return max
	}
	return quantity
}
