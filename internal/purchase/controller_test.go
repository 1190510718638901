package purchase

import (
	"context"
	"sync"
	"testing"
	"time"

	"evantra-web/internal/models"
	"evantra-web/internal/roles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock backend for testing
type mockBackend struct {
	mu sync.Mutex

	event    *models.PublishedEvent
	eventErr error

	order       *models.PurchaseOrder
	purchaseErr error
	confirmErr  error

	purchaseBlock chan struct{}
	confirmBlock  chan struct{}

	eventCalls    int
	purchaseCalls int
	confirmCalls  int
}

func (m *mockBackend) GetPublishedEvent(ctx context.Context, id string) (*models.PublishedEvent, error) {
	m.mu.Lock()
	m.eventCalls++
	event, err := m.event, m.eventErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (m *mockBackend) PurchaseTicket(ctx context.Context, accessToken, eventID, ticketTypeID string, quantity int) (*models.PurchaseOrder, error) {
	m.mu.Lock()
	m.purchaseCalls++
	block := m.purchaseBlock
	order, err := m.order, m.purchaseErr
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (m *mockBackend) ConfirmPurchase(ctx context.Context, accessToken, eventID, ticketTypeID, orderID string, quantity int) error {
	m.mu.Lock()
	m.confirmCalls++
	block := m.confirmBlock
	err := m.confirmErr
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (m *mockBackend) counts() (event, purchase, confirm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventCalls, m.purchaseCalls, m.confirmCalls
}

func newMockBackend(seatsLeft int) *mockBackend {
	return &mockBackend{
		event: &models.PublishedEvent{
			ID:   "event-1",
			Name: "Summer Festival",
			TicketTypes: []models.TicketType{
				{
					ID:           "tt-1",
					Name:         "General Admission",
					Price:        100,
					GSTRate:      18,
					DiscountRate: 10,
					SeatsLeft:    seatsLeft,
				},
			},
		},
		order: &models.PurchaseOrder{OrderID: "order_abc", Amount: 108, Currency: "INR"},
	}
}

func TestStartMovesToReady(t *testing.T) {
	backend := newMockBackend(3)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)

	err := controller.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Ready, controller.State())
	snapshot := controller.Snapshot()
	assert.Equal(t, "Summer Festival", snapshot.EventName)
	assert.Equal(t, "General Admission", snapshot.TicketType.Name)
	assert.True(t, snapshot.CanPurchase)
}

func TestStartBlocksNonAttendees(t *testing.T) {
	for _, role := range []roles.Role{roles.Organizer, roles.Staff} {
		backend := newMockBackend(3)
		controller := NewController(backend, role, "event-1", "tt-1", nil)

		require.NoError(t, controller.Start(context.Background()))
		assert.Equal(t, Blocked, controller.State(), "role %s", role)

		// Details still loaded so the page can show them.
		snapshot := controller.Snapshot()
		assert.Equal(t, "General Admission", snapshot.TicketType.Name)
		assert.False(t, snapshot.CanPurchase)

		_, err := controller.BeginPayment(context.Background(), "token")
		assert.ErrorIs(t, err, ErrRoleIneligible)
	}
}

func TestStartUnknownTicketType(t *testing.T) {
	backend := newMockBackend(3)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-missing", nil)

	err := controller.Start(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, Failed, controller.State())
}

func TestStartFetchFailureIsRetryable(t *testing.T) {
	backend := newMockBackend(3)
	backend.eventErr = models.NewAPIError(500, "internal error")
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)

	require.Error(t, controller.Start(context.Background()))
	assert.Equal(t, Failed, controller.State())
	assert.Equal(t, "internal error", controller.ErrorMessage())

	backend.mu.Lock()
	backend.eventErr = nil
	backend.mu.Unlock()

	require.NoError(t, controller.Retry(context.Background(), "token"))
	assert.Equal(t, Ready, controller.State())
}

func TestQuantityClamping(t *testing.T) {
	tests := []struct {
		name      string
		seatsLeft int
		requested int
		want      int
	}{
		{"within range", 50, 5, 5},
		{"capped at ten", 50, 99, 10},
		{"capped at seats left", 3, 7, 3},
		{"floor of one", 50, 0, 1},
		{"negative", 50, -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMockBackend(tt.seatsLeft)
			controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
			require.NoError(t, controller.Start(context.Background()))

			controller.SetQuantity(tt.requested)
			assert.Equal(t, tt.want, controller.Snapshot().Quantity)
		})
	}
}

func TestQuantities(t *testing.T) {
	backend := newMockBackend(3)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, controller.Quantities())

	backend = newMockBackend(50)
	controller = NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, controller.Quantities())
}

func TestAmount(t *testing.T) {
	// price 100, gst 18%, discount 10% -> 108 per ticket
	backend := newMockBackend(10)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))

	assert.Equal(t, int64(108), controller.Amount())

	controller.SetQuantity(3)
	assert.Equal(t, int64(324), controller.Amount())
}

func TestSoldOutNeverCreatesOrder(t *testing.T) {
	backend := newMockBackend(0)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))

	snapshot := controller.Snapshot()
	assert.True(t, snapshot.SoldOut)
	assert.False(t, snapshot.CanPurchase)

	_, err := controller.BeginPayment(context.Background(), "token")
	assert.ErrorIs(t, err, ErrSoldOut)

	_, purchases, _ := backend.counts()
	assert.Zero(t, purchases, "no order may be created for a sold out ticket type")
}

func TestBeginPaymentWhileInFlightIsBusy(t *testing.T) {
	backend := newMockBackend(5)
	backend.purchaseBlock = make(chan struct{})
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		controller.BeginPayment(context.Background(), "token")
		close(done)
	}()

	// Wait until the first call is inside the backend.
	for {
		if _, purchases, _ := backend.counts(); purchases == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	_, err := controller.BeginPayment(context.Background(), "token")
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.purchaseBlock)
	<-done

	_, purchases, _ := backend.counts()
	assert.Equal(t, 1, purchases, "the duplicate action must not reach the backend")
}

func TestConfirmFailureRetriesConfirmOnly(t *testing.T) {
	backend := newMockBackend(5)
	backend.confirmErr = models.NewAPIError(500, "confirm failed")
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))

	order, err := controller.BeginPayment(context.Background(), "token")
	require.NoError(t, err)
	require.Equal(t, "order_abc", order.OrderID)

	require.Error(t, controller.CompletePayment(context.Background(), "token"))
	assert.Equal(t, Failed, controller.State())
	assert.Equal(t, "confirm failed", controller.ErrorMessage())

	// The order survives the failure; retry re-runs the confirm step alone.
	assert.Equal(t, "order_abc", controller.Snapshot().Order.OrderID)

	backend.mu.Lock()
	backend.confirmErr = nil
	backend.mu.Unlock()

	require.NoError(t, controller.Retry(context.Background(), "token"))
	assert.Equal(t, Success, controller.State())

	_, purchases, confirms := backend.counts()
	assert.Equal(t, 1, purchases, "retry must not create a second order")
	assert.Equal(t, 2, confirms)
}

func TestCloseSuppressesInFlightCompletion(t *testing.T) {
	backend := newMockBackend(5)
	backend.confirmBlock = make(chan struct{})
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)
	require.NoError(t, controller.Start(context.Background()))

	_, err := controller.BeginPayment(context.Background(), "token")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- controller.CompletePayment(context.Background(), "token")
	}()
	for {
		if _, _, confirms := backend.counts(); confirms == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	controller.Close()
	close(backend.confirmBlock)

	assert.Error(t, <-done)
	assert.NotEqual(t, Success, controller.State())
}

func TestNavigationCallbackSkippedAfterClose(t *testing.T) {
	backend := newMockBackend(5)
	navigated := make(chan struct{}, 1)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", func() {
		navigated <- struct{}{}
	})
	require.NoError(t, controller.Start(context.Background()))

	_, err := controller.BeginPayment(context.Background(), "token")
	require.NoError(t, err)
	require.NoError(t, controller.CompletePayment(context.Background(), "token"))
	require.Equal(t, Success, controller.State())

	// Closing before the delay elapses cancels the pending navigation.
	controller.Close()
	select {
	case <-navigated:
		t.Fatal("navigation fired after close")
	default:
	}
}

func TestBeginPaymentRequiresReady(t *testing.T) {
	backend := newMockBackend(5)
	controller := NewController(backend, roles.Attendee, "event-1", "tt-1", nil)

	// Not started yet.
	_, err := controller.BeginPayment(context.Background(), "token")
	assert.Error(t, err)

	// Confirm without an order.
	assert.Error(t, controller.CompletePayment(context.Background(), "token"))
}
