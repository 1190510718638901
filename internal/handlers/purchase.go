package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"evantra-web/internal/api"
	"evantra-web/internal/middleware"
	"evantra-web/internal/models"
	"evantra-web/internal/payment"
	"evantra-web/internal/purchase"
	"evantra-web/internal/roles"

	"github.com/go-chi/chi/v5"
)

// PurchaseHandler drives the attendee purchase flow across its pages: the
// ticket selection page, the gateway checkout, the gateway success callback,
// and retries.
type PurchaseHandler struct {
	api      *api.Client
	gateway  payment.Gateway
	registry *purchase.Registry
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(apiClient *api.Client, gateway payment.Gateway, registry *purchase.Registry) *PurchaseHandler {
	return &PurchaseHandler{
		api:      apiClient,
		gateway:  gateway,
		registry: registry,
	}
}

type purchasePageData struct {
	pageContext
	TxnID      string
	Snapshot   purchase.Snapshot
	Quantities []int
}

// StartPurchase mounts a new purchase transaction for the event and ticket
// type in the route, then redirects to the transaction's own URL. The
// redirect gives the transaction a stable address: refreshing the page
// re-renders the same transaction instead of mounting another one.
// Non-attendees still get a transaction, with the purchase action disabled.
func (h *PurchaseHandler) StartPurchase(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	ticketTypeID := chi.URLParam(r, "ticketTypeId")
	role := roles.Resolve(middleware.GetSessionFromContext(r.Context()))

	var txnID string
	controller := purchase.NewController(h.api, role, eventID, ticketTypeID, func() {
		// Success screen has moved on to the ticket list; the
		// transaction is finished.
		h.registry.Remove(txnID)
	})
	txnID = h.registry.Put(controller)

	if err := controller.Start(r.Context()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.registry.Remove(txnID)
			http.NotFound(w, r)
			return
		}
		// Other failures render on the transaction page with a retry
		// action.
		log.Printf("purchase start failed: %v", err)
	}

	http.Redirect(w, r, "/purchase/"+txnID, http.StatusSeeOther)
}

// Pay creates the payment order and hands the browser to the gateway's
// checkout overlay.
func (h *PurchaseHandler) Pay(w http.ResponseWriter, r *http.Request) {
	controller, txnID, ok := h.transaction(w, r)
	if !ok {
		return
	}
	session := middleware.GetSessionFromContext(r.Context())

	if qtyStr := r.FormValue("quantity"); qtyStr != "" {
		if qty, err := strconv.Atoi(qtyStr); err == nil {
			controller.SetQuantity(qty)
		}
	}

	order, err := controller.BeginPayment(r.Context(), session.AccessToken())
	if err != nil {
		if errors.Is(err, purchase.ErrBusy) {
			// Double click while the first attempt is in flight: no-op.
			http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
			return
		}
		if errors.Is(err, models.ErrUnauthorized) {
			http.Redirect(w, r, "/login?redirect="+r.URL.Path, http.StatusSeeOther)
			return
		}
		log.Printf("purchase pay failed: %v", err)
		h.renderPurchase(w, r, txnID, controller)
		return
	}

	snapshot := controller.Snapshot()
	checkout := h.gateway.NewCheckout(order,
		"Ticket Purchase for "+snapshot.TicketType.Name,
		session.Profile.Email, session.Profile.Phone)
	render(w, "checkout.tmpl", checkoutPageData{
		pageContext: newPageContext(r),
		TxnID:       txnID,
		Checkout:    checkout,
	})
}

type checkoutPageData struct {
	pageContext
	TxnID    string
	Checkout *payment.Checkout
}

// GatewayCallback handles the gateway's success callback. The signature is
// verified before the confirm step runs; an unverifiable callback never
// confirms anything.
func (h *PurchaseHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	controller, txnID, ok := h.transaction(w, r)
	if !ok {
		return
	}
	session := middleware.GetSessionFromContext(r.Context())

	cb := &payment.SuccessCallback{
		OrderID:   r.FormValue("razorpay_order_id"),
		PaymentID: r.FormValue("razorpay_payment_id"),
		Signature: r.FormValue("razorpay_signature"),
	}
	if !h.gateway.VerifyCallback(cb) {
		log.Printf("purchase callback: signature verification failed for txn %s", txnID)
		http.Error(w, "Invalid payment callback", http.StatusBadRequest)
		return
	}

	if err := controller.CompletePayment(r.Context(), session.AccessToken()); err != nil {
		if errors.Is(err, purchase.ErrBusy) {
			http.Redirect(w, r, "/purchase/"+txnID, http.StatusSeeOther)
			return
		}
		log.Printf("purchase confirm failed: %v", err)
		h.renderPurchase(w, r, txnID, controller)
		return
	}

	render(w, "purchase_success.tmpl", purchasePageData{
		pageContext: newPageContext(r),
		TxnID:       txnID,
		Snapshot:    controller.Snapshot(),
	})
}

// Retry re-runs the step that failed, without restarting the transaction.
// A confirm failure retries the confirm call only; the order is kept.
func (h *PurchaseHandler) Retry(w http.ResponseWriter, r *http.Request) {
	controller, txnID, ok := h.transaction(w, r)
	if !ok {
		return
	}
	session := middleware.GetSessionFromContext(r.Context())

	if err := controller.Retry(r.Context(), session.AccessToken()); err != nil {
		log.Printf("purchase retry failed: %v", err)
	}
	if controller.State() == purchase.Success {
		render(w, "purchase_success.tmpl", purchasePageData{
			pageContext: newPageContext(r),
			TxnID:       txnID,
			Snapshot:    controller.Snapshot(),
		})
		return
	}
	h.renderPurchase(w, r, txnID, controller)
}

// ShowPurchase re-renders an existing transaction's page.
func (h *PurchaseHandler) ShowPurchase(w http.ResponseWriter, r *http.Request) {
	controller, txnID, ok := h.transaction(w, r)
	if !ok {
		return
	}
	h.renderPurchase(w, r, txnID, controller)
}

// CancelPurchase abandons a transaction: the controller is closed so any
// in-flight work cannot mutate the discarded view.
func (h *PurchaseHandler) CancelPurchase(w http.ResponseWriter, r *http.Request) {
	txnID := chi.URLParam(r, "txnId")
	h.registry.Remove(txnID)
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}

func (h *PurchaseHandler) transaction(w http.ResponseWriter, r *http.Request) (*purchase.Controller, string, bool) {
	txnID := chi.URLParam(r, "txnId")
	controller := h.registry.Get(txnID)
	if controller == nil {
		http.Redirect(w, r, "/events", http.StatusSeeOther)
		return nil, "", false
	}
	return controller, txnID, true
}

func (h *PurchaseHandler) renderPurchase(w http.ResponseWriter, r *http.Request, txnID string, controller *purchase.Controller) {
	render(w, "purchase.tmpl", purchasePageData{
		pageContext: newPageContext(r),
		TxnID:       txnID,
		Snapshot:    controller.Snapshot(),
		Quantities:  controller.Quantities(),
	})
}
