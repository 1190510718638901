// Package payment is the port to the external payment gateway. The gateway
// runs its own checkout UI; this package only prepares its invocation and
// verifies its success callback.
package payment

import "evantra-web/internal/models"

// Checkout is everything the gateway's embedded checkout needs to charge a
// payment order.
type Checkout struct {
	KeyID          string
	OrderID        string
	Amount         int64
	Currency       string
	Name           string
	Description    string
	PrefillEmail   string
	PrefillContact string
}

// SuccessCallback is what the gateway reports after a successful charge.
// The signature must verify before the purchase confirm step may run.
type SuccessCallback struct {
	OrderID   string
	PaymentID string
	Signature string
}

// Gateway prepares checkout invocations and authenticates their callbacks.
type Gateway interface {
	// NewCheckout builds the checkout parameters for a payment order.
	NewCheckout(order *models.PurchaseOrder, description, email, contact string) *Checkout

	// VerifyCallback reports whether the success callback genuinely came
	// from the gateway.
	VerifyCallback(cb *SuccessCallback) bool
}
