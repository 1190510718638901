package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"evantra-web/internal/models"
)

// RazorpayGateway implements the Gateway port for Razorpay's hosted
// checkout overlay.
type RazorpayGateway struct {
	keyID     string
	keySecret string
}

// NewRazorpayGateway creates a Razorpay gateway adapter
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{keyID: keyID, keySecret: keySecret}
}

func (g *RazorpayGateway) NewCheckout(order *models.PurchaseOrder, description, email, contact string) *Checkout {
	return &Checkout{
		KeyID:          g.keyID,
		OrderID:        order.OrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Name:           "ABC Evantra",
		Description:    description,
		PrefillEmail:   email,
		PrefillContact: contact,
	}
}

// VerifyCallback checks the callback signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" under the key secret, hex encoded.
func (g *RazorpayGateway) VerifyCallback(cb *SuccessCallback) bool {
	if cb.OrderID == "" || cb.PaymentID == "" || cb.Signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(cb.OrderID + "|" + cb.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(cb.Signature))
}
