package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"evantra-web/internal/models"

	"github.com/stretchr/testify/assert"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCallback(t *testing.T) {
	gateway := NewRazorpayGateway("key_id", "key_secret")

	valid := &SuccessCallback{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sign("key_secret", "order_abc", "pay_xyz"),
	}
	assert.True(t, gateway.VerifyCallback(valid))

	tampered := &SuccessCallback{
		OrderID:   "order_abc",
		PaymentID: "pay_other",
		Signature: valid.Signature,
	}
	assert.False(t, gateway.VerifyCallback(tampered))

	wrongKey := &SuccessCallback{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: sign("other_secret", "order_abc", "pay_xyz"),
	}
	assert.False(t, gateway.VerifyCallback(wrongKey))

	assert.False(t, gateway.VerifyCallback(&SuccessCallback{}))
	assert.False(t, gateway.VerifyCallback(&SuccessCallback{OrderID: "order_abc", PaymentID: "pay_xyz"}))
}

func TestNewCheckout(t *testing.T) {
	gateway := NewRazorpayGateway("key_id", "key_secret")
	order := &models.PurchaseOrder{OrderID: "order_abc", Amount: 108, Currency: "INR"}

	checkout := gateway.NewCheckout(order, "Ticket Purchase for VIP", "a@example.com", "9999999999")
	assert.Equal(t, "key_id", checkout.KeyID)
	assert.Equal(t, "order_abc", checkout.OrderID)
	assert.Equal(t, int64(108), checkout.Amount)
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, "a@example.com", checkout.PrefillEmail)
	assert.Equal(t, "9999999999", checkout.PrefillContact)
}
