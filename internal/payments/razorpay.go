package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway wraps the Razorpay client for top-up order creation and payment
// verification
type Gateway struct {
	client *razorpay.Client
	secret string
}

// NewGateway builds a Razorpay gateway from key id and secret
func NewGateway(keyID, keySecret string) *Gateway {
	return &Gateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder creates a Razorpay order for the amount in INR and returns the
// order id. Razorpay amounts are in paise.
func (g *Gateway) CreateOrder(amountINR int64, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountINR * 100,
		"currency": "INR",
		"receipt":  receipt,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}
	id, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("unexpected order response: %v", order)
	}
	return id, nil
}

// VerifySignature checks the checkout callback signature:
// HMAC-SHA256(order_id|payment_id, key_secret)
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("invalid payment signature")
	}
	return nil
}
