package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewGateway("key_id", "key_secret")
	sig := sign("key_secret", "order_123", "pay_456")
	if err := g.VerifySignature("order_123", "pay_456", sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	g := NewGateway("key_id", "key_secret")
	sig := sign("key_secret", "order_123", "pay_456")
	if err := g.VerifySignature("order_999", "pay_456", sig); err == nil {
		t.Fatal("expected error for mismatched order id")
	}
	if err := g.VerifySignature("order_123", "pay_456", "deadbeef"); err == nil {
		t.Fatal("expected error for forged signature")
	}
}
