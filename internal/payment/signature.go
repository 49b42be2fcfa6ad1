package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrInvalidSignature means the signature returned by the checkout page does not
// match what Razorpay would have produced for this order/payment pair. The order
// must be treated as unpaid.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Sign computes the hex-encoded HMAC-SHA256 of "orderID|paymentID" with the key
// secret. This is exactly the signature Razorpay sends back after a successful
// checkout.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a client-supplied signature against the expected one.
// The comparison is constant-time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
