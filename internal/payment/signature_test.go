package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	sig := Sign("order_abc", "pay_123", "s3cret")

	// Hex-encoded SHA-256 digest, so always 64 hex characters.
	assert.Len(t, sig, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", sig)

	// Deterministic for the same inputs.
	assert.Equal(t, sig, Sign("order_abc", "pay_123", "s3cret"))

	// Any input change produces a different signature.
	assert.NotEqual(t, sig, Sign("order_abd", "pay_123", "s3cret"))
	assert.NotEqual(t, sig, Sign("order_abc", "pay_124", "s3cret"))
	assert.NotEqual(t, sig, Sign("order_abc", "pay_123", "other"))
}

func TestSign_SeparatorIsUnambiguous(t *testing.T) {
	// "a|bc" and "ab|c" must not collide: the pipe belongs to the format, not
	// the ids.
	assert.NotEqual(t, Sign("a", "bc", "s3cret"), Sign("ab", "c", "s3cret"))
}

func TestVerifySignature(t *testing.T) {
	const (
		orderID   = "order_abc"
		paymentID = "pay_123"
		secret    = "s3cret"
	)
	valid := Sign(orderID, paymentID, secret)

	tests := []struct {
		name      string
		signature string
		want      bool
	}{
		{name: "exact signature", signature: valid, want: true},
		{name: "empty signature", signature: "", want: false},
		{name: "truncated signature", signature: valid[:63], want: false},
		{name: "corrupted first character", signature: "x" + valid[1:], want: false},
		{name: "uppercase hex is not accepted", signature: "A" + valid[1:], want: false},
		{name: "signature under a different secret", signature: Sign(orderID, paymentID, "wrong"), want: false},
		{name: "signature for a different payment", signature: Sign(orderID, "pay_999", secret), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(orderID, paymentID, tt.signature, secret)
			assert.Equal(t, tt.want, got)
		})
	}
}
