package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/service"
)

// SignatureHeader carries the gateway's HMAC of the raw request body
const SignatureHeader = "X-Razorpay-Signature"

// Verifier checks Razorpay webhook signatures
type Verifier struct {
	secret string
	logger *zap.Logger
}

// NewVerifier creates a new webhook verifier
func NewVerifier(secret string, logger *zap.Logger) *Verifier {
	return &Verifier{
		secret: secret,
		logger: logger,
	}
}

// Sign returns the hex HMAC-SHA256 of body under the webhook secret
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify implements service.SignatureVerifier. An unset secret rejects everything.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v.secret == "" {
		v.logger.Warn("Webhook secret not configured, rejecting delivery")
		return fmt.Errorf("%w: webhook secret not configured", service.ErrInvalidSignature)
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", service.ErrInvalidSignature, SignatureHeader)
	}

	expected, err := hex.DecodeString(v.Sign(body))
	if err != nil {
		return err
	}
	got, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil || !hmac.Equal(expected, got) {
		return service.ErrInvalidSignature
	}
	return nil
}
