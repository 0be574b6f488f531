package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

var (
	// ErrConfigMissing means gateway credentials are absent. Checked before
	// any network call so a misconfigured deployment fails loudly instead of
	// with a confusing provider error.
	ErrConfigMissing = errors.New("payment gateway credentials missing")
	ErrGateway       = errors.New("payment gateway request failed")
)

// Gateway is the slice of the payment provider the checkout flow needs.
type Gateway interface {
	CreateOrder(amountMinor int64, currency, receipt string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
}

// Razorpay creates remote orders sized in minor currency units (paise) and
// verifies the checkout callback signature.
type Razorpay struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) (*Razorpay, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrConfigMissing
	}
	return &Razorpay{
		keyID:     keyID,
		keySecret: keySecret,
		client:    razorpay.NewClient(keyID, keySecret),
	}, nil
}

func (r *Razorpay) KeyID() string {
	return r.keyID
}

func (r *Razorpay) CreateOrder(amountMinor int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	order, err := r.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	id, ok := order["id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: response missing order id", ErrGateway)
	}
	return id, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" signed with
// the key secret, the scheme Razorpay uses in its checkout callback.
func (r *Razorpay) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
