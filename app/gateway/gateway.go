package gateway

import (
	"context"
	"strings"

	"github.com/fooddelivery/ms-go-checkout/config"
)

const (
	ModeLive = "live"
	ModeMock = "mock"
)

type CreateOrderInput struct {
	AmountPaise int64
	Currency    string
	Receipt     string
}

type CreateOrderOutput struct {
	OrderID  string
	Currency string
	Status   string
}

// Gateway is the payment processor capability. Exactly one implementation is
// selected at startup; callers never branch on configuration themselves.
type Gateway interface {
	Mode() string
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// placeholderCredentials are the sample values that ship in docs and dotenv
// templates. Seeing one means nobody configured a real account.
var placeholderCredentials = map[string]struct{}{
	"rzp_test_your_key_id":    {},
	"your_key_secret":         {},
	"rzp_test_1DP5mmOlF5G5ag": {},
	"DUMMY_SECRET_KEY":        {},
}

// Select decides once, at process start, whether the service talks to the
// real gateway or runs simulated. The choice is never re-evaluated.
func Select(cfg config.RazorpayConfig) Gateway {
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)

	if keyID == "" || keySecret == "" {
		return NewMockGateway()
	}
	if _, ok := placeholderCredentials[keyID]; ok {
		return NewMockGateway()
	}
	if _, ok := placeholderCredentials[keySecret]; ok {
		return NewMockGateway()
	}

	return NewRazorpayGateway(cfg)
}
