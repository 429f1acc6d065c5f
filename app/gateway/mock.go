package gateway

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// MockGateway stands in when no real gateway account is configured. Orders
// get synthetic ids and every signature verifies, so the full verification
// and settlement flow stays exercisable in development.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Mode() string {
	return ModeMock
}

func (g *MockGateway) CreateOrder(_ context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "INR"
	}

	return &CreateOrderOutput{
		OrderID:  "order_mock_" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Currency: currency,
		Status:   "created",
	}, nil
}

func (g *MockGateway) VerifySignature(_, _, _ string) bool {
	return true
}
