package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fooddelivery/ms-go-checkout/config"
)

const razorpayBaseURL = "https://api.razorpay.com"

type RazorpayGateway struct {
	cfg    config.RazorpayConfig
	client *http.Client
}

func NewRazorpayGateway(cfg config.RazorpayConfig) *RazorpayGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *RazorpayGateway) Mode() string {
	return ModeLive
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	body := map[string]interface{}{
		"amount":          input.AmountPaise,
		"currency":        strings.ToUpper(strings.TrimSpace(input.Currency)),
		"receipt":         strings.TrimSpace(input.Receipt),
		"payment_capture": 1,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, razorpayBaseURL+"/v1/orders", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("razorpay create order failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var payload struct {
		ID       string `json:"id"`
		Currency string `json:"currency"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.ID) == "" {
		return nil, fmt.Errorf("razorpay create order returned no order id: body=%s", string(respBody))
	}

	return &CreateOrderOutput{
		OrderID:  payload.ID,
		Currency: payload.Currency,
		Status:   payload.Status,
	}, nil
}

// VerifySignature recomputes HMAC-SHA256(key_secret, order_id + "|" +
// payment_id) and compares it to the submitted hex signature in constant
// time. A mismatch is a normal false, not an error.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	submitted, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	_, _ = mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := mac.Sum(nil)

	return hmac.Equal(submitted, expected)
}
