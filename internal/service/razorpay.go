package service

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements Gateway against the Razorpay Orders API.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreatePaymentOrder creates a provider order and returns its id. The SDK
// does not take a context; the ctx parameter keeps the Gateway interface
// honest for implementations that do.
func (g *RazorpayGateway) CreatePaymentOrder(_ context.Context, amountPaise int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}
	id, ok := body["id"].(string)
	if !ok {
		return "", fmt.Errorf("gateway response missing order id")
	}
	return id, nil
}
