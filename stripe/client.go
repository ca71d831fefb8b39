package stripe

import (
	"fmt"
	"time"

	//revive:disable:import-alias-naming
	stripeapi "github.com/stripe/stripe-go/v81"
	stripemeterevent "github.com/stripe/stripe-go/v81/billing/meterevent"
	stripecustomer "github.com/stripe/stripe-go/v81/customer"
	stripepaymentintent "github.com/stripe/stripe-go/v81/paymentintent"
	stripepaymentmethod "github.com/stripe/stripe-go/v81/paymentmethod"
	stripesubscription "github.com/stripe/stripe-go/v81/subscription"
	stripewebhook "github.com/stripe/stripe-go/v81/webhook"
)

// Client wraps the Stripe API surface used by the donation flow. It is
// constructed explicitly and injected into the Service, so no component
// depends on ambient SDK state beyond the key registration done here.
type Client struct {
	config *Config
}

// NewClient creates a new Stripe client with the given configuration
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey

	return &Client{
		config: config,
	}
}

// ValidateWebhookEvent validates and parses a webhook event from the raw
// request bytes and the Stripe-Signature header.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEvent(payload, signatureHeader, c.config.WebhookSecret)
	if err != nil {
		return nil, NewStripeError("webhook_validation", "webhook signature validation failed", err)
	}
	return &event, nil
}

// CreateCustomer creates a new customer carrying the tokenized payment method.
func (*Client) CreateCustomer(paymentMethodID string) (*stripeapi.Customer, error) {
	params := &stripeapi.CustomerParams{
		PaymentMethod: stripeapi.String(paymentMethodID),
	}
	customer, err := stripecustomer.New(params)
	if err != nil {
		return nil, NewStripeError("api_call_failed", "failed to create customer", err)
	}
	return customer, nil
}

// AttachPaymentMethod attaches the payment method to the customer.
func (*Client) AttachPaymentMethod(paymentMethodID, customerID string) error {
	params := &stripeapi.PaymentMethodAttachParams{
		Customer: stripeapi.String(customerID),
	}
	if _, err := stripepaymentmethod.Attach(paymentMethodID, params); err != nil {
		return NewStripeError("api_call_failed",
			fmt.Sprintf("failed to attach payment method to customer %s", customerID), err)
	}
	return nil
}

// SetDefaultPaymentMethod sets the customer's default invoice payment method.
func (*Client) SetDefaultPaymentMethod(customerID, paymentMethodID string) error {
	params := &stripeapi.CustomerParams{
		InvoiceSettings: &stripeapi.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripeapi.String(paymentMethodID),
		},
	}
	if _, err := stripecustomer.Update(customerID, params); err != nil {
		return NewStripeError("api_call_failed",
			fmt.Sprintf("failed to set default payment method on customer %s", customerID), err)
	}
	return nil
}

// DeleteCustomer removes a customer. Used as the compensating action when
// the donation sequence fails before the subscription exists.
func (*Client) DeleteCustomer(customerID string) error {
	if _, err := stripecustomer.Del(customerID, nil); err != nil {
		return NewStripeError("api_call_failed",
			fmt.Sprintf("failed to delete customer %s", customerID), err)
	}
	return nil
}

// CreateDonationSubscription creates the recurring donation subscription for
// the customer: the fixed recurring price plus a one-time invoice line item
// priced at the donated amount. The subscription is created with payment
// behavior default_incomplete so it exists even if the first charge needs
// further authentication, and the latest invoice's payment intent is
// requested expanded.
func (c *Client) CreateDonationSubscription(customerID string, amount int64) (*stripeapi.Subscription, error) {
	params := &stripeapi.SubscriptionParams{
		Customer: stripeapi.String(customerID),
		Items: []*stripeapi.SubscriptionItemsParams{
			{
				Price: stripeapi.String(c.config.RecurringPriceID),
			},
		},
		PaymentBehavior: stripeapi.String("default_incomplete"),
		PaymentSettings: &stripeapi.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripeapi.String("on_subscription"),
		},
		AddInvoiceItems: []*stripeapi.SubscriptionAddInvoiceItemParams{
			{
				PriceData: &stripeapi.InvoiceItemPriceDataParams{
					Currency:   stripeapi.String(string(stripeapi.CurrencyUSD)),
					Product:    stripeapi.String(c.config.DonationProductID),
					UnitAmount: stripeapi.Int64(amount),
				},
			},
		},
	}
	params.AddExpand("latest_invoice.payment_intent")

	subscription, err := stripesubscription.New(params)
	if err != nil {
		return nil, NewStripeError("api_call_failed",
			fmt.Sprintf("failed to create subscription for customer %s", customerID), err)
	}
	return subscription, nil
}

// GetPaymentIntent retrieves a payment intent by ID. Needed when the latest
// invoice carries only a payment intent reference instead of an expanded
// object.
func (*Client) GetPaymentIntent(paymentIntentID string) (*stripeapi.PaymentIntent, error) {
	paymentIntent, err := stripepaymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return nil, NewStripeError("api_call_failed",
			fmt.Sprintf("failed to retrieve payment intent %s", paymentIntentID), err)
	}
	return paymentIntent, nil
}

// ReportDonationUsage emits a billing meter event recording the donated
// amount in whole dollars, identified by the subscription ID and tagged with
// the customer ID.
func (c *Client) ReportDonationUsage(subscriptionID, customerID string, units int64) error {
	params := &stripeapi.BillingMeterEventParams{
		EventName:  stripeapi.String(c.config.MeterEventName),
		Identifier: stripeapi.String(subscriptionID),
		Payload: map[string]string{
			"value":              fmt.Sprintf("%d", units),
			"stripe_customer_id": customerID,
		},
		Timestamp: stripeapi.Int64(time.Now().Unix()),
	}
	if _, err := stripemeterevent.New(params); err != nil {
		return NewStripeError("api_call_failed",
			fmt.Sprintf("failed to report donation usage for subscription %s", subscriptionID), err)
	}
	return nil
}
