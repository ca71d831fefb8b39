// Package stripe provides integration with the Stripe payment service,
// driving the donation subscription flow and handling webhook events.
package stripe

import (
	"fmt"
	"math"
	"time"

	stripeapi "github.com/stripe/stripe-go/v81"
	"go.vocdoni.io/dvote/log"

	"github.com/boriskantorovich/nonprofit-donation-form/donations"
)

// apiClient captures the Stripe calls performed by the Service. It is
// implemented by *Client; tests substitute a recording fake.
type apiClient interface {
	ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error)
	CreateCustomer(paymentMethodID string) (*stripeapi.Customer, error)
	AttachPaymentMethod(paymentMethodID, customerID string) error
	SetDefaultPaymentMethod(customerID, paymentMethodID string) error
	DeleteCustomer(customerID string) error
	CreateDonationSubscription(customerID string, amount int64) (*stripeapi.Subscription, error)
	GetPaymentIntent(paymentIntentID string) (*stripeapi.PaymentIntent, error)
	ReportDonationUsage(subscriptionID, customerID string, units int64) error
}

// Service provides the main business logic for the donation flow.
type Service struct {
	client          apiClient
	config          *Config
	processedEvents *MemoryEventStore
}

// NewService creates a new Stripe service
func NewService(config *Config) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	return &Service{
		client:          NewClient(config),
		config:          config,
		processedEvents: NewMemoryEventStore(24 * time.Hour),
	}, nil
}

// DonationResult is the outcome of a created donation subscription, returned
// verbatim to the donor-facing client.
type DonationResult struct {
	SubscriptionID string `json:"subscriptionId"`
	ClientSecret   string `json:"clientSecret"`
	Status         string `json:"status"`
	InvoiceStatus  string `json:"invoiceStatus"`
}

// CreateDonation drives the donation subscription sequence against Stripe:
// create a customer for the tokenized payment method, attach the method, set
// it as the default invoice payment method, create the subscription with the
// one-time donation line item, extract the client confirmation secret, and
// report the donated amount to the billing meter.
//
// Failures between customer creation and subscription creation trigger a
// best-effort compensating customer deletion. Once the subscription exists
// there is no rollback: the error propagates and the processor-side state
// stands.
func (s *Service) CreateDonation(paymentMethodID string, amount int64) (*DonationResult, error) {
	if paymentMethodID == "" {
		return nil, NewStripeError("invalid_request", "payment method is required", nil)
	}
	// The HTTP boundary validates the amount too, but this service is also
	// reachable without it.
	if err := donations.ValidateAmount(amount); err != nil {
		return nil, NewStripeError("invalid_amount", "donation amount out of range", err)
	}

	customer, err := s.client.CreateCustomer(paymentMethodID)
	if err != nil {
		log.Errorw(err, "donation: failed to create customer")
		return nil, err
	}

	if err := s.client.AttachPaymentMethod(paymentMethodID, customer.ID); err != nil {
		return nil, s.abortDonation(customer.ID, err)
	}

	if err := s.client.SetDefaultPaymentMethod(customer.ID, paymentMethodID); err != nil {
		return nil, s.abortDonation(customer.ID, err)
	}

	subscription, err := s.client.CreateDonationSubscription(customer.ID, amount)
	if err != nil {
		return nil, s.abortDonation(customer.ID, err)
	}

	// From here on the subscription is committed on the Stripe side, so
	// failures propagate without compensation.
	invoice := subscription.LatestInvoice
	if invoice == nil {
		err := NewStripeError("missing_invoice",
			fmt.Sprintf("subscription %s has no expanded latest invoice", subscription.ID), nil)
		log.Errorw(err, "donation: unexpected subscription shape")
		return nil, err
	}

	paymentIntent := invoice.PaymentIntent
	if paymentIntent == nil {
		err := NewStripeError("missing_payment_intent",
			fmt.Sprintf("no payment intent found for invoice %s", invoice.ID), nil)
		log.Errorw(err, "donation: unexpected invoice shape")
		return nil, err
	}

	clientSecret := paymentIntent.ClientSecret
	if clientSecret == "" {
		// The invoice carried only a reference, resolve the intent by ID.
		resolved, err := s.client.GetPaymentIntent(paymentIntent.ID)
		if err != nil {
			log.Errorw(err, "donation: failed to resolve payment intent")
			return nil, err
		}
		clientSecret = resolved.ClientSecret
	}

	// The billing meter counts whole dollars.
	units := int64(math.Round(float64(amount) / 100))
	if err := s.client.ReportDonationUsage(subscription.ID, customer.ID, units); err != nil {
		log.Errorw(err, "donation: failed to report donation usage")
		return nil, err
	}

	log.Infow("donation subscription created",
		"subscription", subscription.ID,
		"customer", customer.ID,
		"amount", amount,
		"status", subscription.Status)

	return &DonationResult{
		SubscriptionID: subscription.ID,
		ClientSecret:   clientSecret,
		Status:         string(subscription.Status),
		InvoiceStatus:  string(invoice.Status),
	}, nil
}

// abortDonation logs the failure and performs the compensating customer
// deletion. The original error is always returned, never the cleanup one.
func (s *Service) abortDonation(customerID string, cause error) error {
	log.Errorw(cause, fmt.Sprintf("donation: sequence failed for customer %s, rolling back", customerID))
	if err := s.client.DeleteCustomer(customerID); err != nil {
		log.Warnw("donation: failed to delete customer during rollback",
			"customer", customerID, "error", err)
	}
	return cause
}
