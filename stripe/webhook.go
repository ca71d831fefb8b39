package stripe

import (
	"encoding/json"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v81"
	"go.vocdoni.io/dvote/log"
)

// HandleWebhookEvent verifies an inbound webhook event and dispatches it.
// Verification failures are returned to the caller (they become a client
// error response); anything past verification is logged and acknowledged, as
// every handler is observation-only and a redelivery would fail the same
// way. Events that fail dispatch are not marked processed, so an out-of-band
// redelivery still reaches the handlers.
func (s *Service) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	if s.processedEvents.EventExists(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}

	if err := s.HandleEvent(event); err != nil {
		log.Errorw(err, fmt.Sprintf("stripe webhook: failed to process event %s (%s)", event.ID, event.Type))
		return nil
	}

	s.processedEvents.MarkProcessed(event.ID)
	return nil
}

// HandleEvent routes a verified event to its handler based on the event
// kind. Unrecognized kinds are logged and ignored.
func (s *Service) HandleEvent(event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypePaymentIntentSucceeded,
		stripeapi.EventTypePaymentIntentPaymentFailed:
		return s.handlePaymentIntent(event)
	case stripeapi.EventTypeInvoicePaymentSucceeded:
		return s.handleInvoicePaymentSucceeded(event)
	case stripeapi.EventTypeInvoicePaymentFailed:
		return s.handleInvoicePaymentFailed(event)
	case stripeapi.EventTypeCustomerSubscriptionCreated,
		stripeapi.EventTypeCustomerSubscriptionUpdated,
		stripeapi.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionChange(event)
	case stripeapi.EventTypeChargeSucceeded,
		stripeapi.EventTypeChargeFailed,
		stripeapi.EventTypeChargeRefunded:
		return s.handleCharge(event)
	case stripeapi.EventTypeChargeDisputeCreated,
		stripeapi.EventTypeChargeDisputeClosed:
		return s.handleDispute(event)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// handlePaymentIntent observes payment intent lifecycle events.
func (*Service) handlePaymentIntent(event *stripeapi.Event) error {
	paymentIntent, err := parsePaymentIntentFromEvent(event)
	if err != nil {
		return err
	}
	log.Infow("stripe webhook: payment intent update",
		"event", event.Type,
		"paymentIntent", paymentIntent.ID,
		"amount", paymentIntent.Amount,
		"status", paymentIntent.Status)
	return nil
}

// handleInvoicePaymentSucceeded observes a successful invoice payment. This
// is the integration point for recording the donation or sending a receipt.
func (*Service) handleInvoicePaymentSucceeded(event *stripeapi.Event) error {
	invoice, err := parseInvoiceFromEvent(event)
	if err != nil {
		return err
	}
	log.Infow("stripe webhook: invoice payment succeeded",
		"invoice", invoice.ID,
		"amountPaid", invoice.AmountPaid,
		"customer", customerID(invoice.Customer))
	return nil
}

// handleInvoicePaymentFailed observes a failed invoice payment. This is the
// integration point for notifying the donor about the failed charge.
func (*Service) handleInvoicePaymentFailed(event *stripeapi.Event) error {
	invoice, err := parseInvoiceFromEvent(event)
	if err != nil {
		return err
	}
	log.Warnw("stripe webhook: invoice payment failed",
		"invoice", invoice.ID,
		"amountDue", invoice.AmountDue,
		"customer", customerID(invoice.Customer))
	return nil
}

// handleSubscriptionChange observes subscription lifecycle transitions. This
// is the integration point for persisting donor subscription state.
func (*Service) handleSubscriptionChange(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return err
	}
	log.Infow("stripe webhook: subscription update",
		"event", event.Type,
		"subscription", subscription.ID,
		"status", subscription.Status)
	return nil
}

// handleCharge observes charge lifecycle events, including refunds.
func (*Service) handleCharge(event *stripeapi.Event) error {
	charge, err := parseChargeFromEvent(event)
	if err != nil {
		return err
	}
	log.Infow("stripe webhook: charge update",
		"event", event.Type,
		"charge", charge.ID,
		"amount", charge.Amount,
		"status", charge.Status)
	return nil
}

// handleDispute observes dispute open/close events.
func (*Service) handleDispute(event *stripeapi.Event) error {
	dispute, err := parseDisputeFromEvent(event)
	if err != nil {
		return err
	}
	log.Warnw("stripe webhook: dispute update",
		"event", event.Type,
		"dispute", dispute.ID,
		"amount", dispute.Amount,
		"reason", dispute.Reason,
		"status", dispute.Status)
	return nil
}

// parsePaymentIntentFromEvent extracts a payment intent from a webhook event
func parsePaymentIntentFromEvent(event *stripeapi.Event) (*stripeapi.PaymentIntent, error) {
	var paymentIntent stripeapi.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse payment intent from event", err)
	}
	return &paymentIntent, nil
}

// parseInvoiceFromEvent extracts an invoice from a webhook event
func parseInvoiceFromEvent(event *stripeapi.Event) (*stripeapi.Invoice, error) {
	var invoice stripeapi.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse invoice from event", err)
	}
	return &invoice, nil
}

// parseSubscriptionFromEvent extracts a subscription from a webhook event
func parseSubscriptionFromEvent(event *stripeapi.Event) (*stripeapi.Subscription, error) {
	var subscription stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse subscription from event", err)
	}
	return &subscription, nil
}

// parseChargeFromEvent extracts a charge from a webhook event
func parseChargeFromEvent(event *stripeapi.Event) (*stripeapi.Charge, error) {
	var charge stripeapi.Charge
	if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse charge from event", err)
	}
	return &charge, nil
}

// parseDisputeFromEvent extracts a dispute from a webhook event
func parseDisputeFromEvent(event *stripeapi.Event) (*stripeapi.Dispute, error) {
	var dispute stripeapi.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
		return nil, NewStripeError("invalid_event", "failed to parse dispute from event", err)
	}
	return &dispute, nil
}

// customerID returns the customer identifier of a possibly nil reference.
func customerID(customer *stripeapi.Customer) string {
	if customer == nil {
		return ""
	}
	return customer.ID
}
