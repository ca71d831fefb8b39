package stripe

import (
	"fmt"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v81"
	"go.vocdoni.io/dvote/log"
)

func TestMain(m *testing.M) {
	log.Init("debug", "stdout", nil)
	os.Exit(m.Run())
}

const (
	testCustomerID     = "cus_test123"
	testSubscriptionID = "sub_test123"
	testInvoiceID      = "in_test123"
	testIntentID       = "pi_test123"
	testClientSecret   = "pi_test123_secret_abc"
)

type usageRecord struct {
	subscriptionID string
	customerID     string
	units          int64
}

// fakeClient records the calls performed by the service and can be told to
// fail at a given step or to return degenerate subscription shapes.
type fakeClient struct {
	calls            []string
	failOn           string
	deletedCustomers []string
	usage            []usageRecord

	expandedSecret bool // payment intent arrives expanded with a client secret
	omitInvoice    bool // subscription comes back without a latest invoice
	omitIntent     bool // invoice comes back without a payment intent
	event          *stripeapi.Event
	validateErr    error
}

func (f *fakeClient) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return NewStripeError("api_call_failed", fmt.Sprintf("%s failed", name), nil)
	}
	return nil
}

func (f *fakeClient) ValidateWebhookEvent(_ []byte, _ string) (*stripeapi.Event, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	return f.event, nil
}

func (f *fakeClient) CreateCustomer(_ string) (*stripeapi.Customer, error) {
	if err := f.call("CreateCustomer"); err != nil {
		return nil, err
	}
	return &stripeapi.Customer{ID: testCustomerID}, nil
}

func (f *fakeClient) AttachPaymentMethod(_, _ string) error {
	return f.call("AttachPaymentMethod")
}

func (f *fakeClient) SetDefaultPaymentMethod(_, _ string) error {
	return f.call("SetDefaultPaymentMethod")
}

func (f *fakeClient) DeleteCustomer(customerID string) error {
	if err := f.call("DeleteCustomer"); err != nil {
		return err
	}
	f.deletedCustomers = append(f.deletedCustomers, customerID)
	return nil
}

func (f *fakeClient) CreateDonationSubscription(_ string, _ int64) (*stripeapi.Subscription, error) {
	if err := f.call("CreateDonationSubscription"); err != nil {
		return nil, err
	}
	subscription := &stripeapi.Subscription{
		ID:     testSubscriptionID,
		Status: stripeapi.SubscriptionStatusIncomplete,
	}
	if f.omitInvoice {
		return subscription, nil
	}
	invoice := &stripeapi.Invoice{
		ID:     testInvoiceID,
		Status: stripeapi.InvoiceStatusOpen,
	}
	if !f.omitIntent {
		invoice.PaymentIntent = &stripeapi.PaymentIntent{ID: testIntentID}
		if f.expandedSecret {
			invoice.PaymentIntent.ClientSecret = testClientSecret
		}
	}
	subscription.LatestInvoice = invoice
	return subscription, nil
}

func (f *fakeClient) GetPaymentIntent(paymentIntentID string) (*stripeapi.PaymentIntent, error) {
	if err := f.call("GetPaymentIntent"); err != nil {
		return nil, err
	}
	return &stripeapi.PaymentIntent{ID: paymentIntentID, ClientSecret: testClientSecret}, nil
}

func (f *fakeClient) ReportDonationUsage(subscriptionID, customerID string, units int64) error {
	if err := f.call("ReportDonationUsage"); err != nil {
		return err
	}
	f.usage = append(f.usage, usageRecord{subscriptionID, customerID, units})
	return nil
}

func newTestService(client *fakeClient) *Service {
	return &Service{
		client:          client,
		config:          &Config{},
		processedEvents: NewMemoryEventStore(time.Hour),
	}
}

func TestCreateDonationSequence(t *testing.T) {
	c := qt.New(t)

	client := &fakeClient{expandedSecret: true}
	service := newTestService(client)

	result, err := service.CreateDonation("pm_test", 1000)
	c.Assert(err, qt.IsNil)
	c.Assert(result.SubscriptionID, qt.Equals, testSubscriptionID)
	c.Assert(result.ClientSecret, qt.Equals, testClientSecret)
	c.Assert(result.Status, qt.Equals, string(stripeapi.SubscriptionStatusIncomplete))
	c.Assert(result.InvoiceStatus, qt.Equals, string(stripeapi.InvoiceStatusOpen))

	c.Assert(client.calls, qt.DeepEquals, []string{
		"CreateCustomer",
		"AttachPaymentMethod",
		"SetDefaultPaymentMethod",
		"CreateDonationSubscription",
		"ReportDonationUsage",
	})

	c.Assert(client.usage, qt.HasLen, 1)
	c.Assert(client.usage[0].subscriptionID, qt.Equals, testSubscriptionID)
	c.Assert(client.usage[0].customerID, qt.Equals, testCustomerID)
	c.Assert(client.usage[0].units, qt.Equals, int64(10))
}

func TestCreateDonationRoundsMeterUnits(t *testing.T) {
	c := qt.New(t)

	// 1050 cents is $10.50, the meter counts whole dollars rounded.
	client := &fakeClient{expandedSecret: true}
	service := newTestService(client)
	_, err := service.CreateDonation("pm_test", 1050)
	c.Assert(err, qt.IsNil)
	c.Assert(client.usage[0].units, qt.Equals, int64(11))

	client = &fakeClient{expandedSecret: true}
	service = newTestService(client)
	_, err = service.CreateDonation("pm_test", 1049)
	c.Assert(err, qt.IsNil)
	c.Assert(client.usage[0].units, qt.Equals, int64(10))
}

func TestCreateDonationResolvesUnexpandedPaymentIntent(t *testing.T) {
	c := qt.New(t)

	// The invoice carries the payment intent without a client secret, so the
	// service must retrieve the intent by ID.
	client := &fakeClient{}
	service := newTestService(client)

	result, err := service.CreateDonation("pm_test", 2000)
	c.Assert(err, qt.IsNil)
	c.Assert(result.ClientSecret, qt.Equals, testClientSecret)
	c.Assert(client.calls, qt.Contains, "GetPaymentIntent")
}

func TestCreateDonationRejectsOutOfRangeAmount(t *testing.T) {
	c := qt.New(t)

	client := &fakeClient{}
	service := newTestService(client)

	for _, amount := range []int64{0, 50, 299, 10000001} {
		_, err := service.CreateDonation("pm_test", amount)
		c.Assert(err, qt.IsNotNil, qt.Commentf("amount %d", amount))
		stripeErr, ok := err.(*StripeError)
		c.Assert(ok, qt.IsTrue)
		c.Assert(stripeErr.Code, qt.Equals, "invalid_amount")
	}
	// No processor call is made for rejected amounts.
	c.Assert(client.calls, qt.HasLen, 0)
}

func TestCreateDonationRequiresPaymentMethod(t *testing.T) {
	c := qt.New(t)

	client := &fakeClient{}
	service := newTestService(client)

	_, err := service.CreateDonation("", 1000)
	c.Assert(err, qt.IsNotNil)
	c.Assert(client.calls, qt.HasLen, 0)
}

func TestCreateDonationRollsBackCustomer(t *testing.T) {
	c := qt.New(t)

	// A failure before the subscription exists deletes the created customer.
	for _, step := range []string{"AttachPaymentMethod", "SetDefaultPaymentMethod", "CreateDonationSubscription"} {
		client := &fakeClient{expandedSecret: true, failOn: step}
		service := newTestService(client)

		_, err := service.CreateDonation("pm_test", 1000)
		c.Assert(err, qt.IsNotNil, qt.Commentf("step %s", step))
		c.Assert(client.deletedCustomers, qt.DeepEquals, []string{testCustomerID}, qt.Commentf("step %s", step))
	}

	// Once the subscription is committed there is no rollback.
	client := &fakeClient{expandedSecret: true, failOn: "ReportDonationUsage"}
	service := newTestService(client)
	_, err := service.CreateDonation("pm_test", 1000)
	c.Assert(err, qt.IsNotNil)
	c.Assert(client.deletedCustomers, qt.HasLen, 0)
}

func TestCreateDonationUnexpectedSubscriptionShape(t *testing.T) {
	c := qt.New(t)

	client := &fakeClient{omitInvoice: true}
	service := newTestService(client)
	_, err := service.CreateDonation("pm_test", 1000)
	stripeErr, ok := err.(*StripeError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(stripeErr.Code, qt.Equals, "missing_invoice")

	client = &fakeClient{omitIntent: true}
	service = newTestService(client)
	_, err = service.CreateDonation("pm_test", 1000)
	stripeErr, ok = err.(*StripeError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(stripeErr.Code, qt.Equals, "missing_payment_intent")
}
