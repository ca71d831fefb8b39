package stripe

import (
	"fmt"
	"os"
)

// Config holds the complete Stripe configuration for the donation flow.
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	// RecurringPriceID is the fixed recurring price every donation
	// subscription bills against.
	RecurringPriceID string `yaml:"recurring_price_id" json:"recurring_price_id"`
	// DonationProductID is the product used for the one-time invoice line
	// item priced at the donated amount.
	DonationProductID string `yaml:"donation_product_id" json:"donation_product_id"`
	// MeterEventName is the billing meter event reporting donated dollars.
	MeterEventName string `yaml:"meter_event_name" json:"meter_event_name"`
}

// NewConfig creates a new Stripe configuration from environment variables.
func NewConfig() (*Config, error) {
	apiKey := os.Getenv("DONATIONS_STRIPEAPISECRET")
	if apiKey == "" {
		return nil, fmt.Errorf("DONATIONS_STRIPEAPISECRET environment variable is required")
	}

	webhookSecret := os.Getenv("DONATIONS_STRIPEWEBHOOKSECRET")
	if webhookSecret == "" {
		return nil, fmt.Errorf("DONATIONS_STRIPEWEBHOOKSECRET environment variable is required")
	}

	return &Config{
		APIKey:            apiKey,
		WebhookSecret:     webhookSecret,
		RecurringPriceID:  getEnvOrDefault("DONATIONS_STRIPE_RECURRING_PRICE_ID", "price_1Q2IES01AoyUoeVteiCDTprg"),
		DonationProductID: getEnvOrDefault("DONATIONS_STRIPE_DONATION_PRODUCT_ID", "prod_Qu46ZVkA9DbcrM"),
		MeterEventName:    getEnvOrDefault("DONATIONS_STRIPE_METER_EVENT_NAME", "donation_amount"),
	}, nil
}

// getEnvOrDefault returns the environment variable value or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
