package api

const (
	// donationsEndpoint is the route that creates a donation subscription
	donationsEndpoint = "/create-subscription"
	// webhookEndpoint is the route that receives Stripe webhook events
	webhookEndpoint = "/webhook"
	// pingEndpoint is the health check route
	pingEndpoint = "/ping"
)

// MaxBodyBytes bounds the webhook request body size.
const MaxBodyBytes = int64(65536) //revive:disable:unexported-naming
