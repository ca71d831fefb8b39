// Package api provides the HTTP API for the donation backend.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.vocdoni.io/dvote/log"

	"github.com/boriskantorovich/nonprofit-donation-form/stripe"
	"github.com/boriskantorovich/nonprofit-donation-form/validator"
)

// DonationService is the payment backend the API depends on.
type DonationService interface {
	CreateDonation(paymentMethodID string, amount int64) (*stripe.DonationResult, error)
	HandleWebhookEvent(payload []byte, signatureHeader string) error
}

// Config holds the configuration of the API HTTP server.
type Config struct {
	Host   string
	Port   int
	Stripe DonationService
}

// API type represents the API HTTP server.
type API struct {
	host      string
	port      int
	router    *chi.Mux
	stripe    DonationService
	validator *validator.Validator
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil {
		return nil
	}
	return &API{
		host:      conf.Host,
		port:      conf.Port,
		stripe:    conf.Stripe,
		validator: validator.New(),
	}
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// validated routes
	r.Group(func(r chi.Router) {
		r.Use(a.validator.AddModelMiddleware(DonationRequest{}))
		r.Use(a.validator.InputValidator)
		// create a donation subscription
		log.Infow("new route", "method", "POST", "path", donationsEndpoint)
		r.Post(donationsEndpoint, a.createDonationHandler)
	})

	// raw body routes, the webhook signature is computed over the exact bytes
	log.Infow("new route", "method", "POST", "path", webhookEndpoint)
	r.Post(webhookEndpoint, a.stripeWebhookHandler)

	// health check
	log.Infow("new route", "method", "GET", "path", pingEndpoint)
	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		httpWriteOK(w)
	})

	a.router = r
	return r
}
