package api

import (
	"fmt"
	"io"
	"net/http"

	"go.vocdoni.io/dvote/log"
)

// stripeWebhookHandler receives webhook events from Stripe. The raw request
// body and the Stripe-Signature header are handed to the service for
// verification, so the body must reach this handler unmodified. Verification
// failures are answered with a plain text 400 so Stripe surfaces them in the
// dashboard.
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("stripe webhook: error reading request body: %s", err.Error())
		http.Error(w, fmt.Sprintf("Webhook Error: %s", err), http.StatusBadRequest)
		return
	}

	signatureHeader := r.Header.Get("Stripe-Signature")
	if signatureHeader == "" {
		log.Errorf("stripe webhook: missing Stripe-Signature header")
		http.Error(w, "Webhook Error: missing Stripe-Signature header", http.StatusBadRequest)
		return
	}

	if err := a.stripe.HandleWebhookEvent(payload, signatureHeader); err != nil {
		log.Errorf("stripe webhook: failed to process event: %v", err)
		http.Error(w, fmt.Sprintf("Webhook Error: %s", err), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
}
