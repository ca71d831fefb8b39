package api

import (
	"net/http"

	"go.vocdoni.io/dvote/log"

	"github.com/boriskantorovich/nonprofit-donation-form/errors"
	"github.com/boriskantorovich/nonprofit-donation-form/stripe"
	"github.com/boriskantorovich/nonprofit-donation-form/validator"
)

// createDonationHandler creates a customer with the provided payment method
// and subscribes it to the donation plan. On success it returns the
// subscription identifier and the client secret the frontend needs to confirm
// the initial payment.
func (a *API) createDonationHandler(w http.ResponseWriter, r *http.Request) {
	model, ok := validator.GetValidatedModel(r.Context())
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}
	request, ok := model.(*DonationRequest)
	if !ok {
		errors.ErrMalformedBody.Write(w)
		return
	}

	result, err := a.stripe.CreateDonation(request.PaymentMethodID, request.Amount)
	if err != nil {
		if stripeErr, ok := err.(*stripe.StripeError); ok {
			switch stripeErr.Code {
			case "invalid_request":
				errors.ErrMissingRequiredFields.Write(w)
				return
			case "invalid_amount":
				errors.ErrInvalidAmount.Write(w)
				return
			}
		}
		log.Errorw(err, "failed to create donation subscription")
		errors.ErrInternalServerError.Write(w)
		return
	}

	httpWriteJSON(w, result)
}
