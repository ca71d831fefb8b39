package api

// DonationRequest is the request to create a donation subscription. The
// amount is expressed in cents.
type DonationRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,donation_amount"`
}
