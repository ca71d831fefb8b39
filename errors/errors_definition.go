// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the client's fault,
// and they return HTTP Status 400, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after
// the current last 4XXX or 5XXX. If you notice there's a gap, DON'T fill it
// in, that code was used in the past for some error and shouldn't be reused.
//
// The donation endpoint is donor-facing: 4XXX messages are written to be safe
// to show in the form, while 5XXX messages are deliberately generic and the
// underlying processor detail is only logged server-side.
var (
	// Validation errors (400)
	ErrMalformedBody         = Error{Code: 40001, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMissingRequiredFields = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("PaymentMethodId and amount are required")}
	ErrInvalidAmount         = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid amount. Must be between $3 and $100,000.")}
	ErrMalformedURLParam     = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrInternalServerError        = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("Internal Server Error"), LogLevel: "error"}
)
