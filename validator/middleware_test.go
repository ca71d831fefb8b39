package validator

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type donationRequest struct {
	PaymentMethodID string `json:"paymentMethodId" validate:"required"`
	Amount          int64  `json:"amount" validate:"required,donation_amount"`
}

// newValidatedHandler wires AddModelMiddleware and InputValidator around a
// handler the way the router does.
func newValidatedHandler(v *Validator, handler http.Handler) http.Handler {
	return v.AddModelMiddleware(donationRequest{})(v.InputValidator(handler))
}

// TestInputValidator tests the model validation middleware chain.
func TestInputValidator(t *testing.T) {
	v := New()

	// Create a test handler that echoes the validated model
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model, ok := GetValidatedModel(r.Context())
		if !ok {
			t.Error("Expected a validated model in the request context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		request, ok := model.(*donationRequest)
		if !ok {
			t.Errorf("Expected model type *donationRequest, got %T", model)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(request.PaymentMethodID))
	})

	handler := newValidatedHandler(v, testHandler)

	// Test valid request
	validJSON, _ := json.Marshal(donationRequest{PaymentMethodID: "pm_test123", Amount: 1000})
	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(validJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp := rec.Result()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status code %d, got %d (%s)", http.StatusOK, resp.StatusCode, body)
	}
	if string(body) != "pm_test123" {
		t.Errorf("Expected body %q, got %q", "pm_test123", string(body))
	}

	// Test missing payment method
	missingPm, _ := json.Marshal(map[string]any{"amount": 1000})
	req = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(missingPm))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp = rec.Result()
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if !strings.Contains(string(body), "PaymentMethodId and amount are required") {
		t.Errorf("Expected a missing fields error, got %q", string(body))
	}

	// Test missing amount (zero value fails the required tag)
	missingAmount, _ := json.Marshal(map[string]any{"paymentMethodId": "pm_test123"})
	req = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(missingAmount))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp = rec.Result()
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if !strings.Contains(string(body), "PaymentMethodId and amount are required") {
		t.Errorf("Expected a missing fields error, got %q", string(body))
	}

	// Test out of range amount
	outOfRange, _ := json.Marshal(donationRequest{PaymentMethodID: "pm_test123", Amount: 50})
	req = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(outOfRange))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp = rec.Result()
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if !strings.Contains(string(body), "Invalid amount. Must be between $3 and $100,000") {
		t.Errorf("Expected an invalid amount error, got %q", string(body))
	}

	// Test invalid JSON
	req = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp = rec.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

// TestInputValidatorWithoutModel checks that routes without a registered
// model pass through with the body untouched.
func TestInputValidatorWithoutModel(t *testing.T) {
	v := New()

	payload := []byte(`{"arbitrary": "payload"}`)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("Expected to read the request body, got error: %v", err)
		}
		if !bytes.Equal(body, payload) {
			t.Errorf("Expected body %q, got %q", payload, body)
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	v.InputValidator(testHandler).ServeHTTP(rec, req)

	if rec.Result().StatusCode != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, rec.Result().StatusCode)
	}
}
