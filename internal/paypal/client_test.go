package paypal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, tokenCalls *int32, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`))
	})
	mux.HandleFunc("/", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_CreateSubscription(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/billing/subscriptions", r.URL.Path)
		assert.Equal(t, "Bearer A21AA", r.Header.Get("Authorization"))
		assert.Equal(t, "U-42-1700000000000", r.Header.Get("PayPal-Request-Id"))

		var req CreateSubscriptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "P-1", req.PlanID)
		assert.Equal(t, "U-42", req.CustomID)
		assert.Equal(t, "SUBSCRIBE_NOW", req.ApplicationContext.UserAction)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"I-1","status":"APPROVAL_PENDING","links":[{"href":"https://paypal.test/approve","rel":"approve","method":"GET"}]}`))
	})

	c := NewClient(srv.URL, "client", "secret", 5*time.Second)
	req := CreateSubscriptionRequest{
		PlanID:   "P-1",
		CustomID: "U-42",
		ApplicationContext: ApplicationContext{
			BrandName:  "AstraWeather",
			Locale:     "en-US",
			UserAction: "SUBSCRIBE_NOW",
		},
	}

	sub, err := c.CreateSubscription(context.Background(), req, "U-42-1700000000000")
	require.NoError(t, err)
	assert.Equal(t, "I-1", sub.ID)
	assert.Equal(t, "APPROVAL_PENDING", sub.Status)
	assert.Equal(t, "https://paypal.test/approve", sub.ApproveLink())

	// токен берётся из кеша
	_, err = c.CreateSubscription(context.Background(), req, "U-42-1700000000000")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestClient_CreateSubscription_APIError(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed.","debug_id":"abc"}`))
	})

	c := NewClient(srv.URL, "client", "secret", 5*time.Second)
	_, err := c.CreateSubscription(context.Background(), CreateSubscriptionRequest{PlanID: "P-1"}, "rid")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "The requested action could not be performed.", apiErr.Message)
	assert.Equal(t, "abc", apiErr.DebugID)
}

func TestClient_AccessToken_BadCredentials(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c := NewClient(srv.URL, "client", "wrong", 5*time.Second)
	_, err := c.AccessToken(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid_client", apiErr.Name)
}

func TestClient_VerifyWebhookSignature(t *testing.T) {
	var tokenCalls int32
	srv := newTestServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/notifications/verify-webhook-signature", r.URL.Path)

		var req VerifyWebhookSignatureRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "T-1", req.TransmissionID)
		assert.Equal(t, "SHA256withRSA", req.AuthAlgo)
		assert.Equal(t, "WH-1", req.WebhookID)
		assert.JSONEq(t, `{"event_type":"BILLING.SUBSCRIPTION.CREATED"}`, string(req.WebhookEvent))

		_, _ = w.Write([]byte(`{"verification_status":"SUCCESS"}`))
	})

	headers := http.Header{}
	headers.Set("PAYPAL-TRANSMISSION-ID", "T-1")
	headers.Set("PAYPAL-TRANSMISSION-TIME", "2024-01-01T00:00:00Z")
	headers.Set("PAYPAL-CERT-URL", "https://api.paypal.com/cert")
	headers.Set("PAYPAL-AUTH-ALGO", "SHA256withRSA")
	headers.Set("PAYPAL-TRANSMISSION-SIG", "sig")

	c := NewClient(srv.URL, "client", "secret", 5*time.Second)
	req := NewVerifyRequest(TransmissionFromHeaders(headers), "WH-1", json.RawMessage(`{"event_type":"BILLING.SUBSCRIPTION.CREATED"}`))

	resp, err := c.VerifyWebhookSignature(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, VerificationSuccess, resp.VerificationStatus)
}
