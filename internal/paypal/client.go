// Package paypal реализует клиент REST API PayPal: получение OAuth-токена,
// создание подписки и проверку подписи вебхука.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Client клиент PayPal API. Токен доступа кешируется до истечения срока.
type Client struct {
	apiURL     string
	httpClient *http.Client
	tokens     oauth2.TokenSource
}

// NewClient создаёт клиент PayPal для указанного окружения (sandbox или live).
func NewClient(apiURL, clientID, clientSecret string, timeout time.Duration) *Client {
	apiURL = strings.TrimRight(apiURL, "/")
	httpClient := &http.Client{Timeout: timeout}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     apiURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Client{
		apiURL:     apiURL,
		httpClient: httpClient,
		tokens:     cc.TokenSource(tokenCtx),
	}
}

// AccessToken возвращает действующий токен client_credentials.
func (c *Client) AccessToken(_ context.Context) (string, error) {
	const op = "paypal.AccessToken"
	token, err := c.tokens.Token()
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", fmt.Errorf("%s: %w", op, &APIError{
				StatusCode: rerr.Response.StatusCode,
				Name:       rerr.ErrorCode,
				Message:    rerr.ErrorDescription,
			})
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token.AccessToken, nil
}

// CreateSubscription создаёт подписку по плану. requestID передаётся в
// заголовке PayPal-Request-Id и делает повтор запроса идемпотентным.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest, requestID string) (*Subscription, error) {
	const op = "paypal.CreateSubscription"

	var sub Subscription
	headers := map[string]string{
		"PayPal-Request-Id": requestID,
		"Prefer":            "return=representation",
	}
	if err := c.do(ctx, http.MethodPost, "/v1/billing/subscriptions", req, headers, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// VerifyWebhookSignature отправляет заголовки доставки и событие на проверку подписи.
func (c *Client) VerifyWebhookSignature(ctx context.Context, req VerifyWebhookSignatureRequest) (*VerifyWebhookSignatureResponse, error) {
	const op = "paypal.VerifyWebhookSignature"

	var resp VerifyWebhookSignatureResponse
	if err := c.do(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", req, nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
