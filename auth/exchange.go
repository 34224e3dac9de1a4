package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-docstore/core"
)

const (
	defaultExchangeRequestTimeout = 30 * time.Second
	maxExchangeResponseBodyBytes  = 1 << 20

	jwtBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

// Token is the authorization server's answer to a successful exchange.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

type ExchangeClientConfig struct {
	TokenURL       string
	RequestTimeout time.Duration
	HTTPClient     core.HTTPDoer
}

// ExchangeClient trades a signed assertion for a bearer token via a
// form-encoded POST to the authorization server. It performs no retries.
type ExchangeClient struct {
	config     ExchangeClientConfig
	httpClient core.HTTPDoer
}

func NewExchangeClient(cfg ExchangeClientConfig) *ExchangeClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultExchangeRequestTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ExchangeClient{
		config: ExchangeClientConfig{
			TokenURL:       strings.TrimSpace(cfg.TokenURL),
			RequestTimeout: timeout,
		},
		httpClient: httpClient,
	}
}

func (c *ExchangeClient) Exchange(ctx context.Context, assertion string) (Token, error) {
	if c == nil || c.httpClient == nil {
		return Token{}, &Error{Message: "http client is not configured", Cause: ErrAuthenticationFailed}
	}
	tokenURL := strings.TrimSpace(c.config.TokenURL)
	if tokenURL == "" {
		return Token{}, &Error{Message: "token url is required", Cause: ErrAuthenticationFailed}
	}
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return Token{}, &Error{Message: "assertion is required", Cause: ErrAuthenticationFailed}
	}

	values := url.Values{}
	values.Set("grant_type", jwtBearerGrantType)
	values.Set("assertion", assertion)

	if ctx == nil {
		ctx = context.Background()
	}
	requestCtx := ctx
	cancel := func() {}
	if c.config.RequestTimeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
	}
	defer cancel()

	req, err := http.NewRequestWithContext(
		requestCtx,
		http.MethodPost,
		tokenURL,
		strings.NewReader(values.Encode()),
	)
	if err != nil {
		return Token{}, &Error{Message: "build exchange request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return Token{}, &Error{Message: "exchange request failed", Cause: err}
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, maxExchangeResponseBodyBytes+1))
	if readErr != nil {
		return Token{}, &Error{Message: "read exchange response", Cause: readErr}
	}
	if int64(len(body)) > maxExchangeResponseBodyBytes {
		return Token{}, &Error{
			Message: fmt.Sprintf("exchange response exceeds %d bytes", maxExchangeResponseBodyBytes),
			Cause:   ErrAuthenticationFailed,
		}
	}

	payload := map[string]any{}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return Token{}, &Error{
				StatusCode: response.StatusCode,
				Message:    "decode exchange response",
				Cause:      err,
			}
		}
	}

	errorCode := strings.TrimSpace(readAnyString(payload["error"]))
	errorDescription := strings.TrimSpace(readAnyString(payload["error_description"]))
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices || errorCode != "" {
		if errorDescription == "" {
			errorDescription = "token exchange failed"
		}
		return Token{}, &Error{
			StatusCode: response.StatusCode,
			ErrorCode:  errorCode,
			Message:    errorDescription,
			Cause:      ErrAuthenticationFailed,
		}
	}

	accessToken := strings.TrimSpace(readAnyString(payload["access_token"]))
	if accessToken == "" {
		return Token{}, &Error{
			StatusCode: response.StatusCode,
			Message:    "exchange response missing access token",
			Cause:      ErrAuthenticationFailed,
		}
	}

	tokenType := strings.ToLower(strings.TrimSpace(readAnyString(payload["token_type"])))
	if tokenType == "" {
		tokenType = "bearer"
	}

	return Token{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresIn:   readAnyInt64(payload["expires_in"]),
	}, nil
}

func readAnyString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	}
	return ""
}

func readAnyInt64(value any) int64 {
	switch typed := value.(type) {
	case int:
		return int64(typed)
	case int64:
		return typed
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatParsed, floatErr := typed.Float64()
		if floatErr == nil {
			return int64(floatParsed)
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}
