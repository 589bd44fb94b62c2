// Package providers holds the carrier integrations behind ports.Provider.
//
// Each backend lives in its own subpackage; the real ones talk JSON over
// HTTP through JSONClient.
package providers

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

	"shipping/internal/pkg/errs"
)

const (
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
)

// ClientOptions configures a JSONClient.
type ClientOptions struct {
	Provider string
	BaseURL  string
	// Timeout bounds every request, including reading the response.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Authorize sets credentials on each outgoing request.
	Authorize func(*http.Request)
	// ErrorMessage extracts the human readable message from an error body.
	// The trimmed body is used when it returns "".
	ErrorMessage func(body []byte) string
}

// JSONClient sends JSON requests to a carrier API. Every failure, including
// transport errors and undecodable responses, is an *errs.ProviderError.
type JSONClient struct {
	provider     string
	baseURL      string
	timeout      time.Duration
	http         *http.Client
	authorize    func(*http.Request)
	errorMessage func([]byte) string
}

func NewJSONClient(opts ClientOptions) (*JSONClient, error) {
	if strings.TrimSpace(opts.Provider) == "" {
		return nil, errs.NewValueIsRequiredError("provider")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errs.NewValueIsRequiredError("base url")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Authorize == nil {
		opts.Authorize = func(*http.Request) {}
	}
	if opts.ErrorMessage == nil {
		opts.ErrorMessage = func([]byte) string { return "" }
	}

	return &JSONClient{
		provider:     opts.Provider,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		timeout:      opts.Timeout,
		http:         opts.HTTPClient,
		authorize:    opts.Authorize,
		errorMessage: opts.ErrorMessage,
	}, nil
}

// Do sends in as the JSON body of method path and decodes a 2xx response
// into out. in and out may be nil.
func (c *JSONClient) Do(ctx context.Context, operation, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errs.NewProviderErrorWithCause(c.provider, operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errs.NewProviderErrorWithCause(c.provider, operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", c.timeout, err)
		}
		return errs.NewProviderErrorWithCause(c.provider, operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errs.NewProviderErrorWithCause(c.provider, operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := c.errorMessage(raw)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &errs.ProviderError{
			Provider:   c.provider,
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return errs.NewProviderErrorWithCause(c.provider, operation,
			fmt.Errorf("decode response: %w", err))
	}
	return nil
}
