package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

// CallError is returned by Client.Call for a non-2xx response.
type CallError struct {
	Function string
	Status   int

	// Message is the "error" field of a JSON error body, or the raw body.
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("bridge call %s: %d %s: %s", e.Function, e.Status, http.StatusText(e.Status), e.Message)
}

// Client calls bridge functions over HTTP.
type Client struct {
	// BaseURL is the bridge prefix, e.g. "http://localhost:3000/api".
	BaseURL string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewClient creates a client for the bridge at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Call invokes the function name with args and decodes the result into out,
// which may be nil to discard it. Transport failures are wrapped in an E163
// error; a non-2xx response yields a *CallError.
func (c *Client) Call(ctx context.Context, name string, out any, args ...any) error {
	if args == nil {
		args = []any{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encoding arguments of %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(c.BaseURL, "/")+"/"+name, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.New("E163").WithDetail("Calling " + name + ".").Wrap(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New("E163").WithDetail("Reading the response of " + name + ".").Wrap(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &CallError{Function: name, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding result of %s: %w", name, err)
	}
	return nil
}
