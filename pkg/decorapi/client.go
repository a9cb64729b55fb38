package decorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrTransport marks failures that never produced an HTTP response.
var ErrTransport = errors.New("backend unreachable")

// APIError is a non-2xx backend response. Message carries the backend's own
// wording when it sent one.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error: status=%d message=%s", e.Status, e.Message)
}

// Client talks to the marketplace REST backend under {BaseURL}/api/{Resource}.
// It is a value type; WithToken and WithRequestID return adjusted copies.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	RequestID  string
}

func New(baseURL string, timeout time.Duration) Client {
	return Client{
		HTTPClient: &http.Client{Timeout: timeout},
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c Client) WithToken(token string) Client {
	c.Token = token
	return c
}

func (c Client) WithRequestID(id string) Client {
	c.RequestID = id
	return c
}

func (c Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		return 0, fmt.Errorf("missing backend base url")
	}

	var body io.Reader
	switch b := reqBody.(type) {
	case nil:
	case json.RawMessage:
		if len(b) > 0 {
			body = bytes.NewReader(b)
		}
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
		body = &buf
	}

	u := strings.TrimRight(c.BaseURL, "/") + "/api/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.RequestID != "" {
		req.Header.Set("X-Request-Id", c.RequestID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, fmt.Errorf("%w: read body: %w", ErrTransport, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &APIError{
			Status:  resp.StatusCode,
			Message: backendMessage(resp.StatusCode, b),
			Body:    string(b),
		}
	}

	if respBody != nil && len(bytes.TrimSpace(b)) > 0 {
		if raw, ok := respBody.(*json.RawMessage); ok {
			*raw = append((*raw)[:0], b...)
			return resp.StatusCode, nil
		}
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode backend response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}

// backendMessage pulls a human readable reason out of an error body. The
// backend is not consistent about the field name.
func backendMessage(status int, b []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
		Detail  string `json:"detail"`
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &env) == nil {
		for _, s := range []string{env.Message, env.Error, env.Detail, env.Title} {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	if len(trimmed) > 0 && len(trimmed) <= 200 && trimmed[0] != '<' && trimmed[0] != '{' && trimmed[0] != '[' {
		return string(trimmed)
	}
	return "request failed with status " + strconv.Itoa(status)
}
