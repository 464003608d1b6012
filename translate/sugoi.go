package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultURL is where a local Sugoi translator server listens.
const DefaultURL = "http://127.0.0.1:14366/"

// pingText is sent by Ping.
const pingText = "テスト"

// ErrOffline is returned when the translator cannot be reached.
var ErrOffline = errors.New("translator offline")

// StatusError is returned when the server answers with an error status.
// Body holds the decoded reply, which callers screen like a translation:
// the server reports bad requests as reply text.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translator returned %s: %s", e.Status, truncate(e.Body, 200))
}

// Translator turns one Japanese line into English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ---------------------------------------------------------------------------
// Sugoi translator client
// ---------------------------------------------------------------------------

// SugoiClient talks to a Sugoi translator server.
type SugoiClient struct {
	URL     string
	Verbose bool

	http *resty.Client
}

// NewSugoiClient returns a client for url. A zero timeout waits as long as
// the server needs, which long lines on slow hardware can take.
func NewSugoiClient(url string, timeout time.Duration) *SugoiClient {
	if url == "" {
		url = DefaultURL
	}
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &SugoiClient{URL: url, http: c}
}

// Translate sends text, which must already have its double quotes escaped,
// and returns the translation.
func (c *SugoiClient) Translate(ctx context.Context, text string) (string, error) {
	body := fmt.Sprintf(`{"content":"%s","message":"translate sentences"}`, text)

	if c.Verbose {
		log.Printf("[DEBUG] POST %s: %s", c.URL, truncate(text, 80))
	}

	rr, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(c.URL)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrOffline, err)
	}
	if rr.IsError() {
		return "", &StatusError{Code: rr.StatusCode(), Status: rr.Status(), Body: decodeReply(rr.Body())}
	}

	return decodeReply(rr.Body()), nil
}

// Ping checks that the server answers a translation request.
func (c *SugoiClient) Ping(ctx context.Context) error {
	_, err := c.Translate(ctx, pingText)
	return err
}

// decodeReply unquotes the JSON string the server answers with. Anything
// that is not a JSON string is used as is, minus surrounding quotes.
func decodeReply(body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Trim(strings.TrimSpace(string(body)), `"`)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
