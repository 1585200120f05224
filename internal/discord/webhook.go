// Package discord posts and edits webhook messages on the community's chat
// server.
package discord

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

const defaultMaxRetries = 3

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Footer struct {
	Text string `json:"text"`
}

type Image struct {
	URL string `json:"url"`
}

type Embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color"`
	Fields      []Field `json:"fields,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Image       *Image  `json:"image,omitempty"`
}

type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds"`
}

// Gateway creates messages and edits them later by id.
type Gateway interface {
	Send(ctx context.Context, msg Message) (string, error)
	Edit(ctx context.Context, messageID string, msg Message) error
}

var ErrRateLimited = errors.New("discord: rate limited")

// Webhook talks to a single webhook URL.
type Webhook struct {
	URL        string
	Client     *http.Client
	MaxRetries int
}

func NewWebhook(webhookURL string, timeout time.Duration) *Webhook {
	return &Webhook{
		URL:        strings.TrimRight(webhookURL, "/"),
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: defaultMaxRetries,
	}
}

// New returns a Noop gateway when no URL is configured.
func New(webhookURL string, timeout time.Duration) Gateway {
	if webhookURL == "" {
		return Noop{}
	}
	return NewWebhook(webhookURL, timeout)
}

// Send posts with ?wait=true so the response carries the message id.
func (w *Webhook) Send(ctx context.Context, msg Message) (string, error) {
	endpoint, err := w.endpoint("", true)
	if err != nil {
		return "", err
	}

	body, err := w.do(ctx, http.MethodPost, endpoint, msg)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode webhook response: %w", err)
	}
	if created.ID == "" {
		return "", errors.New("webhook response carried no message id")
	}
	return created.ID, nil
}

func (w *Webhook) Edit(ctx context.Context, messageID string, msg Message) error {
	if messageID == "" {
		return errors.New("message id is required")
	}
	endpoint, err := w.endpoint("/messages/"+url.PathEscape(messageID), false)
	if err != nil {
		return err
	}
	_, err = w.do(ctx, http.MethodPatch, endpoint, msg)
	return err
}

func (w *Webhook) endpoint(suffix string, wait bool) (string, error) {
	u, err := url.Parse(w.URL)
	if err != nil {
		return "", fmt.Errorf("invalid webhook url: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + suffix
	if wait {
		q := u.Query()
		q.Set("wait", "true")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (w *Webhook) do(ctx context.Context, method, endpoint string, msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s webhook: %w", method, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			if attempt >= w.MaxRetries {
				return nil, ErrRateLimited
			}
			if err := sleep(ctx, retryAfter(resp.Header, body)); err != nil {
				return nil, err
			}
			continue
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("%s webhook: status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		if readErr != nil {
			return nil, readErr
		}
		return body, nil
	}
}

// retryAfter reads the wait from the JSON body first, then the headers.
// Both are expressed in (possibly fractional) seconds.
func retryAfter(h http.Header, body []byte) time.Duration {
	var limited struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if json.Unmarshal(body, &limited) == nil && limited.RetryAfter > 0 {
		return time.Duration(limited.RetryAfter * float64(time.Second))
	}
	for _, key := range []string{"X-RateLimit-Reset-After", "Retry-After"} {
		if v, err := strconv.ParseFloat(h.Get(key), 64); err == nil && v > 0 {
			return time.Duration(v * float64(time.Second))
		}
	}
	return 500 * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Noop drops every message. Used when no webhook URL is configured.
type Noop struct{}

func (Noop) Send(context.Context, Message) (string, error) { return "", nil }

func (Noop) Edit(context.Context, string, Message) error { return nil }
