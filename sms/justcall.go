// ABOUTME: JustCall messaging client for outbound SMS
// ABOUTME: Tries auth header variants in sequence and returns a structured result, never panicking past the caller
package sms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

const defaultAPIURL = "https://api.justcall.io/v2.1/texts/new"

var nonDigitsRe = regexp.MustCompile(`[^0-9]`)

// Result is the structured outcome of a send attempt. Timeouts, transport
// errors, and non-2xx statuses all land here as Success=false; the caller
// decides whether to offer a retry.
type Result struct {
	Success bool
	Status  int
	Reason  string
}

type Client struct {
	key    string
	secret string
	// APIURL may be overridden to point at a proxy or a test server.
	APIURL string
	http   *http.Client
}

// NewClient builds a JustCall client with a bounded request timeout. Key and
// secret come from the environment or secret store, out of band.
func NewClient(key, secret string) *Client {
	return &Client{
		key:    key,
		secret: secret,
		APIURL: defaultAPIURL,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// DialerURL returns the JustCall dialer link for a number. The dialer wants
// bare digits without the plus.
func DialerURL(number string) string {
	return "https://app.justcall.io/dialer?numbers=" + nonDigitsRe.ReplaceAllString(number, "")
}

type sendPayload struct {
	JustCallNumber string `json:"justcall_number"`
	ContactNumber  string `json:"contact_number"`
	Body           string `json:"body"`
	RestrictOnce   string `json:"restrict_once"`
}

type sendResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// Send posts one SMS. Auth header variants are tried in sequence for API
// compatibility, stopping at the first success or the first failure that is
// not an auth rejection. No automatic retry beyond that.
func (c *Client) Send(ctx context.Context, to, body, from string) Result {
	if c.key == "" || c.secret == "" {
		return Result{Success: false, Reason: "missing JUSTCALL_API_KEY/JUSTCALL_API_SECRET"}
	}

	payload, err := json.Marshal(sendPayload{
		JustCallNumber: from,
		ContactNumber:  to,
		Body:           body,
		RestrictOnce:   "Yes",
	})
	if err != nil {
		return Result{Success: false, Reason: err.Error()}
	}

	token := base64.StdEncoding.EncodeToString([]byte(c.key + ":" + c.secret))
	variants := []map[string]string{
		{"Authorization": "Basic " + token},
		{"Authorization": c.key + ":" + c.secret},
		{"x-api-key": c.key, "x-api-secret": c.secret},
	}

	last := Result{Success: false, Reason: "not attempted"}
	for _, headers := range variants {
		res, retryAuth := c.attempt(ctx, payload, headers)
		if res.Success || !retryAuth {
			return res
		}
		last = res
	}
	return last
}

// attempt posts once. The second return value reports whether the next auth
// variant is worth trying (only after a 401/403).
func (c *Client) attempt(ctx context.Context, payload []byte, headers map[string]string) (Result, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return Result{Success: false, Reason: err.Error()}, false
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Success: false, Reason: err.Error()}, false
	}
	defer resp.Body.Close()

	var body sendResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		(body.Success == nil || *body.Success)
	if ok {
		return Result{Success: true, Status: resp.StatusCode}, false
	}

	reason := body.Message
	if reason == "" {
		reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	authRejected := resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden
	return Result{Success: false, Status: resp.StatusCode, Reason: reason}, authRejected
}
