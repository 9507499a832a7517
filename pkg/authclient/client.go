// Package authclient is the Go client for the lakeauth HTTP API. One method
// per API operation; list calls take ListOptions and return the pagination
// envelope alongside the results.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// apiBasePath is prefixed to every request path.
const apiBasePath = "/api/v1"

// Client talks to a lakeauth server. Authentication uses the session Token
// when set, otherwise the AccessKeyID/SecretAccessKey pair via basic auth.
type Client struct {
	BaseURL         string
	Token           string
	AccessKeyID     string
	SecretAccessKey string
	HTTPClient      *http.Client
}

// NewClient creates a client for the given base URL. token may be empty;
// credentials can also be set on the returned client or obtained via Login.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do executes a request against the API. path is relative to the API base
// path. A non-nil body is JSON-encoded. The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.BaseURL + apiBasePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.AccessKeyID != "":
		req.SetBasicAuth(c.AccessKeyID, c.SecretAccessKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

// doJSON runs a request, checks for an API error, and decodes the response
// into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if err := CheckError(resp); err != nil {
		return err
	}
	if out == nil {
		resp.Body.Close()
		return nil
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ListOptions carries the pagination parameters of list calls.
type ListOptions struct {
	Prefix string
	After  string
	Amount int
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	if o.After != "" {
		q.Set("after", o.After)
	}
	if o.Amount > 0 {
		q.Set("amount", strconv.Itoa(o.Amount))
	}
	return q
}
