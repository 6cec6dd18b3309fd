// Package rest talks to a hosted PostgREST + GoTrue service (the layout used
// by Supabase projects): tables under /rest/v1 and auth under /auth/v1.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"realtysite/internal/pkg/observer"
	"realtysite/internal/remote"
)

const defaultHttpTimeout = 30 * time.Second
const defaultHttpConnectTimeout = 5 * time.Second
const defaultHttpTlsTimeout = 5 * time.Second

func defaultClient() *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultHttpConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHttpTlsTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultHttpTimeout,
	}
}

type Options struct {
	// URL is the project base, e.g. https://xyz.supabase.co
	URL     string
	AnonKey string
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	anonKey    string
	http       *http.Client
	authEvents observer.List[remote.AuthEvent]
}

var _ remote.Client = (*Client)(nil)

func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.URL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rest: invalid service url %q", opts.URL)
	}
	if opts.AnonKey == "" {
		return nil, errors.New("rest: anon key is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = defaultClient()
	}
	return &Client{
		baseURL: u.String(),
		anonKey: opts.AnonKey,
		http:    hc,
	}, nil
}

// apiError is the error body of both PostgREST and GoTrue. Each fills a
// different subset of the fields.
type apiError struct {
	Status           int    `json:"-"`
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Details          string `json:"details"`
}

func (e *apiError) Error() string {
	msg := e.Message
	for _, alt := range []string{e.Msg, e.ErrorDescription, e.ErrorName} {
		if msg == "" {
			msg = alt
		}
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, msg)
}

func (e *apiError) code() string {
	switch c := e.Code.(type) {
	case string:
		return c
	case float64:
		return strconv.Itoa(int(c))
	}
	return ""
}

// do sends one request and decodes a 2xx JSON body into result. A nil result
// discards the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, token string, header http.Header, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	glog.V(2).Infof("rest %s %s status=%d took=%s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		if len(data) > 0 {
			if json.Unmarshal(data, apiErr) != nil {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		return apiErr
	}
	if result == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, result)
}
