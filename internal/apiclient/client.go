// Package apiclient is the REST client for the file storage API.
// One call is one HTTP request: no retries, no backoff, no client timeout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/templui/securefiles/internal/ctxkeys"
	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Config struct {
	BaseURL   string
	Transport http.RoundTripper // nil = http.DefaultTransport
}

func New(cfg Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Transport: cfg.Transport},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one API request.
type call struct {
	op       string
	method   string
	path     string
	query    url.Values
	body     any           // nil, *Multipart, or anything encodable as JSON
	token    *oauth2.Token // nil = anonymous
	fallback string        // error message when the server sends none
}

// Request issues one request against the API. body is sent as JSON unless it
// is a *Multipart. A non-nil token is attached as a bearer header. On 2xx the
// response is decoded into out (if non-nil); otherwise the error is a
// *HTTPError or *NetworkError.
func (c *Client) Request(ctx context.Context, method, path string, body any, token *oauth2.Token, out any) error {
	return c.do(ctx, call{
		op:     strings.ToLower(method) + " " + path,
		method: method,
		path:   path,
		body:   body,
		token:  token,
	}, out)
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	req, upload, err := c.newRequest(ctxkeys.WithOperation(ctx, cl.op), cl)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if srcErr := upload.sourceErr(); srcErr != nil {
			return fmt.Errorf("%w: %w", ErrUploadSource, srcErr)
		}
		return &NetworkError{Op: cl.op, URL: redact(req.URL), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if srcErr := upload.sourceErr(); srcErr != nil {
			return fmt.Errorf("%w: %w", ErrUploadSource, srcErr)
		}
		return readHTTPError(resp, cl.fallback)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", cl.op, err)
	}
	return nil
}

// newRequest builds the request before attaching the body, so a multipart
// writer is only started for a request that can actually be sent.
func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, *uploadBody, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", cl.op, err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.token != nil {
		cl.token.SetAuthHeader(req)
	}

	var upload *uploadBody
	switch b := cl.body.(type) {
	case nil:
	case *Multipart:
		var contentType string
		upload, contentType = b.open()
		req.Body = upload
		req.Header.Set("Content-Type", contentType)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s request: %w", cl.op, err)
		}
		req.Body = io.NopCloser(bytes.NewReader(data))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		req.ContentLength = int64(len(data))
		req.Header.Set("Content-Type", "application/json")
	}

	return req, upload, nil
}

// readHTTPError builds an HTTPError from the response's "message" field,
// then its "error" field, then fallback, then the status text.
func readHTTPError(resp *http.Response, fallback string) error {
	he := &HTTPError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload map[string]any
	if json.Unmarshal(data, &payload) == nil {
		for _, key := range []string{"message", "error"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				he.Message = msg
				break
			}
		}
	}

	if he.Message == "" {
		he.Message = fallback
	}
	if he.Message == "" {
		he.Message = http.StatusText(resp.StatusCode)
	}
	return he
}

// redact strips the query string; signed URLs carry credentials there.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}
