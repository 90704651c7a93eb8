package bitbucket

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/s0up4200/bbcloud/bitbucket/auth"
)

// Request describes one API call. Query parameters travel separately from
// Path and are merged by the executor.
type Request struct {
	Version APIVersion
	Method  string
	// Path is relative to the version's base URL, or an absolute URL
	Path  string
	Query url.Values
	// Body is JSON encoded with the version's codec. []byte and string
	// bodies are sent verbatim.
	Body any
}

// NewRequest builds a request descriptor
func NewRequest(version APIVersion, method, path string, query url.Values, body any) (*Request, error) {
	if strings.Contains(path, "?") {
		return nil, fmt.Errorf("%w: %s", ErrQueryInPath, path)
	}
	q := make(url.Values, len(query))
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	return &Request{
		Version: version,
		Method:  method,
		Path:    path,
		Query:   q,
		Body:    body,
	}, nil
}

// Do sends req and decodes a successful response into target.
//
// target may be nil (body ignored), *string or *[]byte (raw body), or any
// pointer the codec can decode into. An empty 2xx body leaves target at its
// zero value. Failures are one of *APIError, *TransportError,
// *DeserializationError or *auth.AuthenticationError. Nothing is retried,
// except that a 401 answered to a refreshable authenticator triggers one
// credential refresh and one resend.
func (c *Client) Do(ctx context.Context, req *Request, target any) error {
	if strings.Contains(req.Path, "?") {
		return fmt.Errorf("%w: %s", ErrQueryInPath, req.Path)
	}
	endpoint, ok := c.endpoints[req.Version]
	if !ok {
		return fmt.Errorf("%w: unknown API version %d", ErrInvalidConfig, req.Version)
	}

	u, err := c.resolve(endpoint.base, req)
	if err != nil {
		return err
	}

	var payload []byte
	if req.Body != nil {
		payload, err = encodeBody(endpoint.codec, req.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	status, body, err := c.send(ctx, req.Method, u, payload)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		if refresher, ok := c.auth.(auth.Refresher); ok {
			c.logger.Debug().Str("scheme", c.auth.Scheme()).Msg("Refreshing credentials after 401")
			switch err := refresher.Refresh(ctx); {
			case errors.Is(err, auth.ErrNoToken):
				// nothing to renew with; report the 401 itself
			case err != nil:
				return err
			default:
				status, body, err = c.send(ctx, req.Method, u, payload)
				if err != nil {
					return err
				}
			}
		}
	}

	if status < 200 || status > 299 {
		return parseAPIError(endpoint.codec, status, body)
	}

	return decodeBody(endpoint.codec, body, target)
}

// Go runs Do on its own goroutine. The channel receives exactly one value.
func (c *Client) Go(ctx context.Context, req *Request, target any) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- c.Do(ctx, req, target)
	}()
	return done
}

// Execute performs req and returns the decoded value
func Execute[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	if err := c.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) resolve(base *url.URL, req *Request) (*url.URL, error) {
	u, err := base.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// send performs one round-trip and returns the status and full body
func (c *Client) send(ctx context.Context, method string, u *url.URL, payload []byte) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if err := c.auth.Authenticate(ctx, httpReq); err != nil {
		return 0, nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: redact(u), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Method: method, URL: redact(u), Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", redact(u)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Bitbucket API request")

	return resp.StatusCode, body, nil
}

func redact(u *url.URL) string {
	return u.Redacted()
}

func encodeBody(codec *Codec, body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return codec.Marshal(body)
	}
}

func decodeBody(codec *Codec, body []byte, target any) error {
	if target == nil {
		return nil
	}

	switch t := target.(type) {
	case *string:
		*t = string(body)
		return nil
	case *[]byte:
		*t = append([]byte(nil), body...)
		return nil
	}

	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &DeserializationError{Target: reflect.TypeOf(target), Err: errors.New("target must be a non-nil pointer")}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		return nil
	}

	if err := codec.Unmarshal(body, target); err != nil {
		return &DeserializationError{Target: rv.Elem().Type(), Body: string(body), Err: err}
	}
	return nil
}
