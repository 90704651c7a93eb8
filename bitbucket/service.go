package bitbucket

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// ListOptions are the filtering parameters every 2.0 collection accepts
type ListOptions struct {
	// Query is a BBQL filter, e.g. `state="OPEN"`
	Query string `url:"q,omitempty"`
	Sort  string `url:"sort,omitempty"`
	// Fields selects or trims response fields, e.g. "-values.links"
	Fields string `url:"fields,omitempty"`
}

// encodeOptions turns an options struct into query parameters
func encodeOptions(opts any) (url.Values, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}
	return values, nil
}

// escapePath escapes each segment and joins them with slashes
func escapePath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// paginate encodes opts and starts a 2.0 enumeration of path
func paginate[T any](c *Client, path string, opts any, page PageOptions) *Paginator[T] {
	values, err := encodeOptions(opts)
	if err != nil {
		return failedPaginator[T](err)
	}
	return Paginate[T](c, path, values, page)
}

// call builds a request and decodes the response into a new T
func call[T any](ctx context.Context, c *Client, version APIVersion, method, path string, values url.Values, body any) (*T, error) {
	req, err := NewRequest(version, method, path, values, body)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := c.Do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// send builds a request whose response body is not needed
func send(ctx context.Context, c *Client, version APIVersion, method, path string, body any) error {
	req, err := NewRequest(version, method, path, nil, body)
	if err != nil {
		return err
	}
	return c.Do(ctx, req, nil)
}
