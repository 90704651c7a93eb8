package bitbucket

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
)

// Page is one 2.0 paged response. Values is nil when the server sent no
// "values" member, which ends enumeration.
type Page[T any] struct {
	Values   *[]T
	Next     string
	Previous string
	Size     *int
	Page     int
	PageLen  int
}

// PageOptions bounds an enumeration. PageLen 0 uses the client default and
// MaxItems 0 means unlimited.
type PageOptions struct {
	PageLen  int
	MaxItems int
}

// PageResult is one page delivered by Stream
type PageResult[T any] struct {
	Items []T
	Err   error
}

// Paginator lazily walks a paged collection, following the server's "next"
// links. It is single use: once exhausted or failed it stays that way.
type Paginator[T any] struct {
	client   *Client
	path     string
	query    url.Values
	pageLen  int
	maxItems int

	yielded int
	pages   int
	done    bool
	buf     []T
	current T
	err     error
}

// Paginate prepares an enumeration of the collection at path. Nothing is
// fetched until the first call to Next, All, Stream or Collect.
func Paginate[T any](c *Client, path string, query url.Values, opts PageOptions) *Paginator[T] {
	pageLen := opts.PageLen
	if pageLen <= 0 {
		pageLen = c.pageLen
	}
	maxItems := opts.MaxItems
	if maxItems < 0 {
		maxItems = 0
	}
	if maxItems > 0 && maxItems < pageLen {
		pageLen = maxItems
	}

	q := make(url.Values, len(query)+1)
	for k, vs := range query {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("pagelen", strconv.Itoa(pageLen))

	return &Paginator[T]{
		client:   c,
		path:     path,
		query:    q,
		pageLen:  pageLen,
		maxItems: maxItems,
	}
}

// failedPaginator returns a paginator that reports err on first use
func failedPaginator[T any](err error) *Paginator[T] {
	return &Paginator[T]{done: true, err: err}
}

// PageLen returns the effective page size sent to the server
func (p *Paginator[T]) PageLen() int {
	return p.pageLen
}

// Pages returns the number of pages fetched so far
func (p *Paginator[T]) Pages() int {
	return p.pages
}

// Next advances to the next item, fetching a page when the current one is
// used up. It returns false when the collection is exhausted, MaxItems was
// reached, or an error occurred (see Err).
func (p *Paginator[T]) Next(ctx context.Context) bool {
	for len(p.buf) == 0 {
		batch, ok := p.nextBatch(ctx)
		if !ok {
			var zero T
			p.current = zero
			return false
		}
		p.buf = batch
	}
	p.current = p.buf[0]
	p.buf = p.buf[1:]
	return true
}

// Value returns the item reached by the last successful Next
func (p *Paginator[T]) Value() T {
	return p.current
}

// Err returns the error that stopped the enumeration, if any
func (p *Paginator[T]) Err() error {
	return p.err
}

// All adapts the paginator to a range-over-func sequence. A failure is
// yielded once, as the last element, with a zero item.
func (p *Paginator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for p.Next(ctx) {
			if !yield(p.Value(), nil) {
				return
			}
		}
		if err := p.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains the paginator. On error the items gathered before the
// failure are returned alongside it.
func (p *Paginator[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for p.Next(ctx) {
		items = append(items, p.Value())
	}
	return items, p.Err()
}

// Stream fetches pages on a background goroutine and delivers each one whole.
// A page is requested only after the previous one was received, and ctx is
// checked before every fetch, so cancelling between two pages delivers
// exactly the pages already received. The channel is closed at the end; an
// error arrives as a final PageResult with Err set, unless ctx was cancelled.
func (p *Paginator[T]) Stream(ctx context.Context) <-chan PageResult[T] {
	out := make(chan PageResult[T])

	go func() {
		defer close(out)

		for {
			if ctx.Err() != nil {
				return
			}
			items, ok := p.nextBatch(ctx)
			if !ok {
				if p.err != nil && ctx.Err() == nil {
					select {
					case out <- PageResult[T]{Err: p.err}:
					case <-ctx.Done():
					}
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- PageResult[T]{Items: items}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// nextBatch fetches one page and returns its items cut to the remaining
// MaxItems budget. ok is false when there is nothing more to fetch.
func (p *Paginator[T]) nextBatch(ctx context.Context) ([]T, bool) {
	if p.done {
		return nil, false
	}
	if p.maxItems > 0 && p.yielded >= p.maxItems {
		p.done = true
		return nil, false
	}
	if err := ctx.Err(); err != nil {
		p.fail(err)
		return nil, false
	}

	req, err := NewRequest(V2, http.MethodGet, p.path, p.query, nil)
	if err != nil {
		p.fail(err)
		return nil, false
	}

	var page Page[T]
	if err := p.client.Do(ctx, req, &page); err != nil {
		p.fail(err)
		return nil, false
	}
	p.pages++

	if page.Values == nil {
		p.done = true
		return nil, false
	}

	items := *page.Values
	if p.maxItems > 0 {
		if remaining := p.maxItems - p.yielded; len(items) > remaining {
			items = items[:remaining]
		}
	}
	p.yielded += len(items)

	p.client.logger.Debug().
		Int("page", p.pages).
		Int("count", len(items)).
		Int("total", p.yielded).
		Bool("has_next", page.Next != "").
		Msg("Retrieved page from Bitbucket")

	switch {
	case page.Next == "":
		p.done = true
	case p.maxItems > 0 && p.yielded >= p.maxItems:
		p.done = true
	default:
		if err := p.follow(page.Next); err != nil {
			// the items of this page are still delivered; the error ends the walk
			p.err = err
			p.done = true
		}
	}

	return items, true
}

// follow takes the next request's URL and query verbatim from the cursor.
// pagelen is only added back when the cursor does not carry one.
func (p *Paginator[T]) follow(next string) error {
	u, err := url.Parse(next)
	if err != nil {
		return fmt.Errorf("invalid next link %q: %w", next, err)
	}
	query := u.Query()
	if query.Get("pagelen") == "" {
		query.Set("pagelen", strconv.Itoa(p.pageLen))
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""

	p.path = u.String()
	p.query = query
	return nil
}

func (p *Paginator[T]) fail(err error) {
	p.err = err
	p.done = true
}
