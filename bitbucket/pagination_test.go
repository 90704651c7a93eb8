package bitbucket

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int
}

// pagedServer serves total items from /2.0/items in pages of the requested
// pagelen, capped at serverMax, and counts the requests it receives.
type pagedServer struct {
	total     int
	serverMax int
	requests  atomic.Int32
	failPage  int
	pageLens  []string
	baseURL   string
}

func (s *pagedServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		q := r.URL.Query()
		s.pageLens = append(s.pageLens, q.Get("pagelen"))

		pageLen, err := strconv.Atoi(q.Get("pagelen"))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if s.serverMax > 0 && pageLen > s.serverMax {
			pageLen = s.serverMax
		}
		page := 1
		if p := q.Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		if page == s.failPage {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"type":"error","error":{"message":"Something went wrong"}}`))
			return
		}

		start := (page - 1) * pageLen
		end := min(start+pageLen, s.total)
		values := "["
		for i := start; i < end; i++ {
			if i > start {
				values += ","
			}
			values += fmt.Sprintf(`{"id":%d}`, i)
		}
		values += "]"

		next := ""
		if end < s.total {
			next = fmt.Sprintf(`,"next":"%s/2.0/items?page=%d&pagelen=%d&q=%s"`, s.baseURL, page+1, pageLen, "kind%3D%22x%22")
		}
		fmt.Fprintf(w, `{"size":%d,"page":%d,"pagelen":%d,"values":%s%s}`, s.total, page, pageLen, values, next)
	}
}

func newPagedClient(t *testing.T, s *pagedServer) *Client {
	client, server := newTestClient(t, s.handler(t))
	s.baseURL = server.URL
	return client
}

func ids(items []item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestPaginatorCollectsAllPages(t *testing.T) {
	s := &pagedServer{total: 7}
	client := newPagedClient(t, s)

	items, err := Paginate[item](client, "items", nil, PageOptions{PageLen: 3}).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, ids(items))
	assert.Equal(t, int32(3), s.requests.Load())
}

func TestPaginatorMaxItemsStopsEarly(t *testing.T) {
	s := &pagedServer{total: 500, serverMax: 50}
	client := newPagedClient(t, s)

	p := Paginate[item](client, "items", nil, PageOptions{PageLen: 100, MaxItems: 120})
	items, err := p.Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, items, 120)
	assert.Equal(t, 119, items[119].ID)
	assert.Equal(t, int32(3), s.requests.Load())
	assert.Equal(t, 3, p.Pages())
}

func TestPaginatorClampsPageLenToMaxItems(t *testing.T) {
	s := &pagedServer{total: 100}
	client := newPagedClient(t, s)

	p := Paginate[item](client, "items", nil, PageOptions{PageLen: 50, MaxItems: 10})
	assert.Equal(t, 10, p.PageLen())

	items, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 10)
	assert.Equal(t, []string{"10"}, s.pageLens)
	assert.Equal(t, int32(1), s.requests.Load())
}

func TestPaginatorUsesClientPageLen(t *testing.T) {
	s := &pagedServer{total: 3}
	client, server := newTestClient(t, s.handler(t), WithPageLen(20))
	s.baseURL = server.URL

	_, err := Paginate[item](client, "items", nil, PageOptions{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"20"}, s.pageLens)
}

func TestPaginatorFollowsNextVerbatim(t *testing.T) {
	var queries []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprintf(w, `{"values":[{"id":1}],"next":"http://%s/2.0/items?cursor=abc"}`, r.Host)
			return
		}
		w.Write([]byte(`{"values":[{"id":2}]}`))
	})

	items, err := Paginate[item](client, "items", map[string][]string{"q": {`state="OPEN"`}}, PageOptions{PageLen: 5}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(items))

	require.Len(t, queries, 2)
	assert.Equal(t, "pagelen=5&q=state%3D%22OPEN%22", queries[0])
	// the cursor's own query wins; only pagelen is restored
	assert.Equal(t, "cursor=abc&pagelen=5", queries[1])
}

func TestPaginatorStopsOnMissingValues(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprintf(w, `{"size":0,"next":"http://%s/2.0/items?page=2"}`, r.Host)
	})

	items, err := Paginate[item](client, "items", nil, PageOptions{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPaginatorFollowsEmptyPage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			fmt.Fprintf(w, `{"values":[],"next":"http://%s/2.0/items?page=2"}`, r.Host)
			return
		}
		w.Write([]byte(`{"values":[{"id":9}]}`))
	})

	items, err := Paginate[item](client, "items", nil, PageOptions{}).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{9}, ids(items))
}

func TestPaginatorErrorKeepsEarlierItems(t *testing.T) {
	s := &pagedServer{total: 10, failPage: 2}
	client := newPagedClient(t, s)

	p := Paginate[item](client, "items", nil, PageOptions{PageLen: 4})
	items, err := p.Collect(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Something went wrong", apiErr.Message)
	assert.Equal(t, []int{0, 1, 2, 3}, ids(items))

	// exhausted paginators stay exhausted
	assert.False(t, p.Next(context.Background()))
	assert.Equal(t, int32(2), s.requests.Load())
}

func TestPaginatorIsSingleUse(t *testing.T) {
	s := &pagedServer{total: 2}
	client := newPagedClient(t, s)

	p := Paginate[item](client, "items", nil, PageOptions{})
	first, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, int32(1), s.requests.Load())
}

func TestPaginatorAll(t *testing.T) {
	s := &pagedServer{total: 5, failPage: 3}
	client := newPagedClient(t, s)

	var got []int
	var gotErr error
	for it, err := range Paginate[item](client, "items", nil, PageOptions{PageLen: 2}).All(context.Background()) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, it.ID)
	}

	assert.Equal(t, []int{0, 1, 2, 3}, got)
	assert.Error(t, gotErr)
}

func TestPaginatorAllEarlyBreak(t *testing.T) {
	s := &pagedServer{total: 50}
	client := newPagedClient(t, s)

	count := 0
	for _, err := range Paginate[item](client, "items", nil, PageOptions{PageLen: 5}).All(context.Background()) {
		require.NoError(t, err)
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, int32(1), s.requests.Load())
}

func TestPaginatorStream(t *testing.T) {
	s := &pagedServer{total: 9}
	client := newPagedClient(t, s)

	var pages [][]int
	for result := range Paginate[item](client, "items", nil, PageOptions{PageLen: 4}).Stream(context.Background()) {
		require.NoError(t, result.Err)
		pages = append(pages, ids(result.Items))
	}

	assert.Equal(t, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}, {8}}, pages)
}

func TestPaginatorStreamCancel(t *testing.T) {
	s := &pagedServer{total: 100}
	client := newPagedClient(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received []int
	stream := Paginate[item](client, "items", nil, PageOptions{PageLen: 10}).Stream(ctx)
	for result := range stream {
		require.NoError(t, result.Err)
		received = append(received, ids(result.Items)...)
		if len(received) == 20 {
			cancel()
		}
	}

	assert.Len(t, received, 20)
	assert.Equal(t, 19, received[19])
	// the goroutine may have requested at most one page that was never delivered
	assert.LessOrEqual(t, s.requests.Load(), int32(3))
}

func TestPaginatorStreamError(t *testing.T) {
	s := &pagedServer{total: 10, failPage: 2}
	client := newPagedClient(t, s)

	var results []PageResult[item]
	for result := range Paginate[item](client, "items", nil, PageOptions{PageLen: 5}).Stream(context.Background()) {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	assert.Len(t, results[0].Items, 5)
	assert.Error(t, results[1].Err)
}

func TestPaginateInvalidOptions(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	p := paginate[item](client, "items", 42, PageOptions{})
	assert.False(t, p.Next(context.Background()))
	assert.Error(t, p.Err())
}
