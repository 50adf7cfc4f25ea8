// Package feed drives a paginated listings feed: it accumulates pages fetched with a cursor,
// refuses overlapping loads and drops responses that arrive after the filter changed.
package feed

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/example/rentalhub/internal/models"
)

var (
	// ErrBusy is returned by LoadMore while another load is in flight.
	ErrBusy = errors.New("feed: a page load is already in flight")
	// ErrStale is returned when a response arrived after the filter changed. It was discarded.
	ErrStale = errors.New("feed: response superseded by a newer filter")
	// ErrNotReady is returned by LoadMore before the first page has loaded.
	ErrNotReady = errors.New("feed: first page not loaded")
	// ErrNoMore is returned by LoadMore once the feed is exhausted.
	ErrNoMore = errors.New("feed: no more pages")
)

// State of the controller.
type State int

const (
	Idle State = iota
	Loading
	Ready
	LoadingMore
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case LoadingMore:
		return "loading_more"
	}
	return "unknown"
}

// PageFetcher fetches one page of listings.
type PageFetcher interface {
	FetchPage(ctx context.Context, filter models.ListingFilter, cursor string, pageSize int) (*models.ListingPage, error)
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	State   State
	Filter  models.ListingFilter
	Items   []*models.Listing
	Cursor  string
	HasMore bool
	Err     error
}

// Controller is safe for concurrent use. The lock is not held while a page is being fetched.
type Controller struct {
	fetcher  PageFetcher
	pageSize int

	mu         sync.Mutex
	state      State
	filter     models.ListingFilter
	items      []*models.Listing
	cursor     string
	hasMore    bool
	generation uint64
	err        error
}

// NewController returns an idle controller. pageSize is 9 on the home page and 12 on the
// listings page.
func NewController(fetcher PageFetcher, pageSize int) *Controller {
	return &Controller{fetcher: fetcher, pageSize: pageSize}
}

// Load fetches the first page for the current filter.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()
	return c.ApplyFilter(ctx, filter)
}

// ApplyFilter discards accumulated items, resets the cursor and loads the first page for
// filter. Any load still in flight becomes stale.
func (c *Controller) ApplyFilter(ctx context.Context, filter models.ListingFilter) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state = Loading
	c.filter = filter
	c.items = nil
	c.cursor = ""
	c.hasMore = false
	c.err = nil
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, filter, "", c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrStale
	}
	if err != nil {
		c.state = Idle
		c.err = err
		return err
	}
	c.items = append([]*models.Listing(nil), page.Listings...)
	c.cursor = page.NextCursor
	c.hasMore = page.HasMore
	c.state = Ready
	return nil
}

// LoadMore appends the next page. Items are appended as returned, never re-sorted or
// de-duplicated. A failed fetch leaves the cursor untouched so the call can be retried.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.state == Loading || c.state == LoadingMore:
		c.mu.Unlock()
		return ErrBusy
	case c.state != Ready:
		c.mu.Unlock()
		return ErrNotReady
	case !c.hasMore:
		c.mu.Unlock()
		return ErrNoMore
	}
	c.state = LoadingMore
	gen := c.generation
	filter, cursor := c.filter, c.cursor
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, filter, cursor, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return ErrStale
	}
	c.state = Ready
	if err != nil {
		c.err = err
		return err
	}
	c.err = nil
	c.items = append(c.items, page.Listings...)
	c.cursor = page.NextCursor
	c.hasMore = page.HasMore
	return nil
}

// Matches reports whether the listing title or description contains search, ignoring case.
// An empty search matches everything.
func Matches(l *models.Listing, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	return needle == "" ||
		strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Description), needle)
}

// Filter returns the listings that match search, keeping their order.
func Filter(listings []*models.Listing, search string) []*models.Listing {
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, search) {
			out = append(out, l)
		}
	}
	return out
}

// Visible returns the accumulated items matching search. It never fetches and never
// touches the cursor.
func (c *Controller) Visible(search string) []*models.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.items, search)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Filter:  c.filter,
		Items:   append([]*models.Listing(nil), c.items...),
		Cursor:  c.cursor,
		HasMore: c.hasMore,
		Err:     c.err,
	}
}
