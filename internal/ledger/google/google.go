// Package google reads tab payloads from a Google Sheets spreadsheet laid
// out as a two-column key/value sheet (Key | Value).
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	applog "gemdash/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheet is the sheet holding the key/value store.
const DefaultSheet = "Store"

// Snapshot lifetimes. A zero CacheTTL means DefaultCacheTTL; anything shorter
// than MinCacheTTL is raised to it.
const (
	DefaultCacheTTL = 30 * time.Second
	MinCacheTTL     = time.Second
)

// rangeReader reads a cell range. It isolates the Sheets API for tests.
type rangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}

type sheetsReader struct {
	svc *gsheet.Service
}

func (r sheetsReader) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// Options configures a Client.
type Options struct {
	SpreadsheetID string
	// Sheet defaults to DefaultSheet.
	Sheet string
	// CacheTTL is how long a fetched snapshot serves reads.
	CacheTTL time.Duration
	Logger   *applog.Logger
}

// Client implements ledger.Store and ledger.Lister on top of one sheet. The
// whole sheet is read at once and cached, so a dashboard assembly touching
// dozens of keys costs a single API call.
type Client struct {
	reader        rangeReader
	spreadsheetID string
	sheet         string
	ttl           time.Duration
	logger        *applog.Logger

	mu        sync.Mutex
	snapshot  map[string]string
	expiresAt time.Time
	now       func() time.Time
}

// New creates a Sheets client using service account credentials found in
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(sheetsReader{svc: svc}, opts), nil
}

func newClient(reader rangeReader, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	sheet := strings.TrimSpace(opts.Sheet)
	if sheet == "" {
		sheet = DefaultSheet
	}
	ttl := opts.CacheTTL
	switch {
	case ttl <= 0:
		ttl = DefaultCacheTTL
	case ttl < MinCacheTTL:
		ttl = MinCacheTTL
	}
	return &Client{
		reader:        reader,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheet:         sheet,
		ttl:           ttl,
		logger:        logger.WithComponent(applog.ComponentSheets),
		now:           time.Now,
	}
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var creds []byte
	switch {
	case inline != "":
		creds = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	// Read-only: the dashboard never writes back to the spreadsheet.
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Get implements ledger.Store.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return "", false, err
	}
	v, ok := snap[key]
	return v, ok, nil
}

// Keys implements ledger.Lister.
func (c *Client) Keys(ctx context.Context) ([]string, error) {
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// View implements ledger.Snapshotter with the current cached snapshot. A
// reload replaces the map instead of mutating it, so the view stays fixed.
func (c *Client) View(ctx context.Context) (map[string]string, error) {
	return c.load(ctx)
}

// Snapshot returns a copy of every key/value pair, fetched fresh.
func (c *Client) Snapshot(ctx context.Context) (map[string]string, error) {
	c.Invalidate()
	snap, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out, nil
}

// Invalidate forces the next read to fetch the sheet again.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// load returns the cached snapshot or fetches a new one. The lock is held
// across the fetch so concurrent tab reads share one API call.
func (c *Client) load(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && c.now().Before(c.expiresAt) {
		return c.snapshot, nil
	}

	rng := fmt.Sprintf("%s!A:B", c.sheet)
	start := c.now()
	values, err := c.reader.ReadRange(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	c.snapshot = parseStore(values)
	c.expiresAt = c.now().Add(c.ttl)

	c.logger.DebugContext(ctx, "Fetched store sheet",
		"range", rng,
		"keys", len(c.snapshot),
		applog.FieldDuration, c.now().Sub(start).Milliseconds())
	return c.snapshot, nil
}
