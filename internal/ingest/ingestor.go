package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"salestats/internal/core"
)

// DefaultFetchTimeout bounds the remote fetch. The upstream feed carries a
// few thousand records at most; anything slower than this is down.
const DefaultFetchTimeout = 30 * time.Second

// ProductWriter is the slice of the store the ingestor needs.
type ProductWriter interface {
	InsertProduct(ctx context.Context, p core.Product) (int64, error)
}

// TransactionRecord is the shape of one element of the remote feed. The
// feed is loosely typed: sold arrives as either a JSON boolean or the
// strings "true"/"false", and image may be missing entirely.
type TransactionRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Sold        SoldFlag `json:"sold"`
	DateOfSale  string   `json:"dateOfSale"`
}

// SoldFlag decodes the feed's loose sold representations into a strict
// boolean: literal true, or the string "true", count as sold; everything
// else (false, "false", numbers, null, absence) does not.
type SoldFlag bool

func (s *SoldFlag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*s = false
		return nil
	}
	switch val := v.(type) {
	case bool:
		*s = SoldFlag(val)
	case string:
		*s = val == "true"
	default:
		*s = false
	}
	return nil
}

// Normalize converts a feed record into a storable product, substituting
// the placeholder image when the feed omits one.
func (t TransactionRecord) Normalize() core.Product {
	image := t.Image
	if image == "" {
		image = core.DefaultImageURL
	}
	return core.Product{
		Title:       t.Title,
		Description: t.Description,
		Price:       t.Price,
		Category:    t.Category,
		Image:       image,
		Sold:        bool(t.Sold),
		DateOfSale:  t.DateOfSale,
	}
}

// Ingestor populates the store from the remote transaction feed.
type Ingestor struct {
	store  ProductWriter
	client *http.Client
}

func NewIngestor(store ProductWriter, timeout time.Duration) *Ingestor {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Ingestor{
		store:  store,
		client: &http.Client{Timeout: timeout},
	}
}

// Load fetches the feed and appends every record to the store, returning
// the number of rows inserted. Each call appends; nothing is deduplicated.
//
// Failure policy: a fetch or decode error inserts nothing. An insert error
// aborts the batch on the spot without rolling back prior inserts, so a
// partial batch stays committed. Callers that need a clean slate should
// start from a fresh database file.
func (i *Ingestor) Load(ctx context.Context, url string) (int, error) {
	records, err := i.fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, rec := range records {
		if _, err := i.store.InsertProduct(ctx, rec.Normalize()); err != nil {
			slog.ErrorContext(ctx, "Insert failed, aborting batch",
				"error", err, "title", rec.Title, "inserted_so_far", inserted)
			return inserted, fmt.Errorf("insert record %q: %w", rec.Title, err)
		}
		inserted++
	}

	slog.InfoContext(ctx, "Ingest completed", "url", url, "inserted", inserted)
	return inserted, nil
}

func (i *Ingestor) fetch(ctx context.Context, url string) ([]TransactionRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	var records []TransactionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return records, nil
}
