package core

// DefaultImageURL is stored when an ingested record carries no image.
const DefaultImageURL = "https://via.placeholder.com/150"

// DefaultStatsMonth is the month assumed by the statistics views when the
// caller leaves the month blank.
const DefaultStatsMonth = "03"

type (
	// Product is one ingested transaction row. IDs are assigned by the
	// store and never reused; rows are append-only.
	Product struct {
		ID          int64   `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Category    string  `json:"category"`
		Image       string  `json:"image"`
		Sold        bool    `json:"sold"`
		DateOfSale  string  `json:"dateOfSale"`
	}

	// MonthTotals aggregates one calendar month across all years.
	// TotalSaleAmount sums the price of every matching row, sold or not;
	// only the item counters distinguish sold from unsold.
	MonthTotals struct {
		TotalSaleAmount   float64 `json:"totalSaleAmount"`
		TotalSoldItems    int64   `json:"totalSoldItems"`
		TotalNotSoldItems int64   `json:"totalNotSoldItems"`
	}

	// PriceRangeCounts is the fixed six-bucket price histogram. Buckets
	// partition the price axis: a row lands in exactly one of them.
	PriceRangeCounts struct {
		UpTo100  int64 `json:"0-100"`
		UpTo200  int64 `json:"101-200"`
		UpTo300  int64 `json:"201-300"`
		UpTo400  int64 `json:"301-400"`
		UpTo500  int64 `json:"401-500"`
		Above500 int64 `json:"501-above"`
	}

	// CategoryCount is one row of the per-category breakdown.
	CategoryCount struct {
		Category  string `json:"category"`
		ItemCount int64  `json:"itemCount"`
	}

	// Pagination echoes the search window alongside the totals computed
	// over the full, unpaginated match set.
	Pagination struct {
		TotalCount  int64 `json:"totalCount"`
		TotalPages  int64 `json:"totalPages"`
		CurrentPage int   `json:"currentPage"`
		PerPage     int   `json:"perPage"`
	}

	// ProductPage is one page of search results.
	ProductPage struct {
		Products   []Product  `json:"products"`
		Pagination Pagination `json:"pagination"`
	}

	// CombinedStats bundles the three monthly views for a single month.
	CombinedStats struct {
		Statistics      MonthTotals      `json:"statistics"`
		PriceRangeStats PriceRangeCounts `json:"priceRangeStatistics"`
		CategoryStats   []CategoryCount  `json:"categoryStatistics"`
	}
)

// Total returns the sum of all bucket counts, which equals the number of
// rows matching the month filter.
func (p PriceRangeCounts) Total() int64 {
	return p.UpTo100 + p.UpTo200 + p.UpTo300 + p.UpTo400 + p.UpTo500 + p.Above500
}
