package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"salestats/internal/core"
	"salestats/internal/services"
)

// --- Mocks ---

type mockReporter struct {
	page     core.ProductPage
	totals   core.MonthTotals
	ranges   core.PriceRangeCounts
	counts   []core.CategoryCount
	combined core.CombinedStats
	err      error

	lastTerm    string
	lastPage    int
	lastPerPage int
	lastMonth   string
}

func (m *mockReporter) Search(ctx context.Context, term string, page, perPage int) (core.ProductPage, error) {
	m.lastTerm, m.lastPage, m.lastPerPage = term, page, perPage
	return m.page, m.err
}

func (m *mockReporter) Totals(ctx context.Context, month string) (core.MonthTotals, error) {
	m.lastMonth = month
	if m.err != nil {
		return core.MonthTotals{}, m.err
	}
	return m.totals, nil
}

func (m *mockReporter) PriceRange(ctx context.Context, month string) (core.PriceRangeCounts, error) {
	m.lastMonth = month
	if month == "" {
		return core.PriceRangeCounts{}, services.ErrMonthRequired
	}
	return m.ranges, m.err
}

func (m *mockReporter) Categories(ctx context.Context, month string) ([]core.CategoryCount, error) {
	m.lastMonth = month
	if month == "" {
		return nil, services.ErrMonthRequired
	}
	return m.counts, m.err
}

func (m *mockReporter) Combined(ctx context.Context, month string) (core.CombinedStats, error) {
	m.lastMonth = month
	if m.err != nil {
		return core.CombinedStats{}, m.err
	}
	return m.combined, nil
}

type mockIngester struct {
	inserted int
	err      error
	called   bool
}

func (m *mockIngester) Reload(ctx context.Context) (int, error) {
	m.called = true
	return m.inserted, m.err
}

func newTestServer(reports Reporter, ingester Ingester) *Server {
	return NewServer(":0", reports, ingester)
}

func doRequest(s *Server, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHandleInitDB(t *testing.T) {
	t.Run("success returns plain text confirmation", func(t *testing.T) {
		ingester := &mockIngester{inserted: 60}
		rec := doRequest(newTestServer(&mockReporter{}, ingester), "/api/init-db")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ingester.called)
		assert.Contains(t, rec.Body.String(), "60")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("ingest failure returns 500", func(t *testing.T) {
		ingester := &mockIngester{err: errors.New("feed unreachable")}
		rec := doRequest(newTestServer(&mockReporter{}, ingester), "/api/init-db")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "feed unreachable")
	})
}

func TestHandleProducts(t *testing.T) {
	page := core.ProductPage{
		Products: []core.Product{{ID: 1, Title: "Backpack", Price: 109.95}},
		Pagination: core.Pagination{
			TotalCount:  1,
			TotalPages:  1,
			CurrentPage: 1,
			PerPage:     10,
		},
	}

	testCases := []struct {
		name        string
		url         string
		wantTerm    string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "/api/products", "", 1, 10},
		{"explicit params", "/api/products?search=Back&page=3&perPage=5", "Back", 3, 5},
		{"invalid numbers fall back to defaults", "/api/products?page=abc&perPage=", "", 1, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reporter := &mockReporter{page: page}
			rec := doRequest(newTestServer(reporter, &mockIngester{}), tc.url)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantTerm, reporter.lastTerm)
			assert.Equal(t, tc.wantPage, reporter.lastPage)
			assert.Equal(t, tc.wantPerPage, reporter.lastPerPage)

			var resp core.ProductPage
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Products, 1)
			assert.Equal(t, int64(1), resp.Pagination.TotalCount)
		})
	}

	t.Run("service error returns 500", func(t *testing.T) {
		reporter := &mockReporter{err: errors.New("db down")}
		rec := doRequest(newTestServer(reporter, &mockIngester{}), "/api/products")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleStatistics_MonthOptional(t *testing.T) {
	reporter := &mockReporter{totals: core.MonthTotals{TotalSaleAmount: 200, TotalSoldItems: 1, TotalNotSoldItems: 1}}
	server := newTestServer(reporter, &mockIngester{})

	// Missing month is passed through blank; the service defaults it.
	rec := doRequest(server, "/api/statistics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", reporter.lastMonth)

	var resp core.MonthTotals
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 200.0, resp.TotalSaleAmount)
	assert.Equal(t, int64(1), resp.TotalSoldItems)

	rec = doRequest(server, "/api/statistics?month=07")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "07", reporter.lastMonth)
}

func TestHandlePriceRangeStatistics(t *testing.T) {
	t.Run("missing month is a client error", func(t *testing.T) {
		rec := doRequest(newTestServer(&mockReporter{}, &mockIngester{}), "/api/price-range-statistics")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bucket keys serialize in range order", func(t *testing.T) {
		reporter := &mockReporter{ranges: core.PriceRangeCounts{UpTo100: 1, UpTo200: 1}}
		rec := doRequest(newTestServer(reporter, &mockIngester{}), "/api/price-range-statistics?month=03")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]int64
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(1), resp["0-100"])
		assert.Equal(t, int64(1), resp["101-200"])
		assert.Equal(t, int64(0), resp["501-above"])
		assert.Len(t, resp, 6)
	})

	t.Run("storage error returns 500", func(t *testing.T) {
		reporter := &mockReporter{err: errors.New("db down")}
		rec := doRequest(newTestServer(reporter, &mockIngester{}), "/api/price-range-statistics?month=03")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleCategoryStatistics(t *testing.T) {
	t.Run("missing month is a client error", func(t *testing.T) {
		rec := doRequest(newTestServer(&mockReporter{}, &mockIngester{}), "/api/category-statistics")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns category array", func(t *testing.T) {
		reporter := &mockReporter{counts: []core.CategoryCount{
			{Category: "X", ItemCount: 1},
			{Category: "Y", ItemCount: 1},
		}}
		rec := doRequest(newTestServer(reporter, &mockIngester{}), "/api/category-statistics?month=03")

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []core.CategoryCount
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp, 2)
		assert.Equal(t, "X", resp[0].Category)
	})
}

func TestHandleCombinedStatistics(t *testing.T) {
	reporter := &mockReporter{combined: core.CombinedStats{
		Statistics:      core.MonthTotals{TotalSaleAmount: 200},
		PriceRangeStats: core.PriceRangeCounts{UpTo100: 1},
		CategoryStats:   []core.CategoryCount{{Category: "X", ItemCount: 1}},
	}}

	// Month is optional here, unlike the standalone histogram and category views.
	rec := doRequest(newTestServer(reporter, &mockIngester{}), "/api/combined-statistics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", reporter.lastMonth)

	var resp struct {
		Statistics      core.MonthTotals     `json:"statistics"`
		PriceRangeStats map[string]int64     `json:"priceRangeStatistics"`
		CategoryStats   []core.CategoryCount `json:"categoryStatistics"`
	}
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 200.0, resp.Statistics.TotalSaleAmount)
	assert.Equal(t, int64(1), resp.PriceRangeStats["0-100"])
	assert.Len(t, resp.CategoryStats, 1)
}

func TestHealthEndpoints(t *testing.T) {
	server := newTestServer(&mockReporter{}, &mockIngester{})

	rec := doRequest(server, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecurityHeaders(t *testing.T) {
	rec := doRequest(newTestServer(&mockReporter{}, &mockIngester{}), "/api/statistics")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
