package services

import (
	"context"
	"errors"
	"fmt"

	"salestats/internal/core"
)

// ErrMonthRequired is returned by the statistics views that do not fall
// back to a default month when the caller leaves it blank.
var ErrMonthRequired = errors.New("month parameter is required")

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// StatsStore is the read side of the product store.
type StatsStore interface {
	SearchProducts(ctx context.Context, term string, limit, offset int) ([]core.Product, int64, error)
	MonthTotals(ctx context.Context, month string) (core.MonthTotals, error)
	PriceRangeCounts(ctx context.Context, month string) (core.PriceRangeCounts, error)
	CategoryCounts(ctx context.Context, month string) ([]core.CategoryCount, error)
}

// ReportService answers the search and monthly statistics queries.
//
// Month handling is deliberately uneven to stay wire-compatible with the
// original API: Totals and Combined default a blank month to "03", while
// PriceRange and Categories reject it. A month with no matching rows (for
// example "13") is not an error, it just aggregates to zeros.
type ReportService struct {
	store StatsStore
}

func NewReportService(store StatsStore) *ReportService {
	return &ReportService{store: store}
}

// Search returns one page of products matching term, with pagination
// totals computed over the full match set. Page defaults to 1 and perPage
// to 10 when out of range; perPage has no upper bound.
func (s *ReportService) Search(ctx context.Context, term string, page, perPage int) (core.ProductPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	offset := (page - 1) * perPage
	products, total, err := s.store.SearchProducts(ctx, term, perPage, offset)
	if err != nil {
		return core.ProductPage{}, fmt.Errorf("search products: %w", err)
	}
	if products == nil {
		products = []core.Product{}
	}

	return core.ProductPage{
		Products: products,
		Pagination: core.Pagination{
			TotalCount:  total,
			TotalPages:  (total + int64(perPage) - 1) / int64(perPage),
			CurrentPage: page,
			PerPage:     perPage,
		},
	}, nil
}

// Totals returns the month's sale amount and sold/unsold counters. A blank
// month means March ("03").
func (s *ReportService) Totals(ctx context.Context, month string) (core.MonthTotals, error) {
	if month == "" {
		month = core.DefaultStatsMonth
	}
	t, err := s.store.MonthTotals(ctx, month)
	if err != nil {
		return core.MonthTotals{}, fmt.Errorf("month totals: %w", err)
	}
	return t, nil
}

// PriceRange returns the six-bucket price histogram. Month is required.
func (s *ReportService) PriceRange(ctx context.Context, month string) (core.PriceRangeCounts, error) {
	if month == "" {
		return core.PriceRangeCounts{}, ErrMonthRequired
	}
	c, err := s.store.PriceRangeCounts(ctx, month)
	if err != nil {
		return core.PriceRangeCounts{}, fmt.Errorf("price range counts: %w", err)
	}
	return c, nil
}

// Categories returns the per-category row counts. Month is required.
func (s *ReportService) Categories(ctx context.Context, month string) ([]core.CategoryCount, error) {
	if month == "" {
		return nil, ErrMonthRequired
	}
	counts, err := s.store.CategoryCounts(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	if counts == nil {
		counts = []core.CategoryCount{}
	}
	return counts, nil
}

// Combined bundles the three views for one month. Like Totals, a blank
// month means March.
func (s *ReportService) Combined(ctx context.Context, month string) (core.CombinedStats, error) {
	if month == "" {
		month = core.DefaultStatsMonth
	}

	totals, err := s.store.MonthTotals(ctx, month)
	if err != nil {
		return core.CombinedStats{}, fmt.Errorf("month totals: %w", err)
	}
	ranges, err := s.store.PriceRangeCounts(ctx, month)
	if err != nil {
		return core.CombinedStats{}, fmt.Errorf("price range counts: %w", err)
	}
	categories, err := s.store.CategoryCounts(ctx, month)
	if err != nil {
		return core.CombinedStats{}, fmt.Errorf("category counts: %w", err)
	}
	if categories == nil {
		categories = []core.CategoryCount{}
	}

	return core.CombinedStats{
		Statistics:      totals,
		PriceRangeStats: ranges,
		CategoryStats:   categories,
	}, nil
}
