package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"salestats/internal/core"
	"salestats/internal/services"
)

// Reporter answers search and statistics queries.
type Reporter interface {
	Search(ctx context.Context, term string, page, perPage int) (core.ProductPage, error)
	Totals(ctx context.Context, month string) (core.MonthTotals, error)
	PriceRange(ctx context.Context, month string) (core.PriceRangeCounts, error)
	Categories(ctx context.Context, month string) ([]core.CategoryCount, error)
	Combined(ctx context.Context, month string) (core.CombinedStats, error)
}

// Ingester reloads the store from the remote feed.
type Ingester interface {
	Reload(ctx context.Context) (int, error)
}

func (s *Server) handleInitDB(w http.ResponseWriter, r *http.Request) {
	inserted, err := s.ingester.Reload(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Database initialization failed", "error", err, "inserted", inserted)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Database initialized with %d records", inserted)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "perPage", 10)

	result, err := s.reports.Search(r.Context(), term, page, perPage)
	if err != nil {
		slog.ErrorContext(r.Context(), "Product search failed", "error", err, "search", term)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, result)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	totals, err := s.reports.Totals(r.Context(), queryMonth(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Statistics query failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, totals)
}

func (s *Server) handlePriceRangeStatistics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.reports.PriceRange(r.Context(), queryMonth(r))
	if err != nil {
		writeStatsError(w, r, "Price range query failed", err)
		return
	}

	writeJSON(w, r, counts)
}

func (s *Server) handleCategoryStatistics(w http.ResponseWriter, r *http.Request) {
	counts, err := s.reports.Categories(r.Context(), queryMonth(r))
	if err != nil {
		writeStatsError(w, r, "Category query failed", err)
		return
	}

	writeJSON(w, r, counts)
}

func (s *Server) handleCombinedStatistics(w http.ResponseWriter, r *http.Request) {
	combined, err := s.reports.Combined(r.Context(), queryMonth(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "Combined statistics query failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, combined)
}

// writeStatsError distinguishes the missing-month client error from
// everything else.
func writeStatsError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, services.ErrMonthRequired) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.ErrorContext(r.Context(), msg, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Response encoding failed", "error", err, "url", r.URL.Path)
	}
}

func queryMonth(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("month"))
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}
