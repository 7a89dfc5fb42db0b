package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salestats/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the products table: schema creation, inserts and
// every aggregate query the reporting API needs. All values travel as bound
// parameters; nothing is ever interpolated into SQL text.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertProduct appends one row and returns the assigned id.
func (r *SQLiteRepository) InsertProduct(ctx context.Context, p core.Product) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (title, description, price, category, image, sold, date_of_sale)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.Price, p.Category, p.Image, boolToInt(p.Sold), p.DateOfSale)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.DebugContext(ctx, "Product inserted", "id", id, "title", p.Title, "price", p.Price)
	return id, nil
}

// SearchProducts returns one page of rows whose title, description or
// textual price contains term, plus the unpaginated match count. Rows come
// back in natural rowid order, which for this append-only table is
// insertion order. An empty term matches every row.
func (r *SQLiteRepository) SearchProducts(ctx context.Context, term string, limit, offset int) ([]core.Product, int64, error) {
	where := ""
	args := []any{}
	if term != "" {
		// instr keeps the match case-sensitive, unlike SQLite's LIKE.
		where = ` WHERE instr(title, ?) > 0 OR instr(description, ?) > 0 OR instr(CAST(price AS TEXT), ?) > 0`
		args = append(args, term, term, term)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count matching products: %w", err)
	}

	query := `SELECT id, title, description, price, category, image, sold, date_of_sale FROM products` +
		where + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		var p core.Product
		var sold int
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.Image, &sold, &p.DateOfSale); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		p.Sold = sold == 1
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, total, nil
}

// MonthTotals aggregates one two-digit month across all years. The sale
// amount sums every matching row regardless of the sold flag; only the two
// counters split sold from unsold.
func (r *SQLiteRepository) MonthTotals(ctx context.Context, month string) (core.MonthTotals, error) {
	var t core.MonthTotals
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price), 0),
		        COALESCE(SUM(CASE WHEN sold = 1 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN sold = 0 THEN 1 ELSE 0 END), 0)
		 FROM products
		 WHERE strftime('%m', date_of_sale) = ?`,
		month).Scan(&t.TotalSaleAmount, &t.TotalSoldItems, &t.TotalNotSoldItems)
	if err != nil {
		return core.MonthTotals{}, fmt.Errorf("query month totals: %w", err)
	}
	return t, nil
}

// PriceRangeCounts counts matching rows per price bucket in a single pass.
// Bucket edges sit on the integer boundaries of the published labels, so
// every price lands in exactly one bucket.
func (r *SQLiteRepository) PriceRangeCounts(ctx context.Context, month string) (core.PriceRangeCounts, error) {
	var c core.PriceRangeCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN price <= 100 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN price > 100 AND price <= 200 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN price > 200 AND price <= 300 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN price > 300 AND price <= 400 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN price > 400 AND price <= 500 THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN price > 500 THEN 1 ELSE 0 END), 0)
		 FROM products
		 WHERE strftime('%m', date_of_sale) = ?`,
		month).Scan(&c.UpTo100, &c.UpTo200, &c.UpTo300, &c.UpTo400, &c.UpTo500, &c.Above500)
	if err != nil {
		return core.PriceRangeCounts{}, fmt.Errorf("query price range counts: %w", err)
	}
	return c, nil
}

// CategoryCounts returns one row per distinct category among rows matching
// the month filter.
func (r *SQLiteRepository) CategoryCounts(ctx context.Context, month string) ([]core.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*)
		 FROM products
		 WHERE strftime('%m', date_of_sale) = ?
		 GROUP BY category`,
		month)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var counts []core.CategoryCount
	for rows.Next() {
		var c core.CategoryCount
		if err := rows.Scan(&c.Category, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return counts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
