package merch

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// EnsureSchema creates and seeds the products table, pricing the seed rows in
// the configured currency. Seeding is idempotent so restarts never duplicate
// rows or clobber price edits.
func EnsureSchema(ctx context.Context, db *sql.DB, currency string) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			price     NUMERIC(12,2) NOT NULL,
			currency  TEXT NOT NULL,
			image_url TEXT
		)`)
	if err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	for _, p := range seedProducts(currency) {
		_, err = db.ExecContext(ctx, `
			INSERT INTO products (id, name, price, currency, image_url)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.Price, p.Currency, p.ImageURL)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	return nil
}

// seedProducts is the storefront's launch catalog.
func seedProducts(currency string) []*Product {
	return []*Product{
		{ID: "shirt-1", Name: "Foundation T-Shirt", Price: 20.00, Currency: currency, ImageURL: "https://placehold.co/400x400?text=T-Shirt"},
		{ID: "mug-1", Name: "Ceramic Mug", Price: 12.50, Currency: currency, ImageURL: "https://placehold.co/400x400?text=Mug"},
		{ID: "tote-1", Name: "Canvas Tote", Price: 15.00, Currency: currency, ImageURL: "https://placehold.co/400x400?text=Tote"},
	}
}

func (r *postgresRepo) List(ctx context.Context) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price, currency, image_url FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p := &Product{}
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Currency, &imageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if imageURL.Valid {
			p.ImageURL = imageURL.String
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
