package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed product repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a product.
func (r *PostgresRepository) Create(ctx context.Context, p Product) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO products (id, name, type, base_price, description, features, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.Type, p.BasePrice, p.Description, features, p.IsActive,
		p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

const productColumns = `id, name, type, base_price, description, features, is_active, created_at, updated_at`

// ListActive returns all products that are still offered.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindActive fetches an offered product by id.
func (r *PostgresRepository) FindActive(ctx context.Context, id string) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active = TRUE`, id)
	return scanProduct(row)
}

// Find fetches a product regardless of its active flag.
func (r *PostgresRepository) Find(ctx context.Context, id string) (Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// Update stores the mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, p Product) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE products SET name = $1, type = $2, base_price = $3, description = $4, features = $5, is_active = $6, updated_at = $7
        WHERE id = $8`,
		p.Name, p.Type, p.BasePrice, p.Description, features, p.IsActive, p.UpdatedAt.UTC(), p.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p         Product
		features  []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.BasePrice, &p.Description, &features, &p.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return Product{}, err
		}
	}
	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return p, nil
}
