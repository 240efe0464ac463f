package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"beststore/internal/catalog"
	"beststore/internal/domain"
	"beststore/internal/sqlbuilder"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Latest(ctx context.Context, n int) ([]domain.Product, error)
	QueryProducts(ctx context.Context, spec catalog.Spec) ([]domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

var productColumns = []string{
	"id", "name", "brand", "category", "price", "description", "image_file_name", "created_at",
}

// sortColumns and fieldColumns are the only identifiers that reach SQL text
var sortColumns = map[catalog.Column]string{
	catalog.ColumnID:        "id",
	catalog.ColumnName:      "name",
	catalog.ColumnBrand:     "brand",
	catalog.ColumnCategory:  "category",
	catalog.ColumnPrice:     "price",
	catalog.ColumnCreatedAt: "created_at",
}

var fieldColumns = map[catalog.Field]string{
	catalog.FieldName:     "name",
	catalog.FieldBrand:    "brand",
	catalog.FieldCategory: "category",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, product *domain.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.Category,
		&product.Price,
		&product.Description,
		&product.ImageFileName,
		&product.CreatedAt,
	)
}

// Create inserts a product and fills in its generated id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, brand, category, price, description, image_file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Brand,
		product.Category,
		product.Price,
		product.Description,
		product.ImageFileName,
		product.CreatedAt,
	).Scan(&product.ID)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites the editable fields of a product. created_at is never touched.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, brand = $3, category = $4, price = $5,
		    description = $6, image_file_name = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.Category,
		product.Price,
		product.Description,
		product.ImageFileName,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return expectRow(result, ErrProductNotFound)
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectRow(result, ErrProductNotFound)
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query, args := sqlbuilder.From("products").
		Select(productColumns...).
		Where(sqlbuilder.Eq("id", id)).
		Build()

	product := &domain.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, args...), product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Latest returns the n most recently added products, newest first
func (r *productRepository) Latest(ctx context.Context, n int) ([]domain.Product, error) {
	query, args := sqlbuilder.From("products").
		Select(productColumns...).
		OrderBy("id", sqlbuilder.Desc).
		Limit(n).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// QueryProducts returns one page of products matching spec and the total
// number of matches. Both reads share one repeatable-read snapshot.
func (r *productRepository) QueryProducts(ctx context.Context, spec catalog.Spec) ([]domain.Product, int, error) {
	if err := spec.CheckWindow(); err != nil {
		return nil, 0, err
	}

	base := sqlbuilder.From("products")
	for _, predicate := range spec.Predicates {
		condition, err := predicateCondition(predicate)
		if err != nil {
			return nil, 0, err
		}
		base = base.Where(condition)
	}

	column, ok := sortColumns[spec.Order.Column]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported sort column %q", spec.Order.Column)
	}
	direction := sqlbuilder.Desc
	if spec.Order.Direction == catalog.Ascending {
		direction = sqlbuilder.Asc
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin listing transaction: %w", err)
	}
	defer tx.Rollback()

	countQuery, countArgs := base.Count().Build()
	var total int
	if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	if total == 0 || spec.Skip >= total {
		return []domain.Product{}, total, tx.Commit()
	}

	pageQuery, pageArgs := base.
		Select(productColumns...).
		OrderBy(column, direction).
		Limit(spec.Take).
		Offset(spec.Skip).
		Build()

	rows, err := tx.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := collectProducts(rows)
	rows.Close()
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit listing transaction: %w", err)
	}

	return products, total, nil
}

func predicateCondition(predicate catalog.Predicate) (sqlbuilder.Condition, error) {
	fields := make([]string, 0, len(predicate.Fields))
	for _, field := range predicate.Fields {
		column, ok := fieldColumns[field]
		if !ok {
			return nil, fmt.Errorf("unsupported predicate field %q", field)
		}
		fields = append(fields, column)
	}
	return sqlbuilder.ContainsFold(fields, predicate.Text), nil
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
