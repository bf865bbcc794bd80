package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/domain"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
	"github.com/jhoicas/Inventario-kardex/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura de productos y recetas sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto. Lo usa la carga inicial del catálogo.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, sku, name, cost, manufactured, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.TenantID, p.SKU, p.Name, p.Cost, p.Manufactured, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, tenant_id, sku, name, cost, manufactured, active, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Cost, &p.Manufactured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// AddIngredient agrega (o actualiza) un insumo a la receta del producto.
func (r *ProductRepo) AddIngredient(ctx context.Context, ing entity.ProductIngredient) error {
	query := `
		INSERT INTO product_ingredients (product_id, ingredient_id, quantity_per_unit)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, ingredient_id) DO UPDATE SET quantity_per_unit = EXCLUDED.quantity_per_unit`
	if _, err := r.q.Exec(ctx, query, ing.ProductID, ing.IngredientID, ing.QuantityPerUnit); err != nil {
		return fmt.Errorf("add ingredient: %w", mapError(err))
	}
	return nil
}

// ListIngredients receta del producto ordenada por insumo.
func (r *ProductRepo) ListIngredients(ctx context.Context, productID string) ([]entity.ProductIngredient, error) {
	query := `
		SELECT product_id, ingredient_id, quantity_per_unit
		FROM product_ingredients
		WHERE product_id = $1
		ORDER BY ingredient_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductIngredient
	for rows.Next() {
		var ing entity.ProductIngredient
		if err := rows.Scan(&ing.ProductID, &ing.IngredientID, &ing.QuantityPerUnit); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}
