package repository

import (
	"context"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// ProductRepository consulta de productos y recetas (los administra la capa CRUD).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListIngredients(ctx context.Context, productID string) ([]entity.ProductIngredient, error)
}

// LocationRepository consulta de ubicaciones.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
