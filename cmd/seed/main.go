// seed carga un catálogo inicial (ubicaciones, productos, recetas y mínimos/máximos de reposición)
// desde un XML.
//
// Uso: go run ./cmd/seed -tenant <uuid> [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual. Todo se inserta en una sola transacción.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
)

func main() {
	tenantID := flag.String("tenant", "", "empresa dueña del catálogo (uuid)")
	flag.Parse()
	if *tenantID == "" {
		fmt.Fprintln(os.Stderr, "falta -tenant")
		os.Exit(2)
	}
	xmlPath := "catalogo.xml"
	if flag.NArg() > 0 {
		xmlPath = flag.Arg(0)
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := parseCatalog(f, *tenantID, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-seed")
	if err != nil {
		fmt.Fprintf(os.Stderr, "PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return load(ctx, tx, cat)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar catálogo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cargado %s: %d ubicaciones, %d productos, %d insumos, %d saldos\n",
		xmlPath, len(cat.Locations), len(cat.Products), len(cat.Ingredients), len(cat.Balances))
}

func load(ctx context.Context, q postgres.Querier, cat *catalog) error {
	locations := postgres.NewLocationRepository(q)
	products := postgres.NewProductRepository(q)
	balances := postgres.NewBalanceRepository(q)

	for i := range cat.Locations {
		if err := locations.Create(ctx, &cat.Locations[i]); err != nil {
			return fmt.Errorf("ubicación %s: %w", cat.Locations[i].Name, err)
		}
	}
	for i := range cat.Products {
		if err := products.Create(ctx, &cat.Products[i]); err != nil {
			return fmt.Errorf("producto %s: %w", cat.Products[i].SKU, err)
		}
	}
	for _, ing := range cat.Ingredients {
		if err := products.AddIngredient(ctx, ing); err != nil {
			return fmt.Errorf("insumo: %w", err)
		}
	}
	for i := range cat.Balances {
		if err := balances.Create(ctx, &cat.Balances[i]); err != nil {
			return fmt.Errorf("saldo: %w", err)
		}
	}
	return nil
}
