package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

type catalogoXML struct {
	Ubicaciones []ubicacionXML `xml:"ubicacion"`
	Productos   []productoXML  `xml:"producto"`
}

type ubicacionXML struct {
	Codigo    string `xml:"codigo,attr"`
	Nombre    string `xml:"nombre,attr"`
	Direccion string `xml:"direccion,attr"`
}

type productoXML struct {
	SKU           string      `xml:"sku,attr"`
	Nombre        string      `xml:"nombre,attr"`
	Costo         string      `xml:"costo,attr"`
	Manufacturado bool        `xml:"manufacturado,attr"`
	Insumos       []insumoXML `xml:"insumo"`
	Saldos        []saldoXML  `xml:"saldo"`
}

type insumoXML struct {
	SKU      string `xml:"sku,attr"`
	Cantidad string `xml:"cantidad,attr"`
}

// saldoXML mínimos y máximos de reposición por ubicación; el stock arranca en cero.
type saldoXML struct {
	Ubicacion string `xml:"ubicacion,attr"`
	Minimo    string `xml:"minimo,attr"`
	Maximo    string `xml:"maximo,attr"`
}

// catalog entidades listas para insertar, con IDs ya asignados.
type catalog struct {
	Locations   []entity.Location
	Products    []entity.Product
	Ingredients []entity.ProductIngredient
	Balances    []entity.Balance
}

// parseCatalog lee el XML del catálogo. Acepta archivos en ISO-8859-1 además de UTF-8.
func parseCatalog(r io.Reader, tenantID string, now time.Time) (*catalog, error) {
	var doc catalogoXML
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decodificar catálogo: %w", err)
	}

	out := &catalog{}
	locByCode := make(map[string]string, len(doc.Ubicaciones))
	for _, u := range doc.Ubicaciones {
		code := strings.TrimSpace(u.Codigo)
		if code == "" || strings.TrimSpace(u.Nombre) == "" {
			return nil, fmt.Errorf("ubicación sin código o nombre")
		}
		if _, dup := locByCode[code]; dup {
			return nil, fmt.Errorf("ubicación %q repetida", code)
		}
		id := uuid.New().String()
		locByCode[code] = id
		out.Locations = append(out.Locations, entity.Location{
			ID:        id,
			TenantID:  tenantID,
			Name:      strings.TrimSpace(u.Nombre),
			Address:   strings.TrimSpace(u.Direccion),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	prodBySKU := make(map[string]string, len(doc.Productos))
	for _, p := range doc.Productos {
		sku := strings.TrimSpace(p.SKU)
		if sku == "" || strings.TrimSpace(p.Nombre) == "" {
			return nil, fmt.Errorf("producto sin sku o nombre")
		}
		if _, dup := prodBySKU[sku]; dup {
			return nil, fmt.Errorf("sku %q repetido", sku)
		}
		cost, err := optionalDecimal(p.Costo)
		if err != nil {
			return nil, fmt.Errorf("producto %s: costo: %w", sku, err)
		}
		id := uuid.New().String()
		prodBySKU[sku] = id
		out.Products = append(out.Products, entity.Product{
			ID:           id,
			TenantID:     tenantID,
			SKU:          sku,
			Name:         strings.TrimSpace(p.Nombre),
			Cost:         cost,
			Manufactured: p.Manufacturado,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	// Recetas y saldos después: un insumo puede declararse más abajo que el terminado.
	for _, p := range doc.Productos {
		pid := prodBySKU[strings.TrimSpace(p.SKU)]
		if len(p.Insumos) > 0 && !p.Manufacturado {
			return nil, fmt.Errorf("producto %s tiene insumos pero no es manufacturado", p.SKU)
		}
		for _, ins := range p.Insumos {
			iid, ok := prodBySKU[strings.TrimSpace(ins.SKU)]
			if !ok {
				return nil, fmt.Errorf("producto %s: insumo %q no existe", p.SKU, ins.SKU)
			}
			if iid == pid {
				return nil, fmt.Errorf("producto %s: no puede ser insumo de sí mismo", p.SKU)
			}
			qty, err := decimal.NewFromString(strings.TrimSpace(ins.Cantidad))
			if err != nil || !qty.IsPositive() {
				return nil, fmt.Errorf("producto %s: cantidad de insumo %q inválida", p.SKU, ins.Cantidad)
			}
			out.Ingredients = append(out.Ingredients, entity.ProductIngredient{ProductID: pid, IngredientID: iid, QuantityPerUnit: qty})
		}
		for _, s := range p.Saldos {
			lid, ok := locByCode[strings.TrimSpace(s.Ubicacion)]
			if !ok {
				return nil, fmt.Errorf("producto %s: ubicación %q no existe", p.SKU, s.Ubicacion)
			}
			minimum, err := optionalDecimal(s.Minimo)
			if err != nil {
				return nil, fmt.Errorf("producto %s: mínimo: %w", p.SKU, err)
			}
			maximum, err := optionalDecimal(s.Maximo)
			if err != nil {
				return nil, fmt.Errorf("producto %s: máximo: %w", p.SKU, err)
			}
			if maximum.IsPositive() && maximum.LessThan(minimum) {
				return nil, fmt.Errorf("producto %s: máximo menor que mínimo", p.SKU)
			}
			out.Balances = append(out.Balances, entity.Balance{
				TenantID:     tenantID,
				ProductID:    pid,
				LocationID:   lid,
				CurrentStock: decimal.Zero,
				MinimumStock: minimum,
				MaximumStock: maximum,
				AverageCost:  decimal.Zero,
				Active:       true,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}
	return out, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor negativo %s", s)
	}
	return d, nil
}
