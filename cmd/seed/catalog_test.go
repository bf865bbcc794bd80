package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "00000000-0000-0000-0000-0000000000aa"

func TestParseCatalog(t *testing.T) {
	src := `<?xml version="1.0" encoding="UTF-8"?>
<catalogo>
  <ubicacion codigo="B1" nombre="Bodega principal" direccion="Calle 1"/>
  <producto sku="PAN" nombre="Pan" manufacturado="true">
    <insumo sku="HAR" cantidad="0.25"/>
    <saldo ubicacion="B1" minimo="10" maximo="40"/>
  </producto>
  <producto sku="HAR" nombre="Harina" costo="3200"/>
</catalogo>`

	cat, err := parseCatalog(strings.NewReader(src), tenant, time.Now())
	require.NoError(t, err)
	require.Len(t, cat.Locations, 1)
	require.Len(t, cat.Products, 2)
	require.Len(t, cat.Ingredients, 1)
	require.Len(t, cat.Balances, 1)

	pan, harina := cat.Products[0], cat.Products[1]
	assert.True(t, pan.Manufactured)
	assert.Equal(t, "3200", harina.Cost.String())
	assert.Equal(t, pan.ID, cat.Ingredients[0].ProductID)
	assert.Equal(t, harina.ID, cat.Ingredients[0].IngredientID)
	assert.Equal(t, "0.25", cat.Ingredients[0].QuantityPerUnit.String())

	b := cat.Balances[0]
	assert.Equal(t, cat.Locations[0].ID, b.LocationID)
	assert.True(t, b.CurrentStock.IsZero())
	assert.Equal(t, "40", b.MaximumStock.String())
	assert.Equal(t, tenant, b.TenantID)
}

func TestParseCatalog_Latin1(t *testing.T) {
	// "Azúcar" en ISO-8859-1
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><catalogo><producto sku=\"AZ\" nombre=\"Az\xfacar\"/></catalogo>"

	cat, err := parseCatalog(strings.NewReader(src), tenant, time.Now())
	require.NoError(t, err)
	require.Len(t, cat.Products, 1)
	assert.Equal(t, "Azúcar", cat.Products[0].Name)
}

func TestParseCatalog_Errores(t *testing.T) {
	cases := map[string]string{
		"sku repetido":           `<catalogo><producto sku="A" nombre="a"/><producto sku="A" nombre="b"/></catalogo>`,
		"insumo inexistente":     `<catalogo><producto sku="A" nombre="a" manufacturado="true"><insumo sku="X" cantidad="1"/></producto></catalogo>`,
		"insumo sin manufactura": `<catalogo><producto sku="B" nombre="b"/><producto sku="A" nombre="a"><insumo sku="B" cantidad="1"/></producto></catalogo>`,
		"autoreferencia":         `<catalogo><producto sku="A" nombre="a" manufacturado="true"><insumo sku="A" cantidad="1"/></producto></catalogo>`,
		"cantidad cero":          `<catalogo><producto sku="B" nombre="b"/><producto sku="A" nombre="a" manufacturado="true"><insumo sku="B" cantidad="0"/></producto></catalogo>`,
		"ubicación inexistente":  `<catalogo><producto sku="A" nombre="a"><saldo ubicacion="Z" minimo="1"/></producto></catalogo>`,
		"máximo menor":           `<catalogo><ubicacion codigo="B1" nombre="b"/><producto sku="A" nombre="a"><saldo ubicacion="B1" minimo="5" maximo="2"/></producto></catalogo>`,
		"costo negativo":         `<catalogo><producto sku="A" nombre="a" costo="-1"/></catalogo>`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseCatalog(strings.NewReader(src), tenant, time.Now())
			assert.Error(t, err)
		})
	}
}
