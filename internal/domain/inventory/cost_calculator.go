package inventory

import "github.com/shopspring/decimal"

// EntryAverage costo promedio del saldo después de una entrada:
// (stock·promedio + cantidad·costo) / (stock + cantidad). Un saldo que queda en cero vale cero.
func EntryAverage(stock, average, qty, unitCost decimal.Decimal) decimal.Decimal {
	total := stock.Add(qty)
	if !total.IsPositive() {
		return decimal.Zero
	}
	return stock.Mul(average).Add(qty.Mul(unitCost)).Div(total)
}

// ReverseEntryCost deshace EntryAverage: quita del saldo una entrada previa con su propio costo.
// (stock·promedio − cantidad·costo) / (stock − cantidad). Si el saldo queda en cero se conserva
// el promedio vigente para la próxima salida; nunca devuelve un costo negativo.
func ReverseEntryCost(stock, average, qty, unitCost decimal.Decimal) decimal.Decimal {
	remaining := stock.Sub(qty)
	if !remaining.IsPositive() {
		return average
	}
	value := stock.Mul(average).Sub(qty.Mul(unitCost))
	if value.IsNegative() {
		return decimal.Zero
	}
	return value.Div(remaining)
}
