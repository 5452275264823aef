package domain

import catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"

// QuoteLine prices one cart line at the catalog's current price.
type QuoteLine struct {
	CartID    int64
	Product   catalog.Product
	Quantity  int
	LineTotal catalog.Money
}

// Quote is the priced cart in cart order. All lines share Total's currency.
type Quote struct {
	Lines []QuoteLine
	Total catalog.Money
}

// Units is the number of items across all lines.
func (q Quote) Units() int {
	n := 0
	for _, l := range q.Lines {
		n += l.Quantity
	}
	return n
}
