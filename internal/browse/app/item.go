package app

import (
	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

// Item is a catalog product annotated with its cart state. Items are values:
// every change publishes a new list instead of mutating a shared one.
type Item struct {
	Product  catalog.Product
	CartID   int64
	Quantity int
}

// InCart reports whether the product has a cart line.
func (i Item) InCart() bool {
	return i.CartID != cart.NoCartID
}

// mergeCart joins products with cart lines by product id, keeping product
// order. Products without a line get cart.NoCartID and quantity 0.
func mergeCart(products []catalog.Product, lines []cart.CartLine) []Item {
	byProduct := make(map[int64]cart.CartLine, len(lines))
	for _, l := range lines {
		byProduct[l.ProductID] = l
	}

	items := make([]Item, 0, len(products))
	for _, p := range products {
		item := Item{Product: p, CartID: cart.NoCartID}
		if l, ok := byProduct[p.ID]; ok {
			item.CartID = l.CartID
			item.Quantity = l.Quantity
		}
		items = append(items, item)
	}
	return items
}

func productsOf(items []Item) []catalog.Product {
	out := make([]catalog.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.Product)
	}
	return out
}

// cursorOf is the id of the last loaded product, 0 for an empty list.
func cursorOf(items []Item) int64 {
	if len(items) == 0 {
		return 0
	}
	return items[len(items)-1].Product.ID
}

func findItem(items []Item, productID int64) (Item, bool) {
	for _, it := range items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return Item{}, false
}

// replaceItem returns a copy of items with fn applied to the item for
// productID. items is returned unchanged when the product is not present.
func replaceItem(items []Item, productID int64, fn func(Item) Item) []Item {
	for i, it := range items {
		if it.Product.ID != productID {
			continue
		}
		out := make([]Item, len(items))
		copy(out, items)
		out[i] = fn(it)
		return out
	}
	return items
}
