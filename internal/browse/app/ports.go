package app

import (
	cartapp "github.com/dwikikusuma/shopping-browse/internal/cart/app"
	catalogapp "github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	recentapp "github.com/dwikikusuma/shopping-browse/internal/recent/app"
)

// The browse service talks to its collaborators only through these contracts.
type (
	ProductSource = catalogapp.ProductSource
	CartStore     = cartapp.CartStore
	RecentStore   = recentapp.Store
)
