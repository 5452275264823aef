package domain

import (
	"time"

	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
)

// View is one entry of the recently viewed history. Rank 0 is the most recent.
type View struct {
	Product  catalog.Product
	Rank     int
	ViewedAt time.Time
}
