package app

import (
	"errors"

	catalogapp "github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	recent "github.com/dwikikusuma/shopping-browse/internal/recent/domain"
)

// ScreenEvent is a one-shot notification for the presentation layer. Each
// event is delivered at most once on Service.Events.
type ScreenEvent interface {
	screenEvent()
}

type ShowLoading struct{}

type HideLoading struct{}

type NavigateToCart struct{}

// NavigateToProductDetail carries the history head as it was before this
// view was recorded, nil when the history was empty.
type NavigateToProductDetail struct {
	Product            catalog.Product
	PreviousMostRecent *recent.View
}

// LoadMoreExhausted tells the caller to stop offering further pages.
type LoadMoreExhausted struct {
	Cause error
}

// EndOfCatalog separates a drained catalog from a failed request.
func (e LoadMoreExhausted) EndOfCatalog() bool {
	return errors.Is(e.Cause, catalogapp.ErrEndOfCatalog)
}

func (ShowLoading) screenEvent()             {}
func (HideLoading) screenEvent()             {}
func (NavigateToCart) screenEvent()          {}
func (NavigateToProductDetail) screenEvent() {}
func (LoadMoreExhausted) screenEvent()       {}
