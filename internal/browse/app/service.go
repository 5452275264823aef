// Package app keeps the product list a shopper browses in sync with the cart
// and the recently viewed history.
//
// Every operation returns immediately. The work runs in the background and
// its results surface on the observable channels and the event stream.
package app

import (
	"context"
	"log/slog"
	"sync"

	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	recent "github.com/dwikikusuma/shopping-browse/internal/recent/domain"
	"github.com/dwikikusuma/shopping-browse/pkg/observable"
)

const defaultEventBuffer = 64

type Options struct {
	Logger *slog.Logger
	// EventBuffer is the capacity of the event channel. Events emitted while
	// it is full are dropped and logged.
	EventBuffer int
}

type Service struct {
	products ProductSource
	cart     CartStore
	recent   RecentStore
	log      *slog.Logger

	items       *observable.Value[[]Item]
	recentViews *observable.Value[[]recent.View]
	badge       *observable.Value[int]
	events      chan ScreenEvent

	// gen changes on every LoadInitial; page results from an older
	// generation are discarded. moreGen is the generation of the LoadMore in
	// flight, zero when there is none.
	mu      sync.Mutex
	gen     uint64
	moreGen uint64

	productTurns keyedQueue
	recentMu     sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	life   sync.RWMutex
	closed bool
}

func NewService(products ProductSource, cartStore CartStore, recentStore RecentStore, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	buf := opts.EventBuffer
	if buf <= 0 {
		buf = defaultEventBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		products:    products,
		cart:        cartStore,
		recent:      recentStore,
		log:         log.With("component", "browse"),
		items:       observable.New([]Item{}),
		recentViews: observable.New([]recent.View{}),
		badge:       &observable.Value[int]{},
		events:      make(chan ScreenEvent, buf),
		gen:         1,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Products is the cart-annotated product list.
func (s *Service) Products() observable.Reader[[]Item] { return s.items }

// RecentViews is the recently viewed history, most recent first.
func (s *Service) RecentViews() observable.Reader[[]recent.View] { return s.recentViews }

// BadgeCount is the number of cart lines as last read from the cart store.
func (s *Service) BadgeCount() observable.Reader[int] { return s.badge }

// Events delivers one-shot screen events. The channel is closed by Close.
func (s *Service) Events() <-chan ScreenEvent { return s.events }

// LoadInitial clears the list and loads the first catalog page. A failed
// fetch leaves the list empty and emits nothing further; call again to retry.
func (s *Service) LoadInitial() {
	s.life.RLock()
	if s.closed {
		s.life.RUnlock()
		return
	}
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.items.Set([]Item{})
	s.mu.Unlock()
	s.life.RUnlock()

	s.emit(ShowLoading{})
	s.spawn(func(ctx context.Context) {
		products, err := s.products.FetchFirstPage(ctx)
		if err != nil {
			s.log.Warn("load first page failed", slog.Any("err", err))
			return
		}
		if s.annotate(ctx, gen, products) {
			s.emit(HideLoading{})
		}
	})
}

// LoadMore appends the page after the last loaded product. A failure leaves
// the list untouched and emits LoadMoreExhausted. Calls made while a page of
// the current list is still loading are dropped.
func (s *Service) LoadMore() {
	s.mu.Lock()
	gen := s.gen
	if s.moreGen == gen {
		s.mu.Unlock()
		s.log.Debug("load more already in flight")
		return
	}
	s.moreGen = gen
	s.mu.Unlock()
	current, _ := s.items.Get()
	cursor := cursorOf(current)

	if !s.spawn(func(ctx context.Context) {
		defer s.loadMoreDone(gen)

		next, err := s.products.FetchNextPage(ctx, cursor)
		if err != nil {
			if ctx.Err() != nil || !s.current(gen) {
				return
			}
			s.log.Info("load more exhausted", slog.Int64("after", cursor), slog.Any("err", err))
			s.emit(LoadMoreExhausted{Cause: err})
			return
		}

		existing, _ := s.items.Get()
		s.annotate(ctx, gen, append(productsOf(existing), next...))
	}) {
		s.loadMoreDone(gen)
	}
}

func (s *Service) loadMoreDone(gen uint64) {
	s.mu.Lock()
	if s.moreGen == gen {
		s.moreGen = 0
	}
	s.mu.Unlock()
}

// ChangeQuantity moves the cart state of productID towards count. A product
// without a cart line is added with quantity 1 whatever count is, count 0
// removes the line, anything else sets the quantity. Calls for the same
// product run one at a time in call order, each seeing the result of the one
// before.
func (s *Service) ChangeQuantity(productID int64, count int) {
	if count < 0 {
		s.log.Warn("negative quantity ignored", slog.Int64("product_id", productID), slog.Int("count", count))
		return
	}

	prev, done := s.productTurns.Claim(productID)
	if !s.spawn(func(ctx context.Context) {
		defer done()
		if prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}

		items, _ := s.items.Get()
		item, ok := findItem(items, productID)
		if !ok {
			return
		}

		switch {
		case !item.InCart() && count == 0:
			return
		case !item.InCart():
			cartID, err := s.cart.Add(ctx, productID)
			if err != nil {
				s.log.Warn("add to cart failed", slog.Int64("product_id", productID), slog.Any("err", err))
				return
			}
			s.updateItem(ctx, productID, func(it Item) Item {
				it.CartID = cartID
				it.Quantity = 1
				return it
			})
		case count == 0:
			if err := s.cart.Remove(ctx, item.CartID); err != nil {
				s.log.Warn("remove from cart failed",
					slog.Int64("product_id", productID), slog.Int64("cart_id", item.CartID), slog.Any("err", err))
				return
			}
			s.updateItem(ctx, productID, func(it Item) Item {
				it.CartID = cart.NoCartID
				it.Quantity = 0
				return it
			})
		default:
			if err := s.cart.SetQuantity(ctx, item.CartID, count); err != nil {
				s.log.Warn("set cart quantity failed",
					slog.Int64("product_id", productID), slog.Int64("cart_id", item.CartID),
					slog.Int("count", count), slog.Any("err", err))
				return
			}
			s.updateItem(ctx, productID, func(it Item) Item {
				it.Quantity = count
				return it
			})
		}

		s.refreshBadge(ctx)
	}) {
		done()
	}
}

// OpenProductDetail records productID as the most recent view and emits
// NavigateToProductDetail with the previous history head.
func (s *Service) OpenProductDetail(productID int64) {
	s.spawn(func(ctx context.Context) { s.openDetail(ctx, productID, "catalog") })
}

// OpenRecentProductDetail is OpenProductDetail entered from the history list.
func (s *Service) OpenRecentProductDetail(productID int64) {
	s.spawn(func(ctx context.Context) { s.openDetail(ctx, productID, "recent") })
}

// LoadRecent publishes the recently viewed history.
func (s *Service) LoadRecent() {
	s.spawn(s.loadRecent)
}

// RefreshBadge re-reads the cart line count.
func (s *Service) RefreshBadge() {
	s.spawn(s.refreshBadge)
}

func (s *Service) NavigateToCart() {
	s.emit(NavigateToCart{})
}

// ResetCache asks the product source to drop cached pages. The list itself
// is replaced on the next LoadInitial.
func (s *Service) ResetCache() {
	s.products.ResetCache()
}

// Wait blocks until every operation started so far has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels outstanding requests, waits for them to settle and closes the
// event channel. Results that arrive after Close are discarded.
func (s *Service) Close() {
	s.life.Lock()
	if s.closed {
		s.life.Unlock()
		return
	}
	s.closed = true
	s.life.Unlock()

	s.cancel()
	s.wg.Wait()
	close(s.events)
}

func (s *Service) openDetail(ctx context.Context, productID int64, from string) {
	product, err := s.products.FetchByID(ctx, productID)
	if err != nil {
		s.log.Warn("fetch product failed", slog.Int64("product_id", productID), slog.String("from", from), slog.Any("err", err))
		return
	}

	// Capture and record under one lock so two opens cannot both see the
	// same previous head.
	s.recentMu.Lock()
	var previous *recent.View
	views, err := s.recent.GetAll(ctx)
	if err != nil {
		s.log.Warn("read recent views failed", slog.Any("err", err))
	} else if len(views) > 0 {
		head := views[0]
		previous = &head
	}
	if err := s.recent.Record(ctx, product); err != nil {
		s.log.Warn("record recent view failed", slog.Int64("product_id", productID), slog.Any("err", err))
	}
	s.recentMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	s.emit(NavigateToProductDetail{Product: product, PreviousMostRecent: previous})
	s.loadRecent(ctx)
}

func (s *Service) loadRecent(ctx context.Context) {
	views, err := s.recent.GetAll(ctx)
	if err != nil {
		s.log.Warn("load recent views failed", slog.Any("err", err))
		return
	}
	if views == nil {
		views = []recent.View{}
	}
	if ctx.Err() == nil {
		s.recentViews.Set(views)
	}
}

// annotate joins products with the cart and publishes the result if gen is
// still current. It reports whether the list was published.
func (s *Service) annotate(ctx context.Context, gen uint64, products []catalog.Product) bool {
	lines, err := s.cart.GetAll(ctx)
	if err != nil {
		s.log.Warn("read cart failed", slog.Any("err", err))
		return false
	}
	merged := mergeCart(products, lines)

	s.mu.Lock()
	if ctx.Err() != nil || gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.items.Set(merged)
	s.mu.Unlock()

	s.refreshBadge(ctx)
	return true
}

func (s *Service) updateItem(ctx context.Context, productID int64, fn func(Item) Item) {
	if ctx.Err() != nil {
		return
	}
	s.items.Update(func(cur []Item) []Item {
		return replaceItem(cur, productID, fn)
	})
}

// refreshBadge always asks the store; the count is never adjusted locally.
func (s *Service) refreshBadge(ctx context.Context) {
	n, err := s.cart.Count(ctx)
	if err != nil {
		s.log.Warn("read cart count failed", slog.Any("err", err))
		return
	}
	if ctx.Err() == nil {
		s.badge.Set(n)
	}
}

func (s *Service) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// spawn runs fn in the background unless the service is closed.
func (s *Service) spawn(fn func(ctx context.Context)) bool {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

func (s *Service) emit(ev ScreenEvent) {
	s.life.RLock()
	defer s.life.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.log.Warn("event dropped, buffer full", slog.String("event", eventName(ev)))
	}
}

func eventName(ev ScreenEvent) string {
	switch ev.(type) {
	case ShowLoading:
		return "show_loading"
	case HideLoading:
		return "hide_loading"
	case NavigateToCart:
		return "navigate_to_cart"
	case NavigateToProductDetail:
		return "navigate_to_product_detail"
	case LoadMoreExhausted:
		return "load_more_exhausted"
	default:
		return "unknown"
	}
}
