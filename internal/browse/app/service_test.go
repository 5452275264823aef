package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	cartapp "github.com/dwikikusuma/shopping-browse/internal/cart/app"
	cart "github.com/dwikikusuma/shopping-browse/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	recent "github.com/dwikikusuma/shopping-browse/internal/recent/domain"
	"github.com/dwikikusuma/shopping-browse/pkg/logger"
)

var errBoom = errors.New("boom")

func product(id int64) catalog.Product {
	return catalog.Product{ID: id, Name: "p", Price: catalog.Money{Currency: "KRW", Amount: 1000}}
}

type fakeSource struct {
	mu        sync.Mutex
	pages     map[int64][]catalog.Product
	firstErr  error
	nextErr   error
	byIDErr   error
	nextGate  chan struct{}
	nextCalls int
	resets    int
}

func (f *fakeSource) FetchFirstPage(ctx context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.firstErr != nil {
		return nil, f.firstErr
	}
	return slices.Clone(f.pages[0]), nil
}

func (f *fakeSource) FetchNextPage(ctx context.Context, afterID int64) ([]catalog.Product, error) {
	f.mu.Lock()
	f.nextCalls++
	gate := f.nextGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	page, ok := f.pages[afterID]
	if !ok {
		return nil, catalogapp.ErrEndOfCatalog
	}
	return slices.Clone(page), nil
}

func (f *fakeSource) FetchByID(ctx context.Context, id int64) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byIDErr != nil {
		return catalog.Product{}, f.byIDErr
	}
	return product(id), nil
}

func (f *fakeSource) ResetCache() {
	f.mu.Lock()
	f.resets++
	f.mu.Unlock()
}

type fakeCart struct {
	mu       sync.Mutex
	lines    []cart.CartLine
	nextID   int64
	err      error
	calls    int
	addCalls int
}

func (f *fakeCart) GetAll(ctx context.Context) ([]cart.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.lines), nil
}

func (f *fakeCart) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return len(f.lines), nil
}

func (f *fakeCart) Add(ctx context.Context, productID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.addCalls++
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.lines = append(f.lines, cart.CartLine{CartID: f.nextID, ProductID: productID, Quantity: 1})
	return f.nextID, nil
}

func (f *fakeCart) Remove(ctx context.Context, cartID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	for i, l := range f.lines {
		if l.CartID == cartID {
			f.lines = slices.Delete(f.lines, i, i+1)
			return nil
		}
	}
	return cartapp.ErrNotFound
}

func (f *fakeCart) SetQuantity(ctx context.Context, cartID int64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	for i, l := range f.lines {
		if l.CartID == cartID {
			f.lines[i].Quantity = count
			return nil
		}
	}
	return cartapp.ErrNotFound
}

func (f *fakeCart) storeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCart) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeRecent struct {
	mu    sync.Mutex
	views []recent.View
}

func (f *fakeRecent) GetAll(ctx context.Context) ([]recent.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.views)
	for i := range out {
		out[i].Rank = i
	}
	return out, nil
}

func (f *fakeRecent) Record(ctx context.Context, p catalog.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views = slices.DeleteFunc(f.views, func(v recent.View) bool { return v.Product.ID == p.ID })
	f.views = append([]recent.View{{Product: p}}, f.views...)
	return nil
}

type fixture struct {
	svc    *Service
	source *fakeSource
	cart   *fakeCart
	recent *fakeRecent
}

func newFixture(t *testing.T, firstPage ...catalog.Product) *fixture {
	t.Helper()
	f := &fixture{
		source: &fakeSource{pages: map[int64][]catalog.Product{0: firstPage}},
		cart:   &fakeCart{},
		recent: &fakeRecent{},
	}
	f.svc = NewService(f.source, f.cart, f.recent, Options{Logger: logger.Discard()})
	t.Cleanup(f.svc.Close)
	return f
}

// drain returns every event emitted so far.
func (f *fixture) drain() []ScreenEvent {
	f.svc.Wait()
	var out []ScreenEvent
	for {
		select {
		case ev := <-f.svc.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (f *fixture) items(t *testing.T) []Item {
	t.Helper()
	f.svc.Wait()
	items, _ := f.svc.Products().Get()
	return items
}

func (f *fixture) badge(t *testing.T) int {
	t.Helper()
	f.svc.Wait()
	n, ok := f.svc.BadgeCount().Get()
	if !ok {
		t.Fatal("badge never published")
	}
	return n
}

func ids(items []Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.Product.ID)
	}
	return out
}

func TestLoadInitial_EmptyCart(t *testing.T) {
	f := newFixture(t, product(1), product(2))

	f.svc.LoadInitial()

	items := f.items(t)
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	for _, it := range items {
		if it.InCart() || it.CartID != cart.NoCartID || it.Quantity != 0 {
			t.Fatalf("item %+v should have no cart line", it)
		}
	}
	if got := f.badge(t); got != 0 {
		t.Fatalf("badge = %d, want 0", got)
	}

	events := f.drain()
	if len(events) != 2 {
		t.Fatalf("events = %#v", events)
	}
	if _, ok := events[0].(ShowLoading); !ok {
		t.Fatalf("first event = %#v, want ShowLoading", events[0])
	}
	if _, ok := events[1].(HideLoading); !ok {
		t.Fatalf("second event = %#v, want HideLoading", events[1])
	}
}

func TestLoadInitial_AnnotatesCartLines(t *testing.T) {
	f := newFixture(t, product(1), product(2), product(3))
	f.cart.lines = []cart.CartLine{{CartID: 10, ProductID: 2, Quantity: 4}}

	f.svc.LoadInitial()

	items := f.items(t)
	if got := ids(items); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Fatalf("order = %v", got)
	}
	if items[0].InCart() || items[2].InCart() {
		t.Fatal("products 1 and 3 have no cart line")
	}
	if items[1].CartID != 10 || items[1].Quantity != 4 {
		t.Fatalf("item 2 = %+v", items[1])
	}
	if got := f.badge(t); got != 1 {
		t.Fatalf("badge = %d, want 1", got)
	}
}

func TestLoadInitial_ClearsPreviousList(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	if len(f.items(t)) != 1 {
		t.Fatal("setup: expected one item")
	}

	f.source.firstErr = errBoom
	f.svc.LoadInitial()

	if items := f.items(t); len(items) != 0 {
		t.Fatalf("list not cleared: %v", ids(items))
	}
}

func TestLoadInitial_FailureIsSilent(t *testing.T) {
	f := newFixture(t)
	f.source.firstErr = errBoom

	f.svc.LoadInitial()

	if items := f.items(t); len(items) != 0 {
		t.Fatalf("expected empty list, got %v", ids(items))
	}
	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v, want only ShowLoading", events)
	}
	if _, ok := events[0].(ShowLoading); !ok {
		t.Fatalf("event = %#v", events[0])
	}
}

func TestLoadInitial_CartFailureKeepsListEmpty(t *testing.T) {
	f := newFixture(t, product(1), product(2))
	f.cart.setErr(errBoom)

	f.svc.LoadInitial()

	if items := f.items(t); len(items) != 0 {
		t.Fatalf("expected empty list, got %v", ids(items))
	}
	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v, want only ShowLoading", events)
	}
	if _, ok := events[0].(ShowLoading); !ok {
		t.Fatalf("event = %#v", events[0])
	}
}

func TestLoadInitial_EmptyFirstPage(t *testing.T) {
	f := newFixture(t)

	f.svc.LoadInitial()

	if items := f.items(t); len(items) != 0 {
		t.Fatalf("expected empty list, got %v", ids(items))
	}
	events := f.drain()
	if len(events) != 2 {
		t.Fatalf("events = %#v", events)
	}
	if _, ok := events[1].(HideLoading); !ok {
		t.Fatalf("expected HideLoading, got %#v", events[1])
	}
}

func TestLoadMore_AppendsPreservingPrefix(t *testing.T) {
	f := newFixture(t, product(1), product(2))
	f.source.pages[2] = []catalog.Product{product(3), product(4)}
	f.svc.LoadInitial()
	before := ids(f.items(t))

	f.cart.lines = []cart.CartLine{{CartID: 5, ProductID: 1, Quantity: 2}, {CartID: 6, ProductID: 4, Quantity: 1}}
	f.svc.LoadMore()

	items := f.items(t)
	after := ids(items)
	if !slices.Equal(after[:len(before)], before) {
		t.Fatalf("prefix changed: before %v after %v", before, after)
	}
	if !slices.Equal(after, []int64{1, 2, 3, 4}) {
		t.Fatalf("after = %v", after)
	}
	if items[0].Quantity != 2 || items[3].CartID != 6 {
		t.Fatalf("cart annotation not re-run over combined list: %+v", items)
	}
	if got := f.badge(t); got != 2 {
		t.Fatalf("badge = %d, want 2", got)
	}
}

func TestLoadMore_EmptyListStartsAtCursorZero(t *testing.T) {
	f := newFixture(t, product(1))

	f.svc.LoadMore()

	if got := ids(f.items(t)); !slices.Equal(got, []int64{1}) {
		t.Fatalf("items = %v", got)
	}
}

func TestLoadMore_FailureKeepsListAndEmitsOnce(t *testing.T) {
	f := newFixture(t, product(1), product(2))
	f.svc.LoadInitial()
	before := ids(f.items(t))
	f.drain()

	f.source.nextErr = errBoom
	f.svc.LoadMore()

	if got := ids(f.items(t)); !slices.Equal(got, before) {
		t.Fatalf("list changed: %v -> %v", before, got)
	}
	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v, want exactly one", events)
	}
	ev, ok := events[0].(LoadMoreExhausted)
	if !ok {
		t.Fatalf("event = %#v", events[0])
	}
	if ev.EndOfCatalog() {
		t.Fatal("transport failure reported as end of catalog")
	}
}

func TestLoadMore_CartFailureKeepsList(t *testing.T) {
	f := newFixture(t, product(1))
	f.source.pages[1] = []catalog.Product{product(2)}
	f.svc.LoadInitial()
	before := ids(f.items(t))
	f.drain()

	f.cart.setErr(errBoom)
	f.svc.LoadMore()

	if got := ids(f.items(t)); !slices.Equal(got, before) {
		t.Fatalf("list changed: %v -> %v", before, got)
	}
	if events := f.drain(); len(events) != 0 {
		t.Fatalf("events = %#v, want none", events)
	}

	f.cart.setErr(nil)
	f.svc.LoadMore()
	if got := ids(f.items(t)); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("retry items = %v", got)
	}
}

func TestLoadMore_EndOfCatalog(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.drain()

	f.svc.LoadMore()

	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	ev, ok := events[0].(LoadMoreExhausted)
	if !ok || !ev.EndOfCatalog() {
		t.Fatalf("event = %#v, want end of catalog", events[0])
	}
}

func TestLoadMore_DropsOverlappingCall(t *testing.T) {
	f := newFixture(t, product(1))
	f.source.pages[1] = []catalog.Product{product(2)}
	f.svc.LoadInitial()
	f.svc.Wait()

	gate := make(chan struct{})
	f.source.mu.Lock()
	f.source.nextGate = gate
	f.source.mu.Unlock()

	f.svc.LoadMore()
	f.svc.LoadMore()
	close(gate)

	if got := ids(f.items(t)); !slices.Equal(got, []int64{1, 2}) {
		t.Fatalf("items = %v", got)
	}
	if f.source.nextCalls != 1 {
		t.Fatalf("next page fetched %d times, want 1", f.source.nextCalls)
	}
}

func TestLoadMore_StalePageDiscardedAfterReload(t *testing.T) {
	f := newFixture(t, product(1))
	f.source.pages[1] = []catalog.Product{product(2)}
	f.svc.LoadInitial()
	f.svc.Wait()

	gate := make(chan struct{})
	f.source.mu.Lock()
	f.source.nextGate = gate
	f.source.mu.Unlock()

	f.svc.LoadMore()
	f.svc.LoadInitial()
	close(gate)

	if got := ids(f.items(t)); !slices.Equal(got, []int64{1}) {
		t.Fatalf("items = %v, stale page must be dropped", got)
	}
}

func TestLoadMore_NotBlockedByPageOfPreviousList(t *testing.T) {
	f := newFixture(t, product(1))
	f.source.pages[1] = []catalog.Product{product(2)}
	f.svc.LoadInitial()
	f.svc.Wait()

	gate := make(chan struct{})
	f.source.mu.Lock()
	f.source.nextGate = gate
	f.source.mu.Unlock()

	f.svc.LoadMore()
	f.svc.LoadInitial()
	f.svc.LoadMore()
	close(gate)
	f.svc.Wait()

	f.source.mu.Lock()
	calls := f.source.nextCalls
	f.source.mu.Unlock()
	if calls != 2 {
		t.Fatalf("next page fetched %d times, want 2", calls)
	}
}

func TestChangeQuantity_AddAlwaysStartsAtOne(t *testing.T) {
	f := newFixture(t, product(1), product(2))
	f.svc.LoadInitial()
	f.svc.Wait()

	f.svc.ChangeQuantity(1, 5)

	items := f.items(t)
	if !items[0].InCart() || items[0].Quantity != 1 {
		t.Fatalf("item = %+v, want in cart with quantity 1", items[0])
	}
	if len(f.cart.lines) != 1 || f.cart.lines[0].ProductID != 1 || f.cart.lines[0].Quantity != 1 {
		t.Fatalf("store lines = %+v", f.cart.lines)
	}
	if got := f.badge(t); got != 1 {
		t.Fatalf("badge = %d, want 1", got)
	}
}

func TestChangeQuantity_ZeroWithoutLineIsNoOp(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.svc.Wait()

	f.svc.ChangeQuantity(1, 0)
	f.svc.Wait()

	if n := f.cart.storeCalls(); n != 0 {
		t.Fatalf("store calls = %d, want 0", n)
	}
}

func TestChangeQuantity_AddThenRemoveRoundTrip(t *testing.T) {
	f := newFixture(t, product(1))
	f.cart.lines = []cart.CartLine{{CartID: 50, ProductID: 99, Quantity: 1}}
	f.cart.nextID = 50
	f.svc.LoadInitial()
	before := f.badge(t)

	f.svc.ChangeQuantity(1, 1)
	if got := f.badge(t); got != before+1 {
		t.Fatalf("badge after add = %d, want %d", got, before+1)
	}

	f.svc.ChangeQuantity(1, 0)

	item := f.items(t)[0]
	if item.InCart() || item.CartID != cart.NoCartID || item.Quantity != 0 {
		t.Fatalf("item = %+v, want sentinel", item)
	}
	if got := f.badge(t); got != before {
		t.Fatalf("badge after remove = %d, want %d", got, before)
	}
}

func TestChangeQuantity_SetsQuantity(t *testing.T) {
	f := newFixture(t, product(1))
	f.cart.lines = []cart.CartLine{{CartID: 7, ProductID: 1, Quantity: 1}}
	f.svc.LoadInitial()
	f.svc.Wait()

	f.svc.ChangeQuantity(1, 3)

	if item := f.items(t)[0]; item.Quantity != 3 || item.CartID != 7 {
		t.Fatalf("item = %+v", item)
	}
	if f.cart.lines[0].Quantity != 3 {
		t.Fatalf("store quantity = %d", f.cart.lines[0].Quantity)
	}
}

func TestChangeQuantity_FailureKeepsList(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	before := f.items(t)
	badge := f.badge(t)

	f.cart.setErr(errBoom)
	f.svc.ChangeQuantity(1, 1)

	if got := f.items(t); !slices.Equal(got, before) {
		t.Fatalf("list changed after failed add: %+v", got)
	}
	if got := f.badge(t); got != badge {
		t.Fatalf("badge changed: %d -> %d", badge, got)
	}
	if events := f.drain(); len(events) != 2 {
		t.Fatalf("cart failure must not emit events, got %#v", events)
	}
}

func TestChangeQuantity_UnknownProductIsNoOp(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.svc.Wait()

	f.svc.ChangeQuantity(42, 2)
	f.svc.ChangeQuantity(1, -1)
	f.svc.Wait()

	if n := f.cart.storeCalls(); n != 0 {
		t.Fatalf("store calls = %d, want 0", n)
	}
}

func TestChangeQuantity_BadgeReadsStore(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.svc.Wait()

	// A line added behind the service's back must show up in the badge.
	f.cart.mu.Lock()
	f.cart.lines = append(f.cart.lines, cart.CartLine{CartID: 900, ProductID: 900, Quantity: 1})
	f.cart.mu.Unlock()

	f.svc.ChangeQuantity(1, 1)

	if got := f.badge(t); got != 2 {
		t.Fatalf("badge = %d, want 2", got)
	}
}

func TestChangeQuantity_SameProductSerialized(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.svc.Wait()

	f.svc.ChangeQuantity(1, 1)
	f.svc.ChangeQuantity(1, 3)
	f.svc.Wait()

	if f.cart.addCalls != 1 {
		t.Fatalf("add calls = %d, want 1", f.cart.addCalls)
	}
	if len(f.cart.lines) != 1 || f.cart.lines[0].Quantity != 3 {
		t.Fatalf("store lines = %+v, want one line with quantity 3", f.cart.lines)
	}
	if item := f.items(t)[0]; item.Quantity != 3 {
		t.Fatalf("item = %+v, want quantity 3", item)
	}
}

func TestChangeQuantity_SameProductRunsInCallOrder(t *testing.T) {
	t.Run("add then remove", func(t *testing.T) {
		f := newFixture(t, product(1))
		f.svc.LoadInitial()
		f.svc.Wait()

		for i := 0; i < 50; i++ {
			f.svc.ChangeQuantity(1, 1)
			f.svc.ChangeQuantity(1, 0)
			f.svc.Wait()

			if item := f.items(t)[0]; item.InCart() || item.Quantity != 0 {
				t.Fatalf("round %d: item = %+v, want no cart line", i, item)
			}
			if got := f.badge(t); got != 0 {
				t.Fatalf("round %d: badge = %d, want 0", i, got)
			}
		}
		if len(f.cart.lines) != 0 {
			t.Fatalf("store lines = %+v", f.cart.lines)
		}
	})

	t.Run("set then set", func(t *testing.T) {
		f := newFixture(t, product(1))
		f.svc.LoadInitial()
		f.svc.ChangeQuantity(1, 1)
		f.svc.Wait()

		for i := 0; i < 50; i++ {
			f.svc.ChangeQuantity(1, 3)
			f.svc.ChangeQuantity(1, 5)
			f.svc.Wait()

			if item := f.items(t)[0]; item.Quantity != 5 {
				t.Fatalf("round %d: item = %+v, want quantity 5", i, item)
			}
		}
		if f.cart.lines[0].Quantity != 5 {
			t.Fatalf("store quantity = %d, want 5", f.cart.lines[0].Quantity)
		}
	})
}

func TestChangeQuantity_StoreFailuresKeepLine(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"remove", 0},
		{"set quantity", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, product(1))
			f.svc.LoadInitial()
			f.svc.ChangeQuantity(1, 1)
			before := f.items(t)
			f.drain()

			f.cart.setErr(errBoom)
			f.svc.ChangeQuantity(1, tt.count)

			if got := f.items(t); !slices.Equal(got, before) {
				t.Fatalf("list changed after failed %s: %+v -> %+v", tt.name, before, got)
			}
			f.cart.setErr(nil)
			if len(f.cart.lines) != 1 || f.cart.lines[0].Quantity != 1 {
				t.Fatalf("store lines = %+v", f.cart.lines)
			}
			if got := f.badge(t); got != 1 {
				t.Fatalf("badge = %d, want 1", got)
			}
			if events := f.drain(); len(events) != 0 {
				t.Fatalf("cart failure must not emit events, got %#v", events)
			}
		})
	}
}

func TestChangeQuantity_DifferentProductsDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t, product(1), product(2), product(3))
	f.svc.LoadInitial()
	f.svc.Wait()

	for _, id := range []int64{1, 2, 3} {
		f.svc.ChangeQuantity(id, 1)
	}

	for _, it := range f.items(t) {
		if !it.InCart() || it.Quantity != 1 {
			t.Fatalf("item %+v lost its update", it)
		}
	}
	if got := f.badge(t); got != 3 {
		t.Fatalf("badge = %d, want 3", got)
	}
}

func TestOpenProductDetail_PromotesAndForwardsPreviousHead(t *testing.T) {
	f := newFixture(t)
	f.recent.views = []recent.View{{Product: product(1)}}

	f.svc.OpenProductDetail(2)

	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	ev, ok := events[0].(NavigateToProductDetail)
	if !ok {
		t.Fatalf("event = %#v", events[0])
	}
	if ev.Product.ID != 2 {
		t.Fatalf("product = %d, want 2", ev.Product.ID)
	}
	if ev.PreviousMostRecent == nil || ev.PreviousMostRecent.Product.ID != 1 {
		t.Fatalf("previous = %+v, want product 1", ev.PreviousMostRecent)
	}

	views, _ := f.svc.RecentViews().Get()
	got := make([]int64, 0, len(views))
	for _, v := range views {
		got = append(got, v.Product.ID)
	}
	if !slices.Equal(got, []int64{2, 1}) {
		t.Fatalf("history = %v, want [2 1]", got)
	}
}

func TestOpenProductDetail_EmptyHistoryHasNoPrevious(t *testing.T) {
	f := newFixture(t)

	f.svc.OpenRecentProductDetail(5)

	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	ev := events[0].(NavigateToProductDetail)
	if ev.PreviousMostRecent != nil {
		t.Fatalf("previous = %+v, want nil", ev.PreviousMostRecent)
	}
}

func TestOpenProductDetail_FetchFailureIsSilent(t *testing.T) {
	f := newFixture(t)
	f.source.byIDErr = errBoom

	f.svc.OpenProductDetail(2)

	if events := f.drain(); len(events) != 0 {
		t.Fatalf("events = %#v", events)
	}
	if len(f.recent.views) != 0 {
		t.Fatal("failed fetch must not record a view")
	}
}

func TestLoadRecent(t *testing.T) {
	f := newFixture(t)
	f.recent.views = []recent.View{{Product: product(3)}, {Product: product(1)}}

	f.svc.LoadRecent()
	f.svc.Wait()

	views, ok := f.svc.RecentViews().Get()
	if !ok || len(views) != 2 || views[0].Product.ID != 3 || views[1].Rank != 1 {
		t.Fatalf("views = %+v", views)
	}
}

func TestRefreshBadgeAndNavigateAndReset(t *testing.T) {
	f := newFixture(t)
	f.cart.lines = []cart.CartLine{{CartID: 1, ProductID: 1, Quantity: 1}}

	f.svc.RefreshBadge()
	if got := f.badge(t); got != 1 {
		t.Fatalf("badge = %d", got)
	}

	f.svc.NavigateToCart()
	events := f.drain()
	if len(events) != 1 {
		t.Fatalf("events = %#v", events)
	}
	if _, ok := events[0].(NavigateToCart); !ok {
		t.Fatalf("event = %#v", events[0])
	}

	f.svc.ResetCache()
	if f.source.resets != 1 {
		t.Fatalf("resets = %d", f.source.resets)
	}
}

func TestSubscribersSeeLatestList(t *testing.T) {
	f := newFixture(t, product(1))
	ch, cancel := f.svc.Products().Subscribe()
	defer cancel()

	f.svc.LoadInitial()
	f.svc.Wait()

	var last []Item
	for {
		select {
		case last = <-ch:
			continue
		default:
		}
		break
	}
	if got := ids(last); !slices.Equal(got, []int64{1}) {
		t.Fatalf("subscriber saw %v", got)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t, product(1))
	f.svc.LoadInitial()
	f.svc.Wait()
	f.svc.Close()

	for range f.svc.Events() {
	}

	f.svc.LoadInitial()
	f.svc.LoadMore()
	f.svc.ChangeQuantity(1, 1)
	f.svc.NavigateToCart()
	f.svc.Wait()

	if n := f.cart.storeCalls(); n != 0 {
		t.Fatalf("store calls after close = %d", n)
	}
	if got := ids(f.items(t)); !slices.Equal(got, []int64{1}) {
		t.Fatalf("list after close = %v, want it untouched", got)
	}
	f.svc.Close()
}
