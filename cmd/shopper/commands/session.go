package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	browseapp "github.com/dwikikusuma/shopping-browse/internal/browse/app"
	catalog "github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/shopping-browse/internal/checkout/app"
)

// session drives one command against the browse service and renders what
// the service publishes.
type session struct {
	svc      *browseapp.Service
	checkout *checkoutapp.Service
	out      io.Writer
	printer  *message.Printer

	exhausted bool
	opened    *browseapp.NavigateToProductDetail
}

func newSession(svc *browseapp.Service, checkout *checkoutapp.Service, out io.Writer, tag language.Tag) *session {
	return &session{
		svc:      svc,
		checkout: checkout,
		out:      out,
		printer:  message.NewPrinter(tag),
	}
}

// settle waits for every started operation and handles the events they
// emitted.
func (s *session) settle(ctx context.Context) error {
	s.svc.Wait()
	for {
		select {
		case ev, ok := <-s.svc.Events():
			if !ok {
				return nil
			}
			if err := s.handle(ctx, ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (s *session) handle(ctx context.Context, ev browseapp.ScreenEvent) error {
	switch e := ev.(type) {
	case browseapp.LoadMoreExhausted:
		s.exhausted = true
		if !e.EndOfCatalog() {
			fmt.Fprintf(s.out, "could not load more products: %v\n", e.Cause)
		}
	case browseapp.NavigateToProductDetail:
		s.opened = &e
		s.renderDetail(e)
	case browseapp.NavigateToCart:
		return s.renderQuote(ctx)
	}
	return nil
}

// loadPages loads the first page and up to pages-1 more.
func (s *session) loadPages(ctx context.Context, pages int) error {
	s.exhausted = false
	s.svc.LoadInitial()
	if err := s.settle(ctx); err != nil {
		return err
	}
	for i := 1; i < pages && !s.exhausted; i++ {
		s.svc.LoadMore()
		if err := s.settle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// loadUntil pages through the catalog until productID is in the list or the
// catalog runs out.
func (s *session) loadUntil(ctx context.Context, productID int64) (browseapp.Item, bool, error) {
	s.exhausted = false
	s.svc.LoadInitial()
	if err := s.settle(ctx); err != nil {
		return browseapp.Item{}, false, err
	}
	for {
		if item, ok := s.item(productID); ok {
			return item, true, nil
		}
		items, _ := s.svc.Products().Get()
		if s.exhausted || len(items) == 0 {
			return browseapp.Item{}, false, nil
		}
		if err := ctx.Err(); err != nil {
			return browseapp.Item{}, false, err
		}
		s.svc.LoadMore()
		if err := s.settle(ctx); err != nil {
			return browseapp.Item{}, false, err
		}
	}
}

func (s *session) item(productID int64) (browseapp.Item, bool) {
	items, _ := s.svc.Products().Get()
	for _, it := range items {
		if it.Product.ID == productID {
			return it, true
		}
	}
	return browseapp.Item{}, false
}

func (s *session) renderProducts() {
	items, _ := s.svc.Products().Get()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no products")
	} else {
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tIN CART")
		for _, it := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.Product.ID, it.Product.Name, s.price(it.Product.Price), inCart(it))
		}
		_ = tw.Flush()
	}
	if s.exhausted {
		fmt.Fprintln(s.out, "end of catalog")
	}
	s.renderBadge()
}

func (s *session) renderItem(it browseapp.Item) {
	fmt.Fprintf(s.out, "%d %s: %s\n", it.Product.ID, it.Product.Name, inCart(it))
	s.renderBadge()
}

func (s *session) renderBadge() {
	n, _ := s.svc.BadgeCount().Get()
	s.printer.Fprintf(s.out, "cart: %d item(s)\n", n)
}

func (s *session) renderRecent() {
	views, _ := s.svc.RecentViews().Get()
	if len(views) == 0 {
		fmt.Fprintln(s.out, "no recently viewed products")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tNAME\tVIEWED")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", v.Rank, v.Product.ID, v.Product.Name, v.ViewedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func (s *session) renderDetail(ev browseapp.NavigateToProductDetail) {
	p := ev.Product
	fmt.Fprintf(s.out, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(s.out, "price: %s\n", s.price(p.Price))
	if p.Description != "" {
		fmt.Fprintln(s.out, p.Description)
	}
	switch prev := ev.PreviousMostRecent; {
	case prev == nil:
		fmt.Fprintln(s.out, "first product viewed")
	case prev.Product.ID == p.ID:
		fmt.Fprintln(s.out, "already the most recent view")
	default:
		fmt.Fprintf(s.out, "previously viewed: %s (#%d)\n", prev.Product.Name, prev.Product.ID)
	}
}

func (s *session) renderQuote(ctx context.Context) error {
	q, err := s.checkout.Quote(ctx)
	if errors.Is(err, checkoutapp.ErrEmptyCart) {
		fmt.Fprintln(s.out, "cart is empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("quote cart: %w", err)
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tTOTAL")
	for _, l := range q.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.Product.ID, l.Product.Name, l.Quantity,
			s.price(l.Product.Price), s.price(l.LineTotal))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", q.Units(), s.price(q.Total))
	return tw.Flush()
}

// price renders an amount held in the currency's minor unit.
func (s *session) price(m catalog.Money) string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return s.printer.Sprintf("%d %s", m.Amount, m.Currency)
	}
	scale, _ := currency.Standard.Rounding(unit)
	value := float64(m.Amount) / math.Pow10(scale)
	return s.printer.Sprint(currency.Symbol(unit.Amount(value)))
}

func inCart(it browseapp.Item) string {
	if !it.InCart() {
		return "-"
	}
	return fmt.Sprintf("x%d", it.Quantity)
}
