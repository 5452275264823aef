// Package httpapi exposes the catalog over HTTP+JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/shopping-browse/internal/catalog/app"
	"github.com/dwikikusuma/shopping-browse/internal/catalog/domain"
	"github.com/dwikikusuma/shopping-browse/pkg/metrics"
)

const RequestIDHeader = "X-Request-Id"

type Catalog interface {
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	ListProducts(ctx context.Context, afterID int64, limit int) ([]domain.Product, error)
}

type Server struct {
	svc Catalog
	log *slog.Logger
}

func NewServer(svc Catalog, log *slog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
	// NextCursor is the id of the last product returned, 0 when the page is empty.
	NextCursor int64 `json:"next_cursor"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /v1/products", metrics.Middleware("list_products", http.HandlerFunc(s.listProducts)))
	mux.Handle("GET /v1/products/{id}", metrics.Middleware("get_product", http.HandlerFunc(s.getProduct)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("GET /metrics", metrics.Handler())
	return s.withRequestID(mux)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var afterID int64
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeErr(w, r, app.ErrInvalidInput)
			return
		}
		afterID = n
	}
	var limit int
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeErr(w, r, app.ErrInvalidInput)
			return
		}
		limit = n
	}

	products, err := s.svc.ListProducts(r.Context(), afterID, limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	resp := ListProductsResponse{Products: products}
	if resp.Products == nil {
		resp.Products = []domain.Product{}
	}
	if n := len(products); n > 0 {
		resp.NextCursor = products[n-1].ID
	}
	metrics.RecordProductsServed(len(products))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeErr(w, r, app.ErrInvalidInput)
		return
	}
	p, err := s.svc.GetProduct(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := httpStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", w.Header().Get(RequestIDHeader)),
			slog.Any("err", err),
		)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func httpStatusFromErr(err error) (int, string, string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "UNAVAILABLE", "request cancelled or timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", id),
			slog.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
