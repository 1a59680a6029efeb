package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/orders-admin/internal/kafka"
	"github.com/ariefcatur/orders-admin/internal/orders"
	"github.com/ariefcatur/orders-admin/internal/redisx"
)

// Catalog is the persistence the handler needs; *orders.Repo satisfies it.
type Catalog interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	CreateProduct(ctx context.Context, in orders.ProductInput) (orders.Product, error)
	UpdateProduct(ctx context.Context, id int64, in orders.ProductInput) (orders.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListOrders(ctx context.Context) ([]orders.Order, error)
	CreateOrder(ctx context.Context, in orders.OrderInput) (orders.Order, error)
	UpdateOrder(ctx context.Context, id int64, in orders.OrderInput) (orders.Order, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CatalogHandler struct {
	Repo     Catalog
	Cache    *redisx.ListCache
	Products Publisher // catalog.product.changed, optional
	Orders   Publisher // catalog.order.changed, optional
	Service  string
	Log      *slog.Logger
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
	r.Get("/orders", h.listOrders)
	r.Post("/orders", h.createOrder)
	r.Put("/orders/{id}", h.updateOrder)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	h.list(ctx, w, redisx.KeyProductsList, func(ctx context.Context) (any, error) {
		return h.Repo.ListProducts(ctx)
	})
}

func (h *CatalogHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	h.list(ctx, w, redisx.KeyOrdersList, func(ctx context.Context) (any, error) {
		return h.Repo.ListOrders(ctx)
	})
}

// list serves a collection, from cache when possible.
func (h *CatalogHandler) list(ctx context.Context, w http.ResponseWriter, key string, load func(context.Context) (any, error)) {
	if b, ok := h.Cache.Get(ctx, key); ok {
		writeRaw(w, http.StatusOK, b)
		return
	}
	v, err := load(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.Cache.Set(ctx, key, b); err != nil {
		h.Log.Warn("cache set failed", "key", key, "err", err)
	}
	writeRaw(w, http.StatusOK, b)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Repo.CreateProduct(ctx, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed(ctx, r, orders.ResourceProduct, p.ID, orders.ActionCreated, p)
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Repo.UpdateProduct(ctx, id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed(ctx, r, orders.ResourceProduct, p.ID, orders.ActionUpdated, p)
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.DeleteProduct(ctx, id); err != nil {
		h.fail(w, err)
		return
	}
	h.changed(ctx, r, orders.ResourceProduct, id, orders.ActionDeleted, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeOrder(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.CreateOrder(ctx, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed(ctx, r, orders.ResourceOrder, o.ID, orders.ActionCreated, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *CatalogHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := decodeOrder(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateOrder(ctx, id, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed(ctx, r, orders.ResourceOrder, o.ID, orders.ActionUpdated, o)
	writeJSON(w, http.StatusOK, o)
}

// changed invalidates the list caches touched by a write and publishes the
// change event. Product writes also drop the orders list since order items
// embed product names.
func (h *CatalogHandler) changed(ctx context.Context, r *http.Request, resource string, id int64, action string, snapshot any) {
	keys := []string{redisx.KeyOrdersList}
	pub := h.Orders
	if resource == orders.ResourceProduct {
		keys = append(keys, redisx.KeyProductsList)
		pub = h.Products
	}
	if err := h.Cache.Invalidate(ctx, keys...); err != nil {
		h.Log.Warn("cache invalidate failed", "keys", keys, "err", err)
	}

	if pub == nil {
		return
	}
	ch := orders.ResourceChanged{Resource: resource, ResourceID: id, Action: action}
	if snapshot != nil {
		ch.Snapshot = kafkax.MustMarshal(snapshot)
	}
	ev := kafkax.ChangeEvent(h.Service, middleware.GetReqID(r.Context()), ch)
	pub.Publish(orders.PartitionKey(id), kafkax.MustMarshal(ev), kafkax.Headers(ev)...)
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, orders.ErrProductNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, orders.ErrProductInUse):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.Log.Error("catalog request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (orders.ProductInput, bool) {
	var in orders.ProductInput
	if !decode(w, r, &in) {
		return in, false
	}
	in.Name = strings.TrimSpace(in.Name)
	fields := fieldErrors(validate.Struct(in))
	if !orders.ValidPrice(in.Price) {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["price"] = "range"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid fields", "fields": fields})
		return in, false
	}
	return in, true
}

func decodeOrder(w http.ResponseWriter, r *http.Request) (orders.OrderInput, bool) {
	var in orders.OrderInput
	if !decode(w, r, &in) {
		return in, false
	}
	if fields := fieldErrors(validate.Struct(in)); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid fields", "fields": fields})
		return in, false
	}
	return in, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

// fieldErrors maps validator errors to struct namespace -> failed tag.
func fieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
