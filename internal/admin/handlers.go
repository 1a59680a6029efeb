package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

const (
	pageProducts = "products"
	pageOrders   = "orders"
)

type Handler struct {
	Sessions *Sessions
	Views    *Views
	Log      *slog.Logger
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.products)
		r.Get("/new", h.newProduct)
		r.Get("/drawer", h.productDrawer)
		r.Post("/drawer", h.postProductDrawer)
		r.Get("/{id}/edit", h.editProduct)
		r.Post("/{id}/delete", h.deleteProduct)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.orders)
		r.Get("/new", h.newOrder)
		r.Get("/drawer", h.orderDrawer)
		r.Post("/drawer", h.postOrderDrawer)
		r.Get("/{id}/edit", h.editOrder)
	})
}

// ---- products ----

func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	s.orders.Cancel()
	if !s.takeFresh(pageProducts) {
		_ = s.products.Mount(r.Context())
	}
	h.renderProducts(w, s, http.StatusOK, nil)
}

func (h *Handler) newProduct(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	ensureLoaded(r.Context(), s.products)
	s.products.Create()
	h.renderProducts(w, s, http.StatusOK, nil)
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	ensureLoaded(r.Context(), s.products)
	pid, err := pathID(r)
	if err == nil {
		_, err = s.products.EditByID(pid)
	}
	if err != nil {
		s.notes.Notify(listedit.Notification{Kind: listedit.KindError, Message: "Product not found"})
		h.renderProducts(w, s, http.StatusNotFound, nil)
		return
	}
	h.renderProducts(w, s, http.StatusOK, nil)
}

func (h *Handler) productDrawer(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	if s.products.State() != listedit.Editing {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	h.renderProducts(w, s, http.StatusOK, nil)
}

func (h *Handler) postProductDrawer(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	draft, ok := s.products.Draft()
	if !ok {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	switch r.PostForm.Get("op") {
	case "cancel":
		s.products.Cancel()
		s.markFresh(pageProducts)
		http.Redirect(w, r, "/products", http.StatusSeeOther)
	case "submit":
		draft.Bind(r.PostForm)
		h.afterSubmit(w, r, s, pageProducts, s.products.Submit(r.Context()), func(code int, fe listedit.FieldErrors) {
			h.renderProducts(w, s, code, fe)
		})
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	pid, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := s.products.Delete(r.Context(), pid); err != nil {
		h.Log.Info("product delete rejected", "id", pid, "err", err)
	}
	s.markFresh(pageProducts)
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

func (h *Handler) renderProducts(w http.ResponseWriter, s *Session, code int, fe listedit.FieldErrors) {
	v := productsView{
		page: page{
			Title:   "Products",
			Crumbs:  crumbs("Products", "/products"),
			Flashes: s.notes.Drain(),
			Table:   BuildTable(productColumns(s.products.CanDelete()), productBinding.ID, s.products.Items()),
		},
	}
	v.Table.Loading = s.products.Store().Loading()
	if d, ok := s.products.Draft(); ok {
		_, update := s.products.Target()
		v.Drawer = &productDrawer{
			Title:  drawerTitle(update, "Product"),
			Submit: submitLabel(update),
			Draft:  d,
			Errors: fe,
		}
	}
	h.Views.render(w, h.Log, pageProducts, code, v)
}

// ---- orders ----

func (h *Handler) orders(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	s.products.Cancel()
	if !s.takeFresh(pageOrders) {
		_ = s.orders.Mount(r.Context())
		s.options.Load(r.Context())
	}
	h.renderOrders(w, s, http.StatusOK, nil)
}

func (h *Handler) newOrder(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	h.ensureOrdersLoaded(r.Context(), s)
	s.orders.Create()
	h.renderOrders(w, s, http.StatusOK, nil)
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	h.ensureOrdersLoaded(r.Context(), s)
	oid, err := pathID(r)
	if err == nil {
		_, err = s.orders.EditByID(oid)
	}
	if err != nil {
		s.notes.Notify(listedit.Notification{Kind: listedit.KindError, Message: "Order not found"})
		h.renderOrders(w, s, http.StatusNotFound, nil)
		return
	}
	h.renderOrders(w, s, http.StatusOK, nil)
}

func (h *Handler) orderDrawer(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	if s.orders.State() != listedit.Editing {
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}
	h.renderOrders(w, s, http.StatusOK, nil)
}

func (h *Handler) postOrderDrawer(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Acquire(w, r)
	defer h.Sessions.Release(s)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	draft, ok := s.orders.Draft()
	if !ok {
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return
	}

	if err := draft.Bind(r.PostForm); err != nil {
		http.Error(w, "too many item rows", http.StatusBadRequest)
		return
	}
	op := r.PostForm.Get("op")
	switch {
	case op == "cancel":
		s.orders.Cancel()
		s.markFresh(pageOrders)
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
	case op == "add_item":
		draft.AddItem()
		h.renderOrders(w, s, http.StatusOK, nil)
	case strings.HasPrefix(op, "remove_item:"):
		i, err := strconv.Atoi(strings.TrimPrefix(op, "remove_item:"))
		if err != nil {
			http.Error(w, "invalid row", http.StatusBadRequest)
			return
		}
		draft.RemoveItem(i)
		h.renderOrders(w, s, http.StatusOK, nil)
	case op == "submit":
		h.afterSubmit(w, r, s, pageOrders, s.orders.Submit(r.Context()), func(code int, fe listedit.FieldErrors) {
			h.renderOrders(w, s, code, fe)
		})
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (h *Handler) ensureOrdersLoaded(ctx context.Context, s *Session) {
	ensureLoaded(ctx, s.orders)
	if !s.options.Loaded() {
		s.options.Load(ctx)
	}
}

func (h *Handler) renderOrders(w http.ResponseWriter, s *Session, code int, fe listedit.FieldErrors) {
	v := ordersView{
		page: page{
			Title:   "Orders",
			Crumbs:  crumbs("Orders", "/orders"),
			Flashes: s.notes.Drain(),
			Table:   BuildTable(orderColumns(), orderBinding.ID, s.orders.Items()),
		},
	}
	v.Table.Loading = s.orders.Store().Loading()
	if d, ok := s.orders.Draft(); ok {
		_, update := s.orders.Target()
		products := s.options.Items()
		v.Drawer = &orderDrawer{
			Title:    drawerTitle(update, "Order"),
			Submit:   submitLabel(update),
			Draft:    d,
			Errors:   fe,
			Statuses: statusOptions(),
			Products: ProductOptions(products),
			Estimate: orders.Total(d.Payload().Items, products).StringFixed(2),
		}
	}
	h.Views.render(w, h.Log, pageOrders, code, v)
}

// ---- shared ----

// afterSubmit turns a Submit result into a response: redirect on success,
// otherwise re-render the open drawer.
func (h *Handler) afterSubmit(w http.ResponseWriter, r *http.Request, s *Session, pg string, err error, rerender func(int, listedit.FieldErrors)) {
	var fe listedit.FieldErrors
	switch {
	case err == nil:
		s.markFresh(pg)
		http.Redirect(w, r, "/"+pg, http.StatusSeeOther)
	case errors.As(err, &fe):
		rerender(http.StatusUnprocessableEntity, fe)
	case errors.Is(err, listedit.ErrNotEditing):
		http.Redirect(w, r, "/"+pg, http.StatusSeeOther)
	default:
		rerender(http.StatusOK, nil)
	}
}

func ensureLoaded[T any, P any, D listedit.Draft[P]](ctx context.Context, c *listedit.Controller[T, P, D]) {
	if !c.Store().Loaded() {
		_ = c.Mount(ctx)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func drawerTitle(update bool, label string) string {
	if update {
		return "Edit " + label
	}
	return "Create " + label
}

func submitLabel(update bool) string {
	if update {
		return "Update"
	}
	return "Create"
}

func crumbs(label, href string) []Crumb {
	return []Crumb{{Label: "Home", Href: "/"}, {Label: label, Href: href}}
}
