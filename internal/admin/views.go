package admin

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

//go:embed templates/*.html
var templateFS embed.FS

type Crumb struct {
	Label string
	Href  string
}

type page struct {
	Title   string
	Crumbs  []Crumb
	Flashes []listedit.Notification
	Table   Table
}

type productsView struct {
	page
	Drawer *productDrawer
}

type productDrawer struct {
	Title  string
	Submit string
	Draft  *ProductDraft
	Errors listedit.FieldErrors
}

type ordersView struct {
	page
	Drawer *orderDrawer
}

type orderDrawer struct {
	Title    string
	Submit   string
	Draft    *OrderDraft
	Errors   listedit.FieldErrors
	Statuses []statusOption
	Products []Option
	Estimate string
}

type statusOption struct {
	Value string
	Label string
}

func statusOptions() []statusOption {
	out := make([]statusOption, 0, len(orders.Statuses))
	for _, s := range orders.Statuses {
		out = append(out, statusOption{Value: string(s), Label: s.Label()})
	}
	return out
}

// Views holds one parsed template set per page.
type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		"field": func(i int, name string) string {
			return "items[" + idStr(int64(i)) + "]." + name
		},
	}
	v := &Views{pages: map[string]*template.Template{}}
	for _, name := range []string{pageProducts, pageOrders} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		v.pages[name] = t
	}
	return v, nil
}

func (v *Views) render(w http.ResponseWriter, log *slog.Logger, name string, code int, data any) {
	var buf bytes.Buffer
	if err := v.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error("render failed", "page", name, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
