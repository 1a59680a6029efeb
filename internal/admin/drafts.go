package admin

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

// ProductDraft keeps the product form as typed, so a rejected submit shows
// the user exactly what they entered.
type ProductDraft struct {
	Name          string `form:"name" validate:"required"`
	Price         string `form:"price" validate:"required,price,pricemax"`
	StockQuantity string `form:"stock_quantity" validate:"required,count"`
}

func SeedProduct(p orders.Product) *ProductDraft {
	return &ProductDraft{
		Name:          p.Name,
		Price:         p.Price.String(),
		StockQuantity: strconv.Itoa(p.StockQuantity),
	}
}

func (d *ProductDraft) Bind(form url.Values) {
	d.Name = strings.TrimSpace(form.Get("name"))
	d.Price = strings.TrimSpace(form.Get("price"))
	d.StockQuantity = strings.TrimSpace(form.Get("stock_quantity"))
}

func (d *ProductDraft) Validate() listedit.FieldErrors { return check(d) }

func (d *ProductDraft) Payload() orders.ProductInput {
	price, _ := decimal.NewFromString(d.Price)
	stock, _ := strconv.Atoi(d.StockQuantity)
	return orders.ProductInput{Name: d.Name, Price: price, StockQuantity: stock}
}

// OrderDraft is the order form: a status and a variable number of item rows.
type OrderDraft struct {
	Status string      `form:"status" validate:"required,oneof=pending completed cancelled"`
	Items  []ItemDraft `form:"items" validate:"dive"`
}

// ItemDraft is one item row. ProductID 0 means nothing selected yet.
type ItemDraft struct {
	ProductID int64  `form:"product_id" validate:"required"`
	Quantity  string `form:"quantity" validate:"required,qty,qtymax"`
}

// SeedOrder copies status and items of an order; product names are dropped.
func SeedOrder(o orders.Order) *OrderDraft {
	d := &OrderDraft{Status: string(o.Status)}
	for _, it := range o.Items {
		d.Items = append(d.Items, ItemDraft{ProductID: it.ProductID, Quantity: strconv.Itoa(it.Quantity)})
	}
	return d
}

// AddItem appends an empty row unless the draft already holds
// orders.MaxOrderItems rows.
func (d *OrderDraft) AddItem() {
	if len(d.Items) >= orders.MaxOrderItems {
		return
	}
	d.Items = append(d.Items, ItemDraft{})
}

// RemoveItem drops the row at i; out of range indexes are ignored.
func (d *OrderDraft) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = slices.Delete(d.Items, i, i+1)
	if len(d.Items) == 0 {
		d.Items = nil
	}
}

// ErrTooManyItems is returned by Bind when the form claims more rows than an
// order may hold.
var ErrTooManyItems = errors.New("too many item rows")

// Bind reads status and the rows posted as items[i].product_id and
// items[i].quantity, for i below items_count. Indexes with neither field
// posted are skipped, so the row count never exceeds what the form carries.
func (d *OrderDraft) Bind(form url.Values) error {
	n, _ := strconv.Atoi(form.Get("items_count"))
	if n > orders.MaxOrderItems {
		return ErrTooManyItems
	}
	d.Status = strings.TrimSpace(form.Get("status"))
	var items []ItemDraft
	for i := 0; i < n; i++ {
		prefix := "items[" + strconv.Itoa(i) + "]."
		if !form.Has(prefix+"product_id") && !form.Has(prefix+"quantity") {
			continue
		}
		pid, _ := strconv.ParseInt(form.Get(prefix+"product_id"), 10, 64)
		items = append(items, ItemDraft{
			ProductID: pid,
			Quantity:  strings.TrimSpace(form.Get(prefix + "quantity")),
		})
	}
	d.Items = items
	return nil
}

func (d *OrderDraft) Validate() listedit.FieldErrors { return check(d) }

func (d *OrderDraft) Payload() orders.OrderInput {
	in := orders.OrderInput{Status: orders.Status(d.Status), Items: make([]orders.OrderItemInput, 0, len(d.Items))}
	for _, it := range d.Items {
		q, _ := strconv.Atoi(it.Quantity)
		in.Items = append(in.Items, orders.OrderItemInput{ProductID: it.ProductID, Quantity: q})
	}
	return in
}

var (
	productBinding = listedit.Binding[orders.Product, *ProductDraft]{
		ID:    func(p orders.Product) int64 { return p.ID },
		Seed:  SeedProduct,
		Empty: func() *ProductDraft { return &ProductDraft{} },
	}
	orderBinding = listedit.Binding[orders.Order, *OrderDraft]{
		ID:    func(o orders.Order) int64 { return o.ID },
		Seed:  SeedOrder,
		Empty: func() *OrderDraft { return &OrderDraft{} },
	}
)
