package admin

import (
	"strconv"

	"github.com/ariefcatur/orders-admin/internal/orders"
)

type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
)

type Tag struct {
	Text string
	Tone Tone
}

// StatusTag classifies an order status for display: only completed is a
// success, every other status (cancelled included) is a warning.
func StatusTag(s orders.Status) Tag {
	if s == orders.StatusCompleted {
		return Tag{Text: string(s), Tone: ToneSuccess}
	}
	return Tag{Text: string(s), Tone: ToneWarning}
}

// Action is a row trigger. Post actions render as a form button.
type Action struct {
	Label  string
	Href   string
	Post   bool
	Danger bool
}

// Cell is one rendered table cell; exactly one of its parts is set.
type Cell struct {
	Text    string
	Tag     *Tag
	Lines   []string
	Actions []Action
}

// Column projects a record into a cell.
type Column[T any] struct {
	Title  string
	Render func(T) Cell
}

type Row struct {
	Key   int64
	Cells []Cell
}

type Table struct {
	Headers []string
	Rows    []Row
	Loading bool
}

func BuildTable[T any](cols []Column[T], key func(T) int64, items []T) Table {
	t := Table{Headers: make([]string, 0, len(cols)), Rows: make([]Row, 0, len(items))}
	for _, c := range cols {
		t.Headers = append(t.Headers, c.Title)
	}
	for _, it := range items {
		row := Row{Key: key(it), Cells: make([]Cell, 0, len(cols))}
		for _, c := range cols {
			row.Cells = append(row.Cells, c.Render(it))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func text(s string) Cell { return Cell{Text: s} }

func idStr(n int64) string { return strconv.FormatInt(n, 10) }

func productColumns(canDelete bool) []Column[orders.Product] {
	return []Column[orders.Product]{
		{Title: "Name", Render: func(p orders.Product) Cell { return text(p.Name) }},
		{Title: "Price", Render: func(p orders.Product) Cell { return text(p.Price.String()) }},
		{Title: "Stock", Render: func(p orders.Product) Cell { return text(strconv.Itoa(p.StockQuantity)) }},
		{Title: "Actions", Render: func(p orders.Product) Cell {
			acts := []Action{{Label: "Edit", Href: "/products/" + idStr(p.ID) + "/edit"}}
			if canDelete {
				acts = append(acts, Action{Label: "Delete", Href: "/products/" + idStr(p.ID) + "/delete", Post: true, Danger: true})
			}
			return Cell{Actions: acts}
		}},
	}
}

func orderColumns() []Column[orders.Order] {
	return []Column[orders.Order]{
		{Title: "Order ID", Render: func(o orders.Order) Cell { return text(idStr(o.ID)) }},
		{Title: "Total Price", Render: func(o orders.Order) Cell { return text(o.TotalPrice.String()) }},
		{Title: "Status", Render: func(o orders.Order) Cell {
			tag := StatusTag(o.Status)
			return Cell{Tag: &tag}
		}},
		{Title: "Items", Render: func(o orders.Order) Cell { return Cell{Lines: itemLines(o.Items)} }},
		{Title: "Actions", Render: func(o orders.Order) Cell {
			return Cell{Actions: []Action{{Label: "Edit", Href: "/orders/" + idStr(o.ID) + "/edit"}}}
		}},
	}
}

// itemLines renders "Pen (x2)" per item, falling back to the product id when
// the API sent no name.
func itemLines(items []orders.OrderItem) []string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		name := it.ProductName()
		if name == "" {
			name = "#" + idStr(it.ProductID)
		}
		lines = append(lines, name+" (x"+strconv.Itoa(it.Quantity)+")")
	}
	return lines
}

// Option is a select entry.
type Option struct {
	Value int64
	Label string
}

// ProductOptions offers every loaded product with its current stock. Stock is
// shown for information only.
func ProductOptions(products []orders.Product) []Option {
	out := make([]Option, 0, len(products))
	for _, p := range products {
		out = append(out, Option{Value: p.ID, Label: p.Name + " (Stock: " + strconv.Itoa(p.StockQuantity) + ")"})
	}
	return out
}
