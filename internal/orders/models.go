package orders

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Upper bounds keep every price, line and order total inside int64 cents:
// MaxOrderItems x MaxQuantity x MaxPrice stays below 2^63.
const (
	MaxOrderItems = 200
	MaxQuantity   = 1_000_000
)

// MaxPrice is the largest accepted unit price, 99999999.99.
var MaxPrice = decimal.New(9_999_999_999, -2)

// ValidPrice reports whether p is within [0, MaxPrice].
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(MaxPrice)
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

type Order struct {
	ID         int64           `json:"id"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []OrderItem     `json:"items"`
}

// OrderItem as returned by the API. Product is a display snapshot of the
// referenced product and is never sent back.
type OrderItem struct {
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Product   *ProductRef `json:"product,omitempty"`
}

type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductName returns the snapshot name, or "" when the API did not embed it.
func (it OrderItem) ProductName() string {
	if it.Product == nil {
		return ""
	}
	return it.Product.Name
}

// CentsToPrice and PriceToCents convert between the stored integer cents and
// the decimal used everywhere else.
func CentsToPrice(cents int64) decimal.Decimal { return decimal.New(cents, -2) }

func PriceToCents(p decimal.Decimal) int64 { return p.Shift(2).Round(0).IntPart() }

// Prices go over the wire as JSON numbers, not the quoted strings decimal
// writes by default.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price json.Number `json:"price"`
	}{product(p), number(p.Price)})
}

func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		TotalPrice json.Number `json:"total_price"`
	}{order(o), number(o.TotalPrice)})
}
