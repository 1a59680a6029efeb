package orders

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ProductInput is the create/update body for /products.
type ProductInput struct {
	Name          string          `json:"name" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
}

// OrderInput is the create/update body for /orders. Items carry only the
// product reference and quantity.
type OrderInput struct {
	Status Status           `json:"status" validate:"required,oneof=pending completed cancelled"`
	Items  []OrderItemInput `json:"items" validate:"required,min=1,max=200,dive"`
}

type OrderItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=1000000"`
}

// Input reduces a loaded order to its writable fields.
func (o Order) Input() OrderInput {
	in := OrderInput{Status: o.Status, Items: make([]OrderItemInput, 0, len(o.Items))}
	for _, it := range o.Items {
		in.Items = append(in.Items, OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return in
}

// Input reduces a loaded product to its writable fields.
func (p Product) Input() ProductInput {
	return ProductInput{Name: p.Name, Price: p.Price, StockQuantity: p.StockQuantity}
}

func (in ProductInput) MarshalJSON() ([]byte, error) {
	type input ProductInput
	return json.Marshal(struct {
		input
		Price json.Number `json:"price"`
	}{input(in), number(in.Price)})
}
