package apiclient

import (
	"context"

	"github.com/ariefcatur/orders-admin/internal/orders"
)

// Products exposes /products as a listedit resource with delete.
type Products struct{ C *Client }

func (p Products) List(ctx context.Context) ([]orders.Product, error) { return p.C.ListProducts(ctx) }

func (p Products) Create(ctx context.Context, in orders.ProductInput) error {
	_, err := p.C.CreateProduct(ctx, in)
	return err
}

func (p Products) Update(ctx context.Context, id int64, in orders.ProductInput) error {
	_, err := p.C.UpdateProduct(ctx, id, in)
	return err
}

func (p Products) Delete(ctx context.Context, id int64) error { return p.C.DeleteProduct(ctx, id) }

// Orders exposes /orders as a listedit resource. Orders cannot be deleted.
type Orders struct{ C *Client }

func (o Orders) List(ctx context.Context) ([]orders.Order, error) { return o.C.ListOrders(ctx) }

func (o Orders) Create(ctx context.Context, in orders.OrderInput) error {
	_, err := o.C.CreateOrder(ctx, in)
	return err
}

func (o Orders) Update(ctx context.Context, id int64, in orders.OrderInput) error {
	_, err := o.C.UpdateOrder(ctx, id, in)
	return err
}
