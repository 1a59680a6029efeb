package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product is referenced by orders")
)

// pg error code foreign_key_violation
const pgForeignKeyViolation = "23503"

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, price_cents, stock_quantity FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var (
			p     Product
			cents int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &cents, &p.StockQuantity); err != nil {
			return nil, err
		}
		p.Price = CentsToPrice(cents)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	p := Product{Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(name, price_cents, stock_quantity)
		VALUES ($1, $2, $3) RETURNING id`,
		in.Name, PriceToCents(in.Price), in.StockQuantity,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, price_cents=$3, stock_quantity=$4, updated_at=now()
		WHERE id=$1`,
		id, in.Name, PriceToCents(in.Price), in.StockQuantity,
	)
	if err != nil {
		return Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return Product{}, ErrNotFound
	}
	return Product{ID: id, Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}, nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrProductInUse
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOrders returns every order with its items; each item embeds the name of
// the referenced product.
func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, status, total_cents FROM orders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	index := map[int64]int{}
	for rows.Next() {
		var (
			o     Order
			s     string
			cents int64
		)
		if err := rows.Scan(&o.ID, &s, &cents); err != nil {
			rows.Close()
			return nil, err
		}
		o.Status = Status(s)
		o.TotalPrice = CentsToPrice(cents)
		o.Items = []OrderItem{}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.DB.Query(ctx, `
		SELECT oi.order_id, oi.product_id, oi.quantity, p.name
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		ORDER BY oi.order_id, oi.id`)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			orderID int64
			it      OrderItem
			name    string
		)
		if err := items.Scan(&orderID, &it.ProductID, &it.Quantity, &name); err != nil {
			return nil, err
		}
		it.Product = &ProductRef{ID: it.ProductID, Name: name}
		if i, ok := index[orderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, items.Err()
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (Order, error) {
	return getOrder(ctx, r.DB, id)
}

// CreateOrder computes the total from the prices in products; client totals are never trusted.
func (r *Repo) CreateOrder(ctx context.Context, in OrderInput) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prices, err := productPrices(ctx, tx, in.Items)
	if err != nil {
		return Order{}, err
	}
	total := orderTotal(in.Items, prices)

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO orders(status, total_cents) VALUES ($1, $2) RETURNING id`,
		string(in.Status), total,
	).Scan(&id); err != nil {
		return Order{}, err
	}
	if err := insertItems(ctx, tx, id, in.Items, prices); err != nil {
		return Order{}, err
	}
	o, err := getOrder(ctx, tx, id)
	if err != nil {
		return Order{}, err
	}
	return o, tx.Commit(ctx)
}

// UpdateOrder replaces status and the full item set, then recomputes the total.
func (r *Repo) UpdateOrder(ctx context.Context, id int64, in OrderInput) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	prices, err := productPrices(ctx, tx, in.Items)
	if err != nil {
		return Order{}, err
	}
	total := orderTotal(in.Items, prices)

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, total_cents=$3, updated_at=now() WHERE id=$1`,
		id, string(in.Status), total)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 0 {
		return Order{}, ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return Order{}, err
	}
	if err := insertItems(ctx, tx, id, in.Items, prices); err != nil {
		return Order{}, err
	}
	o, err := getOrder(ctx, tx, id)
	if err != nil {
		return Order{}, err
	}
	return o, tx.Commit(ctx)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getOrder(ctx context.Context, q querier, id int64) (Order, error) {
	var (
		o     Order
		s     string
		cents int64
	)
	err := q.QueryRow(ctx, `SELECT id, status, total_cents FROM orders WHERE id=$1`, id).Scan(&o.ID, &s, &cents)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(s)
	o.TotalPrice = CentsToPrice(cents)

	rows, err := q.Query(ctx, `
		SELECT oi.product_id, oi.quantity, p.name
		FROM order_items oi JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1 ORDER BY oi.id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	o.Items = []OrderItem{}
	for rows.Next() {
		var (
			it   OrderItem
			name string
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &name); err != nil {
			return Order{}, err
		}
		it.Product = &ProductRef{ID: it.ProductID, Name: name}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func productPrices(ctx context.Context, tx pgx.Tx, items []OrderItemInput) (map[int64]int64, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	rows, err := tx.Query(ctx, `SELECT id, price_cents FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	prices := map[int64]int64{}
	for rows.Next() {
		var id, price int64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, it := range items {
		if _, ok := prices[it.ProductID]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, it.ProductID)
		}
	}
	return prices, nil
}

func orderTotal(items []OrderItemInput, prices map[int64]int64) int64 {
	var total int64
	for _, it := range items {
		total += prices[it.ProductID] * int64(it.Quantity)
	}
	return total
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID int64, items []OrderItemInput, prices map[int64]int64) error {
	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)`,
			orderID, it.ProductID, it.Quantity, prices[it.ProductID],
		); err != nil {
			return err
		}
	}
	return nil
}

// Total sums price x quantity over items using the given price list. Used to
// preview totals where the server has not computed one yet.
func Total(items []OrderItemInput, products []Product) decimal.Decimal {
	byID := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		byID[p.ID] = p.Price
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(byID[it.ProductID].Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
