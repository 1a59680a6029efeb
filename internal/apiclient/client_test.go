package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

var (
	_ listedit.Resource[orders.Product, orders.ProductInput] = Products{}
	_ listedit.Deleter                                       = Products{}
	_ listedit.Resource[orders.Order, orders.OrderInput]     = Orders{}
)

type recorded struct {
	method string
	path   string
	auth   string
	body   string
}

func newServer(t *testing.T, status int, resp string) (*Client, *[]recorded) {
	t.Helper()
	var got []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), body: string(b)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", time.Second, nil), &got
}

func TestListOrdersDecodesNestedItems(t *testing.T) {
	c, got := newServer(t, http.StatusOK,
		`[{"id":1,"status":"completed","total_price":9.5,"items":[{"product_id":4,"quantity":2,"product":{"id":4,"name":"Pen"}}]}]`)

	list, err := c.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, orders.StatusCompleted, list[0].Status)
	assert.True(t, list[0].TotalPrice.Equal(decimal.RequireFromString("9.5")))
	assert.Equal(t, "Pen", list[0].Items[0].ProductName())

	require.Len(t, *got, 1)
	assert.Equal(t, recorded{method: http.MethodGet, path: "/orders", auth: "Bearer secret"}, (*got)[0])
}

func TestUpdateOrderSendsStrippedPayload(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"id":3,"status":"pending","total_price":0,"items":[]}`)

	err := Orders{C: c}.Update(context.Background(), 3, orders.OrderInput{
		Status: orders.StatusPending,
		Items:  []orders.OrderItemInput{{ProductID: 4, Quantity: 1}},
	})
	require.NoError(t, err)

	require.Len(t, *got, 1)
	assert.Equal(t, http.MethodPut, (*got)[0].method)
	assert.Equal(t, "/orders/3", (*got)[0].path)
	assert.JSONEq(t, `{"status":"pending","items":[{"product_id":4,"quantity":1}]}`, (*got)[0].body)
}

func TestCreateProduct(t *testing.T) {
	c, got := newServer(t, http.StatusCreated, `{"id":5,"name":"Cup","price":3.25,"stock_quantity":10}`)

	err := Products{C: c}.Create(context.Background(), orders.ProductInput{
		Name: "Cup", Price: decimal.RequireFromString("3.25"), StockQuantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, (*got)[0].method)
	assert.Equal(t, "/products", (*got)[0].path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte((*got)[0].body), &body))
	assert.Equal(t, map[string]any{"name": "Cup", "price": 3.25, "stock_quantity": float64(10)}, body)
}

func TestDeleteProductNoContent(t *testing.T) {
	c, got := newServer(t, http.StatusNoContent, "")
	require.NoError(t, Products{C: c}.Delete(context.Background(), 8))
	assert.Equal(t, http.MethodDelete, (*got)[0].method)
	assert.Equal(t, "/products/8", (*got)[0].path)
}

func TestErrorStatusIsReturned(t *testing.T) {
	c, _ := newServer(t, http.StatusConflict, `{"error":"product is referenced by orders"}`)

	err := c.DeleteProduct(context.Background(), 1)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.Code)
	assert.Equal(t, "product is referenced by orders", se.Message)
}

func TestTransportErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil)
	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
