package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go-shop-client/internal/model"
)

type OrdersAPI struct {
	client *Client
}

func NewOrdersAPI(client *Client) *OrdersAPI {
	return &OrdersAPI{client: client}
}

// Create places an order from the current server cart.
func (o *OrdersAPI) Create(ctx context.Context, req model.OrderCreate) (model.Order, error) {
	var order model.Order
	if err := o.client.Post(ctx, "/orders", req, &order, true); err != nil {
		return model.Order{}, err
	}

	return order, nil
}

func (o *OrdersAPI) Get(ctx context.Context, orderID string) (model.Order, error) {
	var order model.Order
	if err := o.client.Get(ctx, fmt.Sprintf("/orders/%s", orderID), nil, &order, true); err != nil {
		return model.Order{}, err
	}

	return order, nil
}

func (o *OrdersAPI) ListMine(ctx context.Context, page int, pageSize int, status model.OrderStatus) (model.OrderList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if status != "" {
		q.Set("status", string(status))
	}

	var list model.OrderList
	if err := o.client.Get(ctx, "/orders", q, &list, true); err != nil {
		return model.OrderList{}, err
	}

	return list, nil
}

func (o *OrdersAPI) Cancel(ctx context.Context, orderID string) (model.CancelOrderResponse, error) {
	var resp model.CancelOrderResponse
	if err := o.client.Put(ctx, fmt.Sprintf("/orders/%s/cancel", orderID), nil, &resp, true); err != nil {
		return model.CancelOrderResponse{}, err
	}

	return resp, nil
}

// Track looks an order up by its public order number; no credential needed.
func (o *OrdersAPI) Track(ctx context.Context, orderNumber string, email string) (model.Order, error) {
	q := url.Values{}
	q.Set("email", email)

	var order model.Order
	if err := o.client.Get(ctx, fmt.Sprintf("/orders/track/%s", orderNumber), q, &order, false); err != nil {
		return model.Order{}, err
	}

	return order, nil
}
