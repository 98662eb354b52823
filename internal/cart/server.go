package cart

import (
	"context"
	"fmt"

	"go-shop-client/internal/api"
	"go-shop-client/internal/model"
)

// ServerGateway translates cart operations into authenticated dispatcher
// calls. It holds no state; every call is a round trip.
type ServerGateway struct {
	client *api.Client
}

func NewServerGateway(client *api.Client) *ServerGateway {
	return &ServerGateway{client: client}
}

func (g *ServerGateway) GetCart(ctx context.Context) (model.ServerCart, error) {
	var serverCart model.ServerCart
	if err := g.client.Get(ctx, "/cart", nil, &serverCart, true); err != nil {
		return model.ServerCart{}, err
	}

	return serverCart, nil
}

func (g *ServerGateway) AddLine(ctx context.Context, productID string, quantity int) (model.ServerLine, error) {
	var line model.ServerLine
	req := model.CartLineCreate{ProductID: productID, Quantity: quantity}
	if err := g.client.Post(ctx, "/cart/items", req, &line, true); err != nil {
		return model.ServerLine{}, err
	}

	return line, nil
}

func (g *ServerGateway) UpdateLine(ctx context.Context, lineID string, quantity int) (model.ServerLine, error) {
	var line model.ServerLine
	req := model.CartLineUpdate{Quantity: quantity}
	if err := g.client.Put(ctx, fmt.Sprintf("/cart/items/%s", lineID), req, &line, true); err != nil {
		return model.ServerLine{}, err
	}

	return line, nil
}

func (g *ServerGateway) RemoveLine(ctx context.Context, lineID string) error {
	return g.client.Delete(ctx, fmt.Sprintf("/cart/items/%s", lineID), nil, true)
}

func (g *ServerGateway) ClearCart(ctx context.Context) error {
	return g.client.Delete(ctx, "/cart", nil, true)
}
