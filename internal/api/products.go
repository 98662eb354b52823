package api

import (
	"context"
	"fmt"

	"go-shop-client/internal/model"
)

type ProductsAPI struct {
	client *Client
}

func NewProductsAPI(client *Client) *ProductsAPI {
	return &ProductsAPI{client: client}
}

func (p *ProductsAPI) List(ctx context.Context, filter model.ProductFilter) (model.ProductList, error) {
	var list model.ProductList
	if err := p.client.Get(ctx, "/products", filter.Query(), &list, false); err != nil {
		return model.ProductList{}, err
	}

	return list, nil
}

func (p *ProductsAPI) Get(ctx context.Context, productID string) (model.Product, error) {
	var product model.Product
	if err := p.client.Get(ctx, fmt.Sprintf("/products/%s", productID), nil, &product, false); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (p *ProductsAPI) Featured(ctx context.Context, limit int) (model.ProductList, error) {
	if limit <= 0 {
		limit = 10
	}

	return p.List(ctx, model.ProductFilter{Featured: true, PageSize: limit})
}

func (p *ProductsAPI) Search(ctx context.Context, query string, filter model.ProductFilter) (model.ProductList, error) {
	filter.Search = query
	return p.List(ctx, filter)
}

func (p *ProductsAPI) ByCategory(ctx context.Context, category string, subcategory string, filter model.ProductFilter) (model.ProductList, error) {
	filter.Category = category
	filter.Subcategory = subcategory
	return p.List(ctx, filter)
}
