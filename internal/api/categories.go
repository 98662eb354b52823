package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go-shop-client/internal/model"
)

type CategoriesAPI struct {
	client *Client
}

func NewCategoriesAPI(client *Client) *CategoriesAPI {
	return &CategoriesAPI{client: client}
}

func (c *CategoriesAPI) List(ctx context.Context, page int, pageSize int) (model.CategoryList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var list model.CategoryList
	if err := c.client.Get(ctx, "/categories", q, &list, false); err != nil {
		return model.CategoryList{}, err
	}

	return list, nil
}

func (c *CategoriesAPI) Tree(ctx context.Context) ([]model.CategoryTree, error) {
	var tree []model.CategoryTree
	if err := c.client.Get(ctx, "/categories/tree", nil, &tree, false); err != nil {
		return nil, err
	}

	return tree, nil
}

func (c *CategoriesAPI) Get(ctx context.Context, categoryID string) (model.Category, error) {
	var category model.Category
	if err := c.client.Get(ctx, fmt.Sprintf("/categories/%s", categoryID), nil, &category, false); err != nil {
		return model.Category{}, err
	}

	return category, nil
}
