package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go-shop-client/internal/model"
)

type ReviewsAPI struct {
	client *Client
}

func NewReviewsAPI(client *Client) *ReviewsAPI {
	return &ReviewsAPI{client: client}
}

func (r *ReviewsAPI) ListByProduct(ctx context.Context, productID string, page int, pageSize int) (model.ReviewList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var list model.ReviewList
	if err := r.client.Get(ctx, fmt.Sprintf("/products/%s/reviews", productID), q, &list, false); err != nil {
		return model.ReviewList{}, err
	}

	return list, nil
}

func (r *ReviewsAPI) Create(ctx context.Context, req model.ReviewCreate) (model.Review, error) {
	var review model.Review
	if err := r.client.Post(ctx, "/reviews", req, &review, true); err != nil {
		return model.Review{}, err
	}

	return review, nil
}
