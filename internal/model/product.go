package model

import (
	"net/url"
	"strconv"
	"time"
)

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	StockQuantity int       `json:"stock_quantity"`
	SKU           string    `json:"sku,omitempty"`
	Images        []string  `json:"images"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	Slug          string    `json:"slug"`
	IsActive      bool      `json:"is_active"`
	IsFeatured    bool      `json:"is_featured"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Image returns the best available image reference for cart display.
func (p Product) Image() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}

	return ""
}

type ProductList struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type ProductFilter struct {
	Category    string
	Subcategory string
	MinPrice    float64
	MaxPrice    float64
	Featured    bool
	InStockOnly bool
	Search      string
	SortBy      string
	SortOrder   SortOrder
	Page        int
	PageSize    int
}

func (f ProductFilter) Query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Subcategory != "" {
		q.Set("subcategory", f.Subcategory)
	}
	if f.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Featured {
		q.Set("is_featured", "true")
	}
	if f.InStockOnly {
		q.Set("in_stock_only", "true")
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.SortBy != "" {
		q.Set("sort_by", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sort_order", string(f.SortOrder))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}

	return q
}

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	IsFeatured   bool      `json:"is_featured"`
	ProductCount int       `json:"product_count"`
	FullPath     string    `json:"full_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CategoryList struct {
	Items      []Category `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

type CategoryTree struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Icon          string         `json:"icon,omitempty"`
	ProductCount  int            `json:"product_count"`
	Subcategories []CategoryTree `json:"subcategories"`
}
