package model

import "time"

type Review struct {
	ID                 string    `json:"id"`
	ProductID          string    `json:"product_id"`
	UserID             string    `json:"user_id"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title,omitempty"`
	Comment            string    `json:"comment,omitempty"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	HelpfulCount       int       `json:"helpful_count"`
	UserName           string    `json:"user_name"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ReviewCreate struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

type ReviewList struct {
	Items      []Review `json:"items"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}
