package model

import "errors"

var (
	// Cart related errors
	ErrLineNotFound     = errors.New("cart line not found")
	ErrSnapshotRequired = errors.New("product snapshot required for guest cart")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")

	// Store related errors
	ErrCorruptState = errors.New("corrupt state file")
)
